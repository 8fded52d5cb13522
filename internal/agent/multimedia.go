package agent

import (
	"context"
	"fmt"

	"github.com/DisaAst/chathub-bot/internal/logger"
)

// Dispatcher is a stateless routing policy: first match wins, no retries
// of its own.
type Dispatcher struct {
	audio  AudioResponder
	image  ImageResponder
	logger logger.Logger
}

func NewDispatcher(audio AudioResponder, image ImageResponder, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		audio:  audio,
		image:  image,
		logger: log,
	}
}

// Dispatch routes a request to a single agent. Audio wins when no images
// accompany it; otherwise the first image is used and any trailing images
// are ignored, deliberately.
func (d *Dispatcher) Dispatch(ctx context.Context, request MultimediaRequest) (*Response, error) {
	if request.Audio != nil && len(request.Images) == 0 {
		d.logger.WithField("chat_id", request.ChatID).Debug("Dispatching to audio agent")

		text, err := d.audio.RespondAudio(ctx, request.ChatID, request.UserID, *request.Audio, request.Text, request.Timezone)
		if err != nil {
			return nil, fmt.Errorf("audio agent: %w", err)
		}
		return &Response{
			Text:           text,
			UsedWebSearch:  false,
			StepCount:      1,
			MediaProcessed: true,
		}, nil
	}

	if len(request.Images) > 0 {
		d.logger.WithFields(logger.Fields{
			"chat_id": request.ChatID,
			"images":  len(request.Images),
		}).Debug("Dispatching to image agent")

		response, err := d.image.RespondImage(ctx, request.ChatID, request.UserID, request.Images[0], request.Text, request.Timezone)
		if err != nil {
			return nil, fmt.Errorf("image agent: %w", err)
		}
		response.MediaProcessed = true
		return response, nil
	}

	return nil, ErrUnsupportedRequest
}
