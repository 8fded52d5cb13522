// Package agent holds the per-modality model agents and the dispatcher
// that routes a multimedia request to exactly one of them.
package agent

import (
	"context"
	"errors"
)

// ErrUnsupportedRequest means a request reached the dispatcher with
// neither audio nor images. Text-only requests go straight to the text
// agent, so this is a wiring bug in the caller, not a runtime condition.
var ErrUnsupportedRequest = errors.New("unsupported request shape: neither audio nor images present")

// Response is the normalized result shape shared by all modalities.
type Response struct {
	Text           string
	UsedWebSearch  bool
	StepCount      int
	MediaProcessed bool
}

// MediaBlob is raw media plus just enough metadata to build a model
// request. The core never inspects the bytes. FileID is the transport's
// reference for the file, kept for history records.
type MediaBlob struct {
	Data     []byte
	MimeType string
	FileID   string
}

func (b MediaBlob) Size() int {
	return len(b.Data)
}

// MultimediaRequest is constructed once per inbound message and consumed
// once by the dispatcher.
type MultimediaRequest struct {
	ChatID   int64
	UserID   int64
	Text     string
	Images   []MediaBlob
	Audio    *MediaBlob
	Timezone string
}

// AudioResponder answers a voice message, optionally steered by
// accompanying text.
type AudioResponder interface {
	RespondAudio(ctx context.Context, chatID, userID int64, audio MediaBlob, steering, timezone string) (string, error)
}

// ImageResponder answers a question about a single image.
type ImageResponder interface {
	RespondImage(ctx context.Context, chatID, userID int64, image MediaBlob, question, timezone string) (*Response, error)
}
