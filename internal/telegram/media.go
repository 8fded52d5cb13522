package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"
	"github.com/sethvargo/go-retry"

	"github.com/DisaAst/chathub-bot/internal/agent"
	"github.com/DisaAst/chathub-bot/internal/logger"
)

// ErrFileTooLarge is returned before any download is attempted when the
// declared file size exceeds the configured cap.
type ErrFileTooLarge struct {
	Size  int64
	Limit int64
}

func (e ErrFileTooLarge) Error() string {
	return fmt.Sprintf("file size %d exceeds limit %d", e.Size, e.Limit)
}

// MediaFetcher pulls attachment bytes for a message so agents can embed
// them into model requests. Telegram's bot API caps downloads at 20 MB,
// the configured limit is expected to be at or below that.
type MediaFetcher struct {
	client      Client
	httpClient  *http.Client
	maxFileSize int64
	logger      logger.Logger
}

func NewMediaFetcher(client Client, httpClient *http.Client, maxFileSize int64, log logger.Logger) *MediaFetcher {
	return &MediaFetcher{
		client:      client,
		httpClient:  httpClient,
		maxFileSize: maxFileSize,
		logger:      log,
	}
}

// FromMessage extracts the attachments an agent can work with: the
// largest rendition of each photo, and the voice note or audio track if
// one is attached.
func (f *MediaFetcher) FromMessage(ctx context.Context, msg *tgbotapi.Message) ([]agent.MediaBlob, *agent.MediaBlob, error) {
	var images []agent.MediaBlob
	var audio *agent.MediaBlob

	if len(msg.Photo) > 0 {
		// Telegram orders renditions smallest-first.
		largest := msg.Photo[len(msg.Photo)-1]
		blob, err := f.download(ctx, largest.FileID, int64(largest.FileSize), "image/jpeg")
		if err != nil {
			return nil, nil, fmt.Errorf("photo download: %w", err)
		}
		images = append(images, blob)
	}

	if msg.Voice != nil {
		mime := msg.Voice.MimeType
		if mime == "" {
			mime = "audio/ogg"
		}
		blob, err := f.download(ctx, msg.Voice.FileID, int64(msg.Voice.FileSize), mime)
		if err != nil {
			return nil, nil, fmt.Errorf("voice download: %w", err)
		}
		audio = &blob
	} else if msg.Audio != nil {
		mime := msg.Audio.MimeType
		if mime == "" {
			mime = "audio/mpeg"
		}
		blob, err := f.download(ctx, msg.Audio.FileID, int64(msg.Audio.FileSize), mime)
		if err != nil {
			return nil, nil, fmt.Errorf("audio download: %w", err)
		}
		audio = &blob
	}

	return images, audio, nil
}

func (f *MediaFetcher) download(ctx context.Context, fileID string, declaredSize int64, mimeType string) (agent.MediaBlob, error) {
	if f.maxFileSize > 0 && declaredSize > f.maxFileSize {
		return agent.MediaBlob{}, ErrFileTooLarge{Size: declaredSize, Limit: f.maxFileSize}
	}

	var data []byte
	backoff := retry.WithMaxRetries(3, retry.NewExponential(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		url, err := f.client.GetFileURL(fileID)
		if err != nil {
			return retry.RetryableError(err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}

		resp, err := f.httpClient.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("unexpected status %d downloading file", resp.StatusCode)
			if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
				return retry.RetryableError(err)
			}
			return err
		}

		limit := f.maxFileSize
		if limit <= 0 {
			limit = 20 << 20
		}
		data, err = io.ReadAll(io.LimitReader(resp.Body, limit+1))
		if err != nil {
			return retry.RetryableError(err)
		}
		if int64(len(data)) > limit {
			return ErrFileTooLarge{Size: int64(len(data)), Limit: limit}
		}
		return nil
	})
	if err != nil {
		return agent.MediaBlob{}, err
	}

	f.logger.WithFields(logger.Fields{
		"file_id": fileID,
		"bytes":   len(data),
		"mime":    mimeType,
	}).Debug("Downloaded media file")

	return agent.MediaBlob{Data: data, MimeType: mimeType, FileID: fileID}, nil
}
