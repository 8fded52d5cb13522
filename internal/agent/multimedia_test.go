package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DisaAst/chathub-bot/internal/logger"
)

type fakeAudioAgent struct {
	calls    int
	steering string
	text     string
	err      error
}

func (f *fakeAudioAgent) RespondAudio(_ context.Context, _, _ int64, _ MediaBlob, steering, _ string) (string, error) {
	f.calls++
	f.steering = steering
	return f.text, f.err
}

type fakeImageAgent struct {
	calls    int
	image    MediaBlob
	question string
	response *Response
	err      error
}

func (f *fakeImageAgent) RespondImage(_ context.Context, _, _ int64, image MediaBlob, question, _ string) (*Response, error) {
	f.calls++
	f.image = image
	f.question = question
	return f.response, f.err
}

func TestDispatcher_AudioPath(t *testing.T) {
	audio := &fakeAudioAgent{text: "voice reply"}
	image := &fakeImageAgent{}
	d := NewDispatcher(audio, image, logger.NewTestLogger())

	blob := MediaBlob{Data: []byte("opus"), MimeType: "audio/ogg"}
	response, err := d.Dispatch(context.Background(), MultimediaRequest{
		ChatID: 1,
		Text:   "what did I say?",
		Audio:  &blob,
	})

	require.NoError(t, err)
	assert.Equal(t, "voice reply", response.Text)
	assert.False(t, response.UsedWebSearch)
	assert.Equal(t, 1, response.StepCount)
	assert.True(t, response.MediaProcessed)
	assert.Equal(t, "what did I say?", audio.steering)
	assert.Equal(t, 1, audio.calls)
	assert.Equal(t, 0, image.calls)
}

func TestDispatcher_ImagePath(t *testing.T) {
	audio := &fakeAudioAgent{}
	image := &fakeImageAgent{response: &Response{Text: "a cat", UsedWebSearch: true, StepCount: 2}}
	d := NewDispatcher(audio, image, logger.NewTestLogger())

	first := MediaBlob{Data: []byte("jpeg-1"), MimeType: "image/jpeg"}
	second := MediaBlob{Data: []byte("jpeg-2"), MimeType: "image/jpeg"}
	response, err := d.Dispatch(context.Background(), MultimediaRequest{
		ChatID: 1,
		Text:   "what is this?",
		Images: []MediaBlob{first, second},
	})

	require.NoError(t, err)
	assert.Equal(t, "a cat", response.Text)
	assert.True(t, response.UsedWebSearch)
	assert.Equal(t, 2, response.StepCount)
	assert.True(t, response.MediaProcessed)

	// Only the first image reaches the agent; the rest are dropped.
	assert.Equal(t, 1, image.calls)
	assert.Equal(t, first, image.image)
	assert.Equal(t, "what is this?", image.question)
}

func TestDispatcher_ImagesWinOverAudioWhenBothPresent(t *testing.T) {
	audio := &fakeAudioAgent{text: "voice reply"}
	image := &fakeImageAgent{response: &Response{Text: "a dog", StepCount: 1}}
	d := NewDispatcher(audio, image, logger.NewTestLogger())

	blob := MediaBlob{Data: []byte("opus"), MimeType: "audio/ogg"}
	response, err := d.Dispatch(context.Background(), MultimediaRequest{
		ChatID: 1,
		Audio:  &blob,
		Images: []MediaBlob{{Data: []byte("jpeg"), MimeType: "image/jpeg"}},
	})

	require.NoError(t, err)
	assert.Equal(t, "a dog", response.Text)
	assert.Equal(t, 0, audio.calls)
	assert.Equal(t, 1, image.calls)
}

func TestDispatcher_TextOnlyIsAHardError(t *testing.T) {
	d := NewDispatcher(&fakeAudioAgent{}, &fakeImageAgent{}, logger.NewTestLogger())

	_, err := d.Dispatch(context.Background(), MultimediaRequest{ChatID: 1, Text: "hi"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedRequest)
}

func TestDispatcher_AgentErrorsPropagate(t *testing.T) {
	audioErr := errors.New("model unavailable")
	d := NewDispatcher(&fakeAudioAgent{err: audioErr}, &fakeImageAgent{}, logger.NewTestLogger())

	blob := MediaBlob{Data: []byte("opus"), MimeType: "audio/ogg"}
	_, err := d.Dispatch(context.Background(), MultimediaRequest{ChatID: 1, Audio: &blob})

	assert.ErrorIs(t, err, audioErr)
}
