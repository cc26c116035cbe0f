package speech

import (
	"context"
	"errors"
)

// ErrNoSpeech is returned when audio was recognized but contained no words.
var ErrNoSpeech = errors.New("no speech recognized")

// Transcriber turns recorded audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, language string) (string, error)
}

// Synthesizer turns text into encoded audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, language string) ([]byte, error)
}
