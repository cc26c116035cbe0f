package speech

import (
	"context"
	"fmt"
	"strings"

	speechapi "cloud.google.com/go/speech/apiv1"
	tts "cloud.google.com/go/texttospeech/apiv1"
	"google.golang.org/api/option"
	speechpb "google.golang.org/genproto/googleapis/cloud/speech/v1"
	ttspb "google.golang.org/genproto/googleapis/cloud/texttospeech/v1"
)

func clientOptions(credentialsFile string) []option.ClientOption {
	if credentialsFile == "" {
		return nil
	}
	return []option.ClientOption{option.WithCredentialsFile(credentialsFile)}
}

// GoogleTranscriber uses Cloud Speech-to-Text synchronous recognition.
type GoogleTranscriber struct {
	client          *speechapi.Client
	DefaultLanguage string
}

func NewGoogleTranscriber(ctx context.Context, credentialsFile, language string) (*GoogleTranscriber, error) {
	client, err := speechapi.NewClient(ctx, clientOptions(credentialsFile)...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize speech client: %w", err)
	}
	return &GoogleTranscriber{client: client, DefaultLanguage: language}, nil
}

func (g *GoogleTranscriber) Transcribe(ctx context.Context, audio []byte, language string) (string, error) {
	if len(audio) == 0 {
		return "", ErrNoSpeech
	}
	if len(audio) > MaxAudioBytes {
		return "", fmt.Errorf("audio exceeds %d bytes", MaxAudioBytes)
	}
	if language == "" {
		language = g.DefaultLanguage
	}
	pcm, err := normalizeAudio(audio)
	if err != nil {
		return "", err
	}

	resp, err := g.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:          speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz:   targetSampleRate,
			LanguageCode:      language,
			AudioChannelCount: 1,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: pcm},
		},
	})
	if err != nil {
		return "", fmt.Errorf("speech recognition failed: %w", err)
	}

	var transcript strings.Builder
	for _, result := range resp.Results {
		if len(result.Alternatives) > 0 {
			transcript.WriteString(result.Alternatives[0].Transcript + " ")
		}
	}
	text := strings.TrimSpace(transcript.String())
	if text == "" {
		return "", ErrNoSpeech
	}
	return text, nil
}

func (g *GoogleTranscriber) Close() error {
	return g.client.Close()
}

// GoogleSynthesizer uses Cloud Text-to-Speech and returns MP3 audio.
type GoogleSynthesizer struct {
	client          *tts.Client
	Voice           string
	DefaultLanguage string
}

func NewGoogleSynthesizer(ctx context.Context, credentialsFile, language, voice string) (*GoogleSynthesizer, error) {
	client, err := tts.NewClient(ctx, clientOptions(credentialsFile)...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize text-to-speech client: %w", err)
	}
	return &GoogleSynthesizer{client: client, Voice: voice, DefaultLanguage: language}, nil
}

func (g *GoogleSynthesizer) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	if language == "" {
		language = g.DefaultLanguage
	}
	voice := &ttspb.VoiceSelectionParams{LanguageCode: language}
	if g.Voice != "" && strings.HasPrefix(g.Voice, language) {
		voice.Name = g.Voice
	}

	resp, err := g.client.SynthesizeSpeech(ctx, &ttspb.SynthesizeSpeechRequest{
		Input:       &ttspb.SynthesisInput{InputSource: &ttspb.SynthesisInput_Text{Text: text}},
		Voice:       voice,
		AudioConfig: &ttspb.AudioConfig{AudioEncoding: ttspb.AudioEncoding_MP3},
	})
	if err != nil {
		return nil, fmt.Errorf("speech synthesis failed: %w", err)
	}
	return resp.AudioContent, nil
}

func (g *GoogleSynthesizer) Close() error {
	return g.client.Close()
}
