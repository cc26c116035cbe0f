package speech

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

const (
	targetSampleRate = 16000
	MaxAudioBytes    = 5 * 1024 * 1024
)

type waveHeader struct {
	RiffTag       [4]byte
	FileSize      uint32
	WaveTag       [4]byte
	FmtTag        [4]byte
	FmtSize       uint32
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
}

func parseWaveHeader(data []byte) (*waveHeader, error) {
	if len(data) < 44 {
		return nil, errors.New("invalid WAV header length")
	}
	var header waveHeader
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &header); err != nil {
		return nil, err
	}
	if string(header.RiffTag[:]) != "RIFF" || string(header.WaveTag[:]) != "WAVE" {
		return nil, errors.New("not a RIFF/WAVE file")
	}
	return &header, nil
}

// isRecognizerReady reports whether audio is already 16 kHz mono 16-bit PCM.
func isRecognizerReady(data []byte) bool {
	h, err := parseWaveHeader(data)
	if err != nil {
		return false
	}
	return h.AudioFormat == 1 && h.NumChannels == 1 && h.SampleRate == targetSampleRate && h.BitsPerSample == 16
}

// normalizeAudio converts arbitrary input to 16 kHz mono LINEAR16 WAV with ffmpeg.
func normalizeAudio(data []byte) ([]byte, error) {
	if isRecognizerReady(data) {
		return data, nil
	}
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, fmt.Errorf("ffmpeg not found in system PATH: %w", err)
	}

	in, err := os.CreateTemp("", "audio-in-*")
	if err != nil {
		return nil, fmt.Errorf("create temp input: %w", err)
	}
	defer os.Remove(in.Name())
	if _, err := in.Write(data); err != nil {
		in.Close()
		return nil, fmt.Errorf("write temp input: %w", err)
	}
	in.Close()

	out, err := os.CreateTemp("", "audio-out-*.wav")
	if err != nil {
		return nil, fmt.Errorf("create temp output: %w", err)
	}
	out.Close()
	defer os.Remove(out.Name())

	cmd := exec.Command("ffmpeg", "-y", "-i", in.Name(), "-acodec", "pcm_s16le", "-ac", "1", "-ar", "16000", out.Name())
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg conversion failed: %s", stderr.String())
	}
	return os.ReadFile(out.Name())
}
