// Package media turns recording blobs into files.
package media

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/jwulff/memo/internal/capture"
)

// TempPattern is the os.CreateTemp pattern used for encoded recordings.
const TempPattern = "memo-rec-*"

// Extension returns the file extension (without dot) for a blob.
func Extension(b *capture.Blob) string {
	if _, _, ok := capture.PCMFormat(b.MimeType()); ok {
		return "wav"
	}
	switch b.MimeType() {
	case "video/mp4":
		return "mp4"
	case "audio/mpeg":
		return "mp3"
	case "audio/webm", "video/webm":
		return "webm"
	}
	if b.Kind() == capture.Video {
		return "mp4"
	}
	return "mp3"
}

// WriteFile writes b to path, wrapping PCM in a WAV container.
func WriteFile(path string, b *capture.Blob) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Encode(f, b); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// TempFile encodes b into a new file in dir (os.TempDir when empty) and
// returns its path. The caller removes it.
func TempFile(dir string, b *capture.Blob) (string, error) {
	f, err := os.CreateTemp(dir, TempPattern+"."+Extension(b))
	if err != nil {
		return "", fmt.Errorf("create temp recording: %w", err)
	}
	path := f.Name()
	if err := Encode(f, b); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close temp recording: %w", err)
	}
	return path, nil
}

// Encode writes b to w. PCM needs a seekable writer for the WAV header.
func Encode(w io.WriteSeeker, b *capture.Blob) error {
	rate, channels, ok := capture.PCMFormat(b.MimeType())
	if !ok {
		if _, err := io.Copy(w, b.Reader()); err != nil {
			return fmt.Errorf("write recording: %w", err)
		}
		return nil
	}

	raw := b.Bytes()
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: channels,
			SampleRate:  rate,
		},
		Data:           make([]int, len(raw)/2),
		SourceBitDepth: 16,
	}
	for i := range buf.Data {
		buf.Data[i] = int(int16(binary.LittleEndian.Uint16(raw[2*i:])))
	}

	enc := wav.NewEncoder(w, rate, 16, channels, 1)
	if err := enc.Write(buf); err != nil {
		enc.Close()
		return fmt.Errorf("encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finish wav: %w", err)
	}
	return nil
}
