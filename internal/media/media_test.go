package media

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-audio/wav"

	"github.com/jwulff/memo/internal/capture"
)

func pcm(samples ...int16) []byte {
	out := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(s))
	}
	return out
}

func TestExtension(t *testing.T) {
	tests := []struct {
		kind capture.MediaKind
		mime string
		want string
	}{
		{capture.Audio, capture.PCMMimeType(16000, 1), "wav"},
		{capture.Video, "video/mp4", "mp4"},
		{capture.Audio, "audio/mpeg", "mp3"},
		{capture.Video, "video/x-synthetic", "mp4"},
		{capture.Audio, "application/octet-stream", "mp3"},
	}
	for _, tt := range tests {
		b := capture.NewBlob(tt.kind, tt.mime, []byte{1})
		if got := Extension(b); got != tt.want {
			t.Errorf("Extension(%s, %s) = %q, want %q", tt.kind, tt.mime, got, tt.want)
		}
	}
}

func TestWriteFilePCMAsWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	samples := []int16{0, 1000, -1000, 32767, -32768, 5}
	b := capture.NewBlob(capture.Audio, capture.PCMMimeType(16000, 1), pcm(samples[:3]...), pcm(samples[3:]...))

	if err := WriteFile(path, b); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	buf, err := wav.NewDecoder(f).FullPCMBuffer()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if buf.Format.SampleRate != 16000 || buf.Format.NumChannels != 1 {
		t.Errorf("format = %d Hz / %d ch", buf.Format.SampleRate, buf.Format.NumChannels)
	}
	if len(buf.Data) != len(samples) {
		t.Fatalf("samples = %d, want %d", len(buf.Data), len(samples))
	}
	for i, s := range samples {
		if buf.Data[i] != int(s) {
			t.Errorf("sample %d = %d, want %d", i, buf.Data[i], s)
		}
	}
}

func TestWriteFileRaw(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.mp4")
	b := capture.NewBlob(capture.Video, "video/mp4", []byte("abc"), []byte("def"))

	if err := WriteFile(path, b); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, _ := os.ReadFile(path)
	if string(got) != "abcdef" {
		t.Errorf("content = %q, want abcdef", got)
	}
}

func TestTempFile(t *testing.T) {
	dir := t.TempDir()
	b := capture.NewBlob(capture.Video, "video/mp4", []byte("xyz"))

	path, err := TempFile(dir, b)
	if err != nil {
		t.Fatalf("TempFile: %v", err)
	}
	name := filepath.Base(path)
	if !strings.HasPrefix(name, "memo-rec-") || !strings.HasSuffix(name, ".mp4") {
		t.Errorf("name = %q", name)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("dir = %q, want %q", filepath.Dir(path), dir)
	}
}
