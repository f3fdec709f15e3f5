package capture

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"strconv"
)

// MimePCM is the media type of raw signed 16-bit little-endian PCM.
const MimePCM = "audio/L16"

// PCMMimeType formats the media type for PCM with its sample rate and channel count.
func PCMMimeType(rate, channels int) string {
	return mime.FormatMediaType(MimePCM, map[string]string{
		"rate":     strconv.Itoa(rate),
		"channels": strconv.Itoa(channels),
	})
}

// PCMFormat reports the sample rate and channel count of a PCM media type.
// ok is false when mimeType is not PCM.
func PCMFormat(mimeType string) (rate, channels int, ok bool) {
	mt, params, err := mime.ParseMediaType(mimeType)
	if err != nil || mt != MimePCM {
		return 0, 0, false
	}
	rate, err = strconv.Atoi(params["rate"])
	if err != nil || rate <= 0 {
		return 0, 0, false
	}
	channels = 1
	if c, err := strconv.Atoi(params["channels"]); err == nil && c > 0 {
		channels = c
	}
	return rate, channels, true
}

// Blob is the immutable ordered concatenation of a session's chunks.
type Blob struct {
	kind     MediaKind
	mimeType string
	data     []byte
	chunks   int
}

// NewBlob concatenates chunks in order.
func NewBlob(kind MediaKind, mimeType string, chunks ...[]byte) *Blob {
	size := 0
	for _, c := range chunks {
		size += len(c)
	}
	data := make([]byte, 0, size)
	for _, c := range chunks {
		data = append(data, c...)
	}
	return &Blob{kind: kind, mimeType: mimeType, data: data, chunks: len(chunks)}
}

// Kind is the media kind the blob was recorded as.
func (b *Blob) Kind() MediaKind { return b.kind }

// MimeType is the media type reported by the stream that produced the blob.
func (b *Blob) MimeType() string { return b.mimeType }

// Len is the total byte length.
func (b *Blob) Len() int { return len(b.data) }

// Chunks is the number of chunks the blob was built from.
func (b *Blob) Chunks() int { return b.chunks }

// Bytes returns a copy of the blob contents.
func (b *Blob) Bytes() []byte {
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out
}

// Reader returns a reader over the blob contents.
func (b *Blob) Reader() io.Reader { return bytes.NewReader(b.data) }

func (b *Blob) String() string {
	return fmt.Sprintf("%s blob (%s, %d bytes in %d chunks)", b.kind, b.mimeType, len(b.data), b.chunks)
}
