package gateway

import (
	"context"
	"fmt"
	"os"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/jwulff/memo/internal/capture"
	"github.com/jwulff/memo/internal/config"
	"github.com/jwulff/memo/internal/media"
)

// response is the service's JSON body for both success and failure.
type response struct {
	Status string `json:"status"`
	Text   string `json:"text"`
	Error  string `json:"error"`
}

// HTTP uploads the recording as multipart/form-data and reads back the text.
type HTTP struct {
	endpoint string
	tempDir  string
	client   *resty.Client
	log      *zap.SugaredLogger
}

// NewHTTP builds a client for cfg.Endpoint. Recordings are staged in tempDir
// (os.TempDir when empty) while uploading.
func NewHTTP(cfg config.Gateway, tempDir string, log *zap.SugaredLogger) *HTTP {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")
	if cfg.Token != "" {
		client.SetAuthToken(cfg.Token)
	}
	return &HTTP{endpoint: cfg.Endpoint, tempDir: tempDir, client: client, log: log}
}

// UploadName is the multipart file name the service expects.
func UploadName(kind capture.MediaKind) string {
	if kind == capture.Video {
		return "recording.mp4"
	}
	return "recording.mp3"
}

func (h *HTTP) Transcribe(ctx context.Context, blob *capture.Blob) (string, error) {
	if blob == nil {
		return "", failed("no recording", nil)
	}

	path, err := media.TempFile(h.tempDir, blob)
	if err != nil {
		return "", failed("could not prepare recording", err)
	}
	defer os.Remove(path)

	f, err := os.Open(path)
	if err != nil {
		return "", failed("could not prepare recording", err)
	}
	defer f.Close()

	var body response
	resp, err := h.client.R().
		SetContext(ctx).
		SetFileReader("file", UploadName(blob.Kind()), f).
		SetResult(&body).
		SetError(&body).
		Post(h.endpoint)
	if err != nil {
		h.log.Warnw("transcription request failed", "endpoint", h.endpoint, "error", err)
		return "", failed(fmt.Sprintf("request failed: %v", err), err)
	}

	h.log.Debugw("transcription response", "status", resp.StatusCode(), "bytes", blob.Len())

	if resp.IsError() || body.Status != "success" {
		reason := body.Error
		if reason == "" {
			reason = fmt.Sprintf("Transcription failed (%s)", resp.Status())
		}
		return "", failed(reason, nil)
	}
	return body.Text, nil
}
