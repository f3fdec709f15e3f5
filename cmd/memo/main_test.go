package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// useConfig points the commands at a throwaway data dir.
func useConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "data_dir: " + dir + "\n" +
		"capture:\n  backend: synthetic\n" +
		"gateway:\n  mode: simulated\n  delay: 1ms\n  token: hunter2\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	old := configPath
	configPath = path
	t.Cleanup(func() { configPath = old })
	return dir
}

func execute(t *testing.T, cmdArgs ...string) string {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append(cmdArgs, "--config", configPath))
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("memo %v: %v", cmdArgs, err)
	}
	return buf.String()
}

func TestHistoryEmpty(t *testing.T) {
	useConfig(t)
	if got := execute(t, "history"); got != "No transcription history yet.\n" {
		t.Fatalf("history output = %q", got)
	}
}

func TestTranscribeThenHistory(t *testing.T) {
	dir := useConfig(t)
	rec := filepath.Join(dir, "clip.mp3")
	if err := os.WriteFile(rec, []byte("not really mp3"), 0o644); err != nil {
		t.Fatalf("write recording: %v", err)
	}

	text := execute(t, "transcribe", rec, "--kind", "audio")
	if !strings.Contains(text, "mock transcription of your audio recording") {
		t.Fatalf("transcribe output = %q", text)
	}

	list := execute(t, "history")
	lines := strings.Split(strings.TrimSpace(list), "\n")
	if len(lines) != 1 {
		t.Fatalf("history lines = %d: %q", len(lines), list)
	}
	fields := strings.Split(lines[0], "\t")
	if len(fields) != 4 || fields[2] != "audio" {
		t.Fatalf("history line = %q", lines[0])
	}

	full := execute(t, "history", "show", fields[0])
	if strings.TrimSpace(full) != strings.TrimSpace(text) {
		t.Errorf("show output differs from transcription\nshow: %q\nwant: %q", full, text)
	}
}

func TestConfigRedactsToken(t *testing.T) {
	useConfig(t)
	out := execute(t, "config")
	if strings.Contains(out, "hunter2") {
		t.Error("token leaked in config output")
	}
	if !strings.Contains(out, "backend: synthetic") {
		t.Errorf("config output missing capture backend:\n%s", out)
	}
}
