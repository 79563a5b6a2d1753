// Package voice records short audio clips from the default microphone using
// the platform's recorder command, for transcription by a
// quackquery.Transcriber.
package voice

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	quackquery "github.com/QuackQuery/QuackQuery"
)

// Recorder captures fixed-duration WAV clips.
type Recorder struct {
	goos    string
	seconds int
	// runCmd executes the recorder command; replaceable in tests.
	runCmd func(ctx context.Context, name string, args ...string) error
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithDuration sets the capture length in seconds (default 5).
func WithDuration(seconds int) Option {
	return func(r *Recorder) {
		if seconds > 0 {
			r.seconds = seconds
		}
	}
}

// WithRunner overrides command execution (useful for tests).
func WithRunner(run func(ctx context.Context, name string, args ...string) error) Option {
	return func(r *Recorder) { r.runCmd = run }
}

// NewRecorder creates a Recorder for the current OS.
func NewRecorder(opts ...Option) *Recorder {
	r := &Recorder{goos: runtime.GOOS, seconds: 5, runCmd: runCommand}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record captures one clip and returns it as AudioData. The temp file is
// removed on both success and failure paths.
func (r *Recorder) Record(ctx context.Context) (quackquery.AudioData, error) {
	path := filepath.Join(os.TempDir(), fmt.Sprintf("quackquery-rec-%d.wav", time.Now().UnixNano()))
	defer os.Remove(path)

	name, args := r.command(path)

	// The recorder gets a little headroom past the clip length before the
	// context cancels it.
	cmdCtx, cancel := context.WithTimeout(ctx, time.Duration(r.seconds+10)*time.Second)
	defer cancel()

	if err := r.runCmd(cmdCtx, name, args...); err != nil {
		return quackquery.AudioData{}, fmt.Errorf("record audio (%s): %w", name, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return quackquery.AudioData{}, fmt.Errorf("read recording: %w", err)
	}
	if len(data) == 0 {
		return quackquery.AudioData{}, fmt.Errorf("recorder produced no audio")
	}

	return quackquery.AudioData{MimeType: "audio/wav", Data: data}, nil
}

// command returns the per-OS recorder invocation writing a WAV file to path.
func (r *Recorder) command(path string) (string, []string) {
	secs := strconv.Itoa(r.seconds)
	switch r.goos {
	case "darwin":
		return "ffmpeg", []string{"-y", "-f", "avfoundation", "-i", ":0", "-t", secs, path}
	case "windows":
		return "ffmpeg", []string{"-y", "-f", "dshow", "-i", "audio=default", "-t", secs, path}
	default:
		return "arecord", []string{"-f", "cd", "-d", secs, path}
	}
}

func runCommand(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}
