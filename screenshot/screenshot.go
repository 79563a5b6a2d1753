// Package screenshot captures the screen using the platform's capture
// command and returns the image for multimodal prompts.
package screenshot

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	quackquery "github.com/QuackQuery/QuackQuery"
)

// Capturer takes full-screen PNG screenshots.
type Capturer struct {
	goos string
	// runCmd executes the capture command; replaceable in tests.
	runCmd func(ctx context.Context, name string, args ...string) error
}

// Option configures a Capturer.
type Option func(*Capturer)

// WithRunner overrides command execution (useful for tests).
func WithRunner(run func(ctx context.Context, name string, args ...string) error) Option {
	return func(c *Capturer) { c.runCmd = run }
}

// NewCapturer creates a Capturer for the current OS.
func NewCapturer(opts ...Option) *Capturer {
	c := &Capturer{goos: runtime.GOOS, runCmd: runCommand}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Capture takes one screenshot and returns it as base64 PNG ImageData. The
// temp file is removed on both success and failure paths.
func (c *Capturer) Capture(ctx context.Context) (quackquery.ImageData, error) {
	path := filepath.Join(os.TempDir(), fmt.Sprintf("quackquery-shot-%d.png", time.Now().UnixNano()))
	defer os.Remove(path)

	cmdCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	name, args := c.command(path)
	if err := c.runCmd(cmdCtx, name, args...); err != nil {
		return quackquery.ImageData{}, fmt.Errorf("capture screen (%s): %w", name, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return quackquery.ImageData{}, fmt.Errorf("read screenshot: %w", err)
	}
	if len(data) == 0 {
		return quackquery.ImageData{}, fmt.Errorf("capture produced no image")
	}

	return quackquery.ImageData{
		MimeType: "image/png",
		Base64:   base64.StdEncoding.EncodeToString(data),
	}, nil
}

// command returns the per-OS capture invocation writing a PNG to path.
func (c *Capturer) command(path string) (string, []string) {
	switch c.goos {
	case "darwin":
		return "screencapture", []string{"-x", path}
	case "windows":
		script := fmt.Sprintf(
			`Add-Type -AssemblyName System.Windows.Forms,System.Drawing; `+
				`$b = [System.Windows.Forms.SystemInformation]::VirtualScreen; `+
				`$bmp = New-Object System.Drawing.Bitmap $b.Width, $b.Height; `+
				`$g = [System.Drawing.Graphics]::FromImage($bmp); `+
				`$g.CopyFromScreen($b.Location, [System.Drawing.Point]::Empty, $b.Size); `+
				`$bmp.Save('%s')`, path)
		return "powershell", []string{"-NoProfile", "-Command", script}
	default:
		return "gnome-screenshot", []string{"-f", path}
	}
}

func runCommand(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}
