package console

import (
	"strings"
	"testing"
)

func TestMarkdownToTerminalBold(t *testing.T) {
	got := MarkdownToTerminal("this is **important** text")
	if !strings.Contains(got, ansiBold+"important"+ansiReset) {
		t.Errorf("bold not rendered: %q", got)
	}
}

func TestMarkdownToTerminalItalic(t *testing.T) {
	got := MarkdownToTerminal("an *emphasized* word")
	if !strings.Contains(got, ansiItalic+"emphasized"+ansiReset) {
		t.Errorf("italic not rendered: %q", got)
	}
}

func TestMarkdownToTerminalHeading(t *testing.T) {
	got := MarkdownToTerminal("# Title\n\nbody")
	if !strings.Contains(got, ansiBold+"Title"+ansiReset) {
		t.Errorf("heading not bold: %q", got)
	}
}

func TestMarkdownToTerminalBulletList(t *testing.T) {
	got := MarkdownToTerminal("- one\n- two")
	if !strings.Contains(got, "• one") || !strings.Contains(got, "• two") {
		t.Errorf("bullets not rendered: %q", got)
	}
}

func TestMarkdownToTerminalOrderedList(t *testing.T) {
	got := MarkdownToTerminal("1. first\n2. second")
	if !strings.Contains(got, "1. first") || !strings.Contains(got, "2. second") {
		t.Errorf("ordered list not rendered: %q", got)
	}
}

func TestMarkdownToTerminalLink(t *testing.T) {
	got := MarkdownToTerminal("see [the docs](https://example.com)")
	if !strings.Contains(got, "the docs (https://example.com)") {
		t.Errorf("link not rendered as text (url): %q", got)
	}
}

func TestMarkdownToTerminalCodeBlock(t *testing.T) {
	got := MarkdownToTerminal("```\nfmt.Println(\"hi\")\n```")
	if !strings.Contains(got, "    fmt.Println(\"hi\")") {
		t.Errorf("code block not indented: %q", got)
	}
}

func TestMarkdownToTerminalCodeSpan(t *testing.T) {
	got := MarkdownToTerminal("run `go test` now")
	if !strings.Contains(got, ansiDim+"go test"+ansiReset) {
		t.Errorf("code span not dimmed: %q", got)
	}
}

func TestMarkdownToTerminalStrikethrough(t *testing.T) {
	got := MarkdownToTerminal("~~removed~~ kept")
	if !strings.Contains(got, ansiStrike+"removed"+ansiReset) {
		t.Errorf("strikethrough not rendered: %q", got)
	}
}

func TestMarkdownToTerminalPlainTextUntouched(t *testing.T) {
	got := MarkdownToTerminal("just a sentence")
	if got != "just a sentence" {
		t.Errorf("plain text changed: %q", got)
	}
}
