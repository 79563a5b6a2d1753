// Package console is the interactive terminal frontend: line input from
// stdin and framed, markdown-aware output to stdout.
package console

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// separator frames assistant responses, matching the fixed-width convention
// used in session transcripts.
var separator = strings.Repeat("=", 50)

// Console reads commands and prints results.
type Console struct {
	in  *bufio.Scanner
	out io.Writer
}

// New creates a Console over the given reader and writer.
func New(in io.Reader, out io.Writer) *Console {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024)
	return &Console{in: scanner, out: out}
}

// ReadLine prints prompt and reads one input line. ok is false on EOF.
func (c *Console) ReadLine(prompt string) (string, bool) {
	fmt.Fprint(c.out, prompt)
	if !c.in.Scan() {
		return "", false
	}
	return c.in.Text(), true
}

// Print writes a line of plain text.
func (c *Console) Print(text string) {
	fmt.Fprintln(c.out, text)
}

// Printf writes a formatted line.
func (c *Console) Printf(format string, args ...any) {
	fmt.Fprintf(c.out, format+"\n", args...)
}

// PrintResponse writes an assistant response framed by separator lines,
// rendering markdown for the terminal.
func (c *Console) PrintResponse(markdown string) {
	fmt.Fprintln(c.out, separator)
	fmt.Fprintln(c.out, MarkdownToTerminal(markdown))
	fmt.Fprintln(c.out, separator)
}

// PrintResult writes a capability execution result framed by separator
// lines, without markdown rendering: results are already plain text.
func (c *Console) PrintResult(text string) {
	fmt.Fprintln(c.out, separator)
	fmt.Fprintln(c.out, text)
	fmt.Fprintln(c.out, separator)
}
