// Package filemanager provides the file-operations automation capability:
// create, read, write, delete, and list files inside a sandboxed workspace.
package filemanager

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	quackquery "github.com/QuackQuery/QuackQuery"
)

// maxReadChars caps file content returned to the console.
const maxReadChars = 8000

// Capability implements quackquery.Capability for file operations restricted
// to a workspace directory.
type Capability struct {
	workspacePath string
}

// New creates a file capability rooted at workspacePath. The directory is
// created if it does not exist; failure to create it fails the probe.
func New(workspacePath string) (*Capability, error) {
	if workspacePath == "" {
		return nil, fmt.Errorf("workspace path is empty")
	}
	if err := os.MkdirAll(workspacePath, 0755); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	return &Capability{workspacePath: workspacePath}, nil
}

// Name returns "file".
func (c *Capability) Name() string { return "file" }

// Parse recognizes file commands. Pure string matching: the original casing
// of extracted parameters is preserved.
//
// Grammar:
//
//	create (a) file <path>
//	read|open|show file <path>
//	write|append <content> to file <path>
//	delete|remove file <path>
//	list files
func (c *Capability) Parse(text string) (quackquery.Intent, bool) {
	lower := strings.ToLower(strings.TrimSpace(text))
	trimmed := strings.TrimSpace(text)

	switch {
	case lower == "list files" || lower == "show files":
		return quackquery.Intent{Operation: "list_files"}, true

	case hasAnyPrefix(lower, "create file ", "create a file "):
		path := paramAfter(trimmed, "file ")
		if path == "" {
			return quackquery.Intent{}, false
		}
		return quackquery.Intent{Operation: "create_file", Params: map[string]string{"path": path}}, true

	case hasAnyPrefix(lower, "read file ", "open file ", "show file "):
		path := paramAfter(trimmed, "file ")
		if path == "" {
			return quackquery.Intent{}, false
		}
		return quackquery.Intent{Operation: "read_file", Params: map[string]string{"path": path}}, true

	case hasAnyPrefix(lower, "delete file ", "remove file "):
		path := paramAfter(trimmed, "file ")
		if path == "" {
			return quackquery.Intent{}, false
		}
		return quackquery.Intent{Operation: "delete_file", Params: map[string]string{"path": path}}, true

	case hasAnyPrefix(lower, "write ", "append "):
		// write <content> to file <path>
		idx := strings.LastIndex(lower, " to file ")
		if idx < 0 {
			return quackquery.Intent{}, false
		}
		content := strings.TrimSpace(trimmed[len("write "):idx])
		if hasAnyPrefix(lower, "append ") {
			content = strings.TrimSpace(trimmed[len("append "):idx])
		}
		path := strings.TrimSpace(trimmed[idx+len(" to file "):])
		if content == "" || path == "" {
			return quackquery.Intent{}, false
		}
		return quackquery.Intent{Operation: "write_file", Params: map[string]string{"path": path, "content": content}}, true
	}

	return quackquery.Intent{}, false
}

// Execute performs the file operation. Expected failures are reported in
// ExecResult.Error so the command loop keeps running.
func (c *Capability) Execute(ctx context.Context, intent quackquery.Intent) quackquery.ExecResult {
	switch intent.Operation {
	case "list_files":
		return c.list()
	}

	resolved, err := c.resolvePath(intent.Param("path"))
	if err != nil {
		return quackquery.ExecResult{Error: err.Error()}
	}

	switch intent.Operation {
	case "create_file":
		return c.create(resolved)
	case "read_file":
		return c.read(resolved)
	case "write_file":
		return c.write(resolved, intent.Param("content"))
	case "delete_file":
		return c.delete(resolved)
	default:
		return quackquery.ExecResult{Error: "unknown file operation: " + intent.Operation}
	}
}

// resolvePath confines a user path to the workspace.
func (c *Capability) resolvePath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("file path is required")
	}
	if filepath.IsAbs(path) {
		return "", fmt.Errorf("absolute paths not allowed: %s", path)
	}
	if strings.Contains(path, "..") {
		return "", fmt.Errorf("path traversal not allowed: %s", path)
	}
	resolved := filepath.Join(c.workspacePath, path)
	// Double-check it's still within workspace
	if !strings.HasPrefix(resolved, c.workspacePath) {
		return "", fmt.Errorf("path escapes workspace: %s", path)
	}
	return resolved, nil
}

func (c *Capability) create(path string) quackquery.ExecResult {
	if _, err := os.Stat(path); err == nil {
		return quackquery.ExecResult{Error: "file already exists: " + filepath.Base(path)}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return quackquery.ExecResult{Error: "mkdir error: " + err.Error()}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return quackquery.ExecResult{Error: "create error: " + err.Error()}
	}
	f.Close()
	return quackquery.ExecResult{Content: fmt.Sprintf("Created %s", filepath.Base(path))}
}

func (c *Capability) read(path string) quackquery.ExecResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return quackquery.ExecResult{Error: "read error: " + err.Error()}
	}

	var content string
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		content, err = extractPDFText(data)
		if err != nil {
			return quackquery.ExecResult{Error: "pdf error: " + err.Error()}
		}
	} else {
		content = string(data)
	}

	if len(content) > maxReadChars {
		content = content[:maxReadChars] + "\n... (truncated)"
	}
	return quackquery.ExecResult{Content: content}
}

func (c *Capability) write(path, content string) quackquery.ExecResult {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return quackquery.ExecResult{Error: "mkdir error: " + err.Error()}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return quackquery.ExecResult{Error: "write error: " + err.Error()}
	}
	defer f.Close()
	if _, err := f.WriteString(content + "\n"); err != nil {
		return quackquery.ExecResult{Error: "write error: " + err.Error()}
	}
	return quackquery.ExecResult{Content: fmt.Sprintf("Written %d bytes to %s", len(content), filepath.Base(path))}
}

func (c *Capability) delete(path string) quackquery.ExecResult {
	if err := os.Remove(path); err != nil {
		return quackquery.ExecResult{Error: "delete error: " + err.Error()}
	}
	return quackquery.ExecResult{Content: fmt.Sprintf("Deleted %s", filepath.Base(path))}
}

func (c *Capability) list() quackquery.ExecResult {
	entries, err := os.ReadDir(c.workspacePath)
	if err != nil {
		return quackquery.ExecResult{Error: "list error: " + err.Error()}
	}
	if len(entries) == 0 {
		return quackquery.ExecResult{Content: "Workspace is empty."}
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return quackquery.ExecResult{Content: strings.Join(names, "\n")}
}

// hasAnyPrefix reports whether s starts with any of the prefixes.
func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// paramAfter extracts everything after the first occurrence of marker,
// matched case-insensitively, preserving original casing.
func paramAfter(text, marker string) string {
	idx := strings.Index(strings.ToLower(text), marker)
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(text[idx+len(marker):])
}

var _ quackquery.Capability = (*Capability)(nil)
