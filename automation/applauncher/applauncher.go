// Package applauncher provides the application automation capability:
// discover installed applications, launch them, and close them.
package applauncher

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"sort"
	"strings"

	quackquery "github.com/QuackQuery/QuackQuery"
)

// MaxListed caps how many applications list_apps prints; the rest collapse
// into a single summary line.
const MaxListed = 20

// App is a discovered installed application.
type App struct {
	Name string
	// Exec is the launch command line (Linux .desktop Exec value). Empty on
	// platforms that launch by name.
	Exec string
}

// Capability implements quackquery.Capability for application launching.
type Capability struct {
	goos string
	apps []App
	// run starts a command detached; replaceable in tests.
	run func(name string, args ...string) error
}

// Option configures a Capability.
type Option func(*Capability)

// WithApps overrides the discovered application list (useful for tests).
func WithApps(apps []App) Option {
	return func(c *Capability) { c.apps = apps }
}

// WithRunner overrides how launch commands are started (useful for tests).
func WithRunner(run func(name string, args ...string) error) Option {
	return func(c *Capability) { c.run = run }
}

// New creates the app-launch capability, discovering installed applications
// for the current OS. Discovery failures leave the list empty; launching by
// name still works.
func New(opts ...Option) (*Capability, error) {
	c := &Capability{goos: runtime.GOOS, run: startDetached}
	for _, opt := range opts {
		opt(c)
	}
	if c.apps == nil {
		c.apps = discoverApps(c.goos)
	}
	return c, nil
}

// Name returns "applauncher".
func (c *Capability) Name() string { return "applauncher" }

// Parse recognizes application commands.
//
// Grammar:
//
//	launch|open|start <app>
//	close|kill <app>
//	list apps|applications | show apps
func (c *Capability) Parse(text string) (quackquery.Intent, bool) {
	lower := strings.ToLower(strings.TrimSpace(text))
	trimmed := strings.TrimSpace(text)

	switch {
	case lower == "list apps" || lower == "list applications" || lower == "show apps":
		return quackquery.Intent{Operation: "list_apps"}, true

	case hasVerb(lower, "launch"), hasVerb(lower, "open"), hasVerb(lower, "start"):
		name := afterVerb(trimmed)
		if name == "" {
			return quackquery.Intent{}, false
		}
		return quackquery.Intent{Operation: "launch_app", Params: map[string]string{"app_name": name}}, true

	case hasVerb(lower, "close"), hasVerb(lower, "kill"):
		name := afterVerb(trimmed)
		if name == "" {
			return quackquery.Intent{}, false
		}
		return quackquery.Intent{Operation: "close_app", Params: map[string]string{"app_name": name}}, true
	}

	return quackquery.Intent{}, false
}

func hasVerb(lower, verb string) bool {
	return strings.HasPrefix(lower, verb+" ")
}

// afterVerb returns everything after the first word, original casing.
func afterVerb(text string) string {
	_, rest, ok := strings.Cut(text, " ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(rest)
}

// Execute performs the application operation. Launch and close results carry
// a ✅/❌ glyph prefix.
func (c *Capability) Execute(ctx context.Context, intent quackquery.Intent) quackquery.ExecResult {
	switch intent.Operation {
	case "list_apps":
		return c.list()
	case "launch_app":
		return c.launch(intent.Param("app_name"))
	case "close_app":
		return c.close(intent.Param("app_name"))
	default:
		return quackquery.ExecResult{Error: "unknown app operation: " + intent.Operation}
	}
}

// list prints at most MaxListed application names plus a summary line for
// the remainder, so a machine with hundreds of apps never floods the console.
func (c *Capability) list() quackquery.ExecResult {
	if len(c.apps) == 0 {
		return quackquery.ExecResult{Content: "No applications discovered."}
	}

	names := make([]string, 0, len(c.apps))
	for _, a := range c.apps {
		names = append(names, a.Name)
	}
	sort.Strings(names)

	shown := names
	var omitted int
	if len(names) > MaxListed {
		shown = names[:MaxListed]
		omitted = len(names) - MaxListed
	}

	var sb strings.Builder
	for _, n := range shown {
		sb.WriteString(n)
		sb.WriteString("\n")
	}
	if omitted > 0 {
		fmt.Fprintf(&sb, "... and %d more applications", omitted)
	}
	return quackquery.ExecResult{Content: strings.TrimRight(sb.String(), "\n")}
}

func (c *Capability) launch(name string) quackquery.ExecResult {
	var err error
	switch c.goos {
	case "darwin":
		err = c.run("open", "-a", name)
	case "windows":
		err = c.run("cmd", "/c", "start", "", name)
	default:
		err = c.launchLinux(name)
	}
	if err != nil {
		return quackquery.ExecResult{Error: fmt.Sprintf("❌ Failed to launch %s: %v", name, err)}
	}
	return quackquery.ExecResult{Content: fmt.Sprintf("✅ Launched %s", name)}
}

// launchLinux prefers the discovered .desktop Exec line; otherwise the name
// is tried directly as a command.
func (c *Capability) launchLinux(name string) error {
	if app, ok := c.find(name); ok && app.Exec != "" {
		fields := strings.Fields(stripFieldCodes(app.Exec))
		if len(fields) > 0 {
			return c.run(fields[0], fields[1:]...)
		}
	}
	return c.run(strings.ToLower(name))
}

func (c *Capability) close(name string) quackquery.ExecResult {
	var err error
	switch c.goos {
	case "windows":
		err = c.run("taskkill", "/IM", name+".exe", "/F")
	default:
		err = c.run("pkill", "-i", "-f", name)
	}
	if err != nil {
		return quackquery.ExecResult{Error: fmt.Sprintf("❌ Failed to close %s: %v", name, err)}
	}
	return quackquery.ExecResult{Content: fmt.Sprintf("✅ Closed %s", name)}
}

// find matches a discovered app by case-insensitive name or substring.
func (c *Capability) find(name string) (App, bool) {
	lower := strings.ToLower(name)
	for _, a := range c.apps {
		if strings.ToLower(a.Name) == lower {
			return a, true
		}
	}
	for _, a := range c.apps {
		if strings.Contains(strings.ToLower(a.Name), lower) {
			return a, true
		}
	}
	return App{}, false
}

// stripFieldCodes removes .desktop %-field codes (%u, %U, %f, %F, ...).
func stripFieldCodes(execLine string) string {
	fields := strings.Fields(execLine)
	out := fields[:0]
	for _, f := range fields {
		if strings.HasPrefix(f, "%") {
			continue
		}
		out = append(out, f)
	}
	return strings.Join(out, " ")
}

// startDetached starts a command without waiting for it to finish. The
// spawned process outlives the command loop iteration.
func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	// Reap the child in the background to avoid zombies.
	go func() { _ = cmd.Wait() }()
	return nil
}

var _ quackquery.Capability = (*Capability)(nil)
