package quackquery

import "context"

// Capability is an optional automation integration: a pure intent parser
// paired with a side-effecting executor.
type Capability interface {
	// Name returns the capability name (e.g. "file", "github", "applauncher").
	Name() string
	// Parse maps free text to an Intent. It must be a pure function of the
	// input: no side effects, no I/O. The second return is false when the
	// text does not match this capability's grammar.
	Parse(text string) (Intent, bool)
	// Execute performs the action described by intent. Expected failures are
	// reported in ExecResult.Error; Execute must not panic and must release
	// any resources it acquires before returning.
	Execute(ctx context.Context, intent Intent) ExecResult
}
