package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	quackquery "github.com/QuackQuery/QuackQuery"
	"github.com/QuackQuery/QuackQuery/frontend/console"
)

// scriptProvider records prompts and answers with a fixed string.
type scriptProvider struct {
	mu      sync.Mutex
	prompts []string
	answer  string
}

func (p *scriptProvider) Name() string { return "script" }

func (p *scriptProvider) Chat(_ context.Context, req quackquery.ChatRequest) (quackquery.ChatResponse, error) {
	p.mu.Lock()
	p.prompts = append(p.prompts, req.Messages[len(req.Messages)-1].Content)
	p.mu.Unlock()
	return quackquery.ChatResponse{Content: p.answer}, nil
}

func (p *scriptProvider) ChatStream(ctx context.Context, req quackquery.ChatRequest, ch chan<- string) (quackquery.ChatResponse, error) {
	close(ch)
	return p.Chat(ctx, req)
}

func (p *scriptProvider) calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.prompts))
	copy(out, p.prompts)
	return out
}

// stubCapability matches a prefix and records executions.
type stubCapability struct {
	name     string
	prefix   string
	result   quackquery.ExecResult
	executed []quackquery.Intent
}

func (s *stubCapability) Name() string { return s.name }

func (s *stubCapability) Parse(text string) (quackquery.Intent, bool) {
	if !strings.HasPrefix(strings.ToLower(text), s.prefix) {
		return quackquery.Intent{}, false
	}
	rest := strings.TrimSpace(text[len(s.prefix):])
	return quackquery.Intent{Operation: s.name + "_op", Params: map[string]string{"arg": rest}}, true
}

func (s *stubCapability) Execute(_ context.Context, intent quackquery.Intent) quackquery.ExecResult {
	s.executed = append(s.executed, intent)
	return s.result
}

type stubRecorder struct {
	audio quackquery.AudioData
	err   error
}

func (s *stubRecorder) Record(context.Context) (quackquery.AudioData, error) {
	return s.audio, s.err
}

type stubTranscriber struct {
	text string
	err  error
}

func (s *stubTranscriber) Transcribe(context.Context, quackquery.AudioData) (string, error) {
	return s.text, s.err
}

type stubCapturer struct {
	img quackquery.ImageData
	err error
}

func (s *stubCapturer) Capture(context.Context) (quackquery.ImageData, error) {
	return s.img, s.err
}

// runSession drives a session over scripted input and returns the output.
func runSession(t *testing.T, input string, mutate func(*Deps)) (string, *scriptProvider, *stubCapability) {
	t.Helper()

	provider := &scriptProvider{answer: "assistant says hi"}
	launcher := &stubCapability{
		name:   "applauncher",
		prefix: "launch ",
		result: quackquery.ExecResult{Content: "✅ Launched notepad"},
	}
	registry := quackquery.NewRegistry([]quackquery.Probe{
		{Name: "applauncher", Init: func() (quackquery.Capability, error) { return launcher, nil }},
	})

	var out strings.Builder
	deps := Deps{
		Console:   console.New(strings.NewReader(input), &out),
		Assistant: quackquery.NewAssistant(provider),
		Registry:  registry,
	}
	if mutate != nil {
		mutate(&deps)
	}

	if err := New(deps).Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	return out.String(), provider, launcher
}

func TestAutomationDispatchesWithoutAssistant(t *testing.T) {
	out, provider, launcher := runSession(t, "3\nlaunch notepad\nexit\n", nil)

	if len(launcher.executed) != 1 {
		t.Fatalf("executed %d intents, want 1", len(launcher.executed))
	}
	intent := launcher.executed[0]
	if intent.Operation != "applauncher_op" || intent.Param("arg") != "notepad" {
		t.Errorf("intent = %+v", intent)
	}
	if len(provider.calls()) != 0 {
		t.Errorf("assistant called %d times, want 0 for a parsed command", len(provider.calls()))
	}
	if !strings.Contains(out, "✅ Launched notepad") {
		t.Errorf("result not printed:\n%s", out)
	}
}

func TestUnrecognizedCommandGoesToAssistantVerbatim(t *testing.T) {
	_, provider, launcher := runSession(t, "3\nwhat is the weather today?\nexit\n", nil)

	if len(launcher.executed) != 0 {
		t.Error("capability should not run for unrecognized text")
	}
	calls := provider.calls()
	if len(calls) != 1 {
		t.Fatalf("assistant called %d times, want 1", len(calls))
	}
	if calls[0] != "what is the weather today?" {
		t.Errorf("prompt = %q, want verbatim command", calls[0])
	}
}

func TestExitEndsAutomationWithoutDispatch(t *testing.T) {
	for _, exit := range []string{"exit", "EXIT", "Exit", "  exit  "} {
		out, provider, launcher := runSession(t, "3\n"+exit+"\n", nil)

		if len(launcher.executed) != 0 {
			t.Errorf("exit variant %q reached a capability", exit)
		}
		if len(provider.calls()) != 0 {
			t.Errorf("exit variant %q reached the assistant", exit)
		}
		// After the sub-loop ends, the menu is shown again.
		if strings.Count(out, "What would you like to do?") < 2 {
			t.Errorf("menu not re-shown after exit %q:\n%s", exit, out)
		}
	}
}

func TestFullwidthExitRecognized(t *testing.T) {
	_, provider, _ := runSession(t, "3\nｅｘｉｔ\n", nil)
	if len(provider.calls()) != 0 {
		t.Error("normalized fullwidth exit should end the sub-loop, not reach the assistant")
	}
}

func TestCapabilityFailureKeepsLoopRunning(t *testing.T) {
	out, _, _ := runSession(t, "3\nfail now\nlaunch notepad\nexit\n", func(d *Deps) {
		failing := &stubCapability{
			name:   "failing",
			prefix: "fail ",
			result: quackquery.ExecResult{Error: "something broke"},
		}
		d.Registry = quackquery.NewRegistry([]quackquery.Probe{
			{Name: "failing", Init: func() (quackquery.Capability, error) { return failing, nil }},
			{Name: "applauncher", Init: func() (quackquery.Capability, error) {
				return &stubCapability{name: "applauncher", prefix: "launch ", result: quackquery.ExecResult{Content: "✅ Launched notepad"}}, nil
			}},
		})
	})

	if !strings.Contains(out, "Error: something broke") {
		t.Errorf("failure not reported:\n%s", out)
	}
	if !strings.Contains(out, "✅ Launched notepad") {
		t.Errorf("loop did not continue after a failure:\n%s", out)
	}
}

func TestInvalidChoiceEndsSession(t *testing.T) {
	out, provider, _ := runSession(t, "7\nlaunch notepad\n", nil)

	if !strings.Contains(out, "Invalid choice") {
		t.Errorf("invalid choice not reported:\n%s", out)
	}
	// The session ended: the rest of the input is never processed.
	if len(provider.calls()) != 0 {
		t.Error("input after an invalid choice should not be processed")
	}
}

func TestAutomationModeInvalidWhenNoCapabilities(t *testing.T) {
	out, _, _ := runSession(t, "3\n", func(d *Deps) {
		d.Registry = quackquery.NewRegistry([]quackquery.Probe{
			{Name: "github", Init: func() (quackquery.Capability, error) {
				return nil, errors.New("no token")
			}},
		})
	})

	if !strings.Contains(out, "Invalid choice") {
		t.Errorf("mode 3 with no capabilities should be invalid:\n%s", out)
	}
}

func TestVoiceTurnDispatchesTranscript(t *testing.T) {
	out, provider, launcher := runSession(t, "1\n", func(d *Deps) {
		d.Recorder = &stubRecorder{audio: quackquery.AudioData{MimeType: "audio/wav"}}
		d.Transcriber = &stubTranscriber{text: "launch notepad"}
	})

	if len(launcher.executed) != 1 {
		t.Fatalf("transcript should dispatch like typed input, executed=%d", len(launcher.executed))
	}
	if len(provider.calls()) != 0 {
		t.Error("parsed transcript should not reach the assistant")
	}
	if !strings.Contains(out, "You said: launch notepad") {
		t.Errorf("transcript not echoed:\n%s", out)
	}
}

func TestVoiceTurnFallsBackToAssistant(t *testing.T) {
	_, provider, _ := runSession(t, "1\n", func(d *Deps) {
		d.Recorder = &stubRecorder{}
		d.Transcriber = &stubTranscriber{text: "tell me a joke"}
	})

	calls := provider.calls()
	if len(calls) != 1 || calls[0] != "tell me a joke" {
		t.Errorf("assistant calls = %v, want verbatim transcript", calls)
	}
}

func TestVoiceTurnRecordingFailureSurvives(t *testing.T) {
	out, _, _ := runSession(t, "1\n3\nexit\n", func(d *Deps) {
		d.Recorder = &stubRecorder{err: errors.New("no microphone")}
		d.Transcriber = &stubTranscriber{}
	})

	if !strings.Contains(out, "Recording failed") {
		t.Errorf("recording failure not reported:\n%s", out)
	}
	// The session survived to process mode 3.
	if !strings.Contains(out, "Automation mode") {
		t.Errorf("session should continue after a failed turn:\n%s", out)
	}
}

func TestVisionTurnSendsScreenshot(t *testing.T) {
	_, provider, _ := runSession(t, "2\nwhat app is open?\n", func(d *Deps) {
		d.Capturer = &stubCapturer{img: quackquery.ImageData{MimeType: "image/png", Base64: "cGl4ZWxz"}}
	})

	calls := provider.calls()
	if len(calls) != 1 || calls[0] != "what app is open?" {
		t.Errorf("assistant calls = %v", calls)
	}
}

func TestVisionTurnCaptureFailureSurvives(t *testing.T) {
	out, provider, _ := runSession(t, "2\n", func(d *Deps) {
		d.Capturer = &stubCapturer{err: errors.New("no display")}
	})

	if !strings.Contains(out, "Screenshot failed") {
		t.Errorf("capture failure not reported:\n%s", out)
	}
	if len(provider.calls()) != 0 {
		t.Error("assistant should not be called when capture fails")
	}
}
