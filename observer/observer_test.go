package observer

import (
	"context"
	"testing"

	quackquery "github.com/QuackQuery/QuackQuery"
)

// newInstruments against the default (noop) global providers must still
// return usable instruments.
func TestNewInstruments(t *testing.T) {
	inst, err := newInstruments()
	if err != nil {
		t.Fatalf("newInstruments: %v", err)
	}
	if inst.Tracer == nil || inst.Meter == nil || inst.Logger == nil {
		t.Error("instruments incomplete")
	}
	if inst.LLMRequests == nil || inst.TokenUsage == nil || inst.CapabilityExecutions == nil {
		t.Error("counters missing")
	}
}

type staticProvider struct{}

func (staticProvider) Name() string { return "static" }

func (staticProvider) Chat(context.Context, quackquery.ChatRequest) (quackquery.ChatResponse, error) {
	return quackquery.ChatResponse{
		Content: "answer",
		Usage:   quackquery.Usage{InputTokens: 3, OutputTokens: 2},
	}, nil
}

func (staticProvider) ChatStream(_ context.Context, _ quackquery.ChatRequest, ch chan<- string) (quackquery.ChatResponse, error) {
	ch <- "ans"
	ch <- "wer"
	close(ch)
	return quackquery.ChatResponse{Content: "answer"}, nil
}

func TestWrapProviderDelegates(t *testing.T) {
	inst, err := newInstruments()
	if err != nil {
		t.Fatal(err)
	}
	p := WrapProvider(staticProvider{}, "test-model", inst)

	if p.Name() != "static" {
		t.Errorf("Name = %q", p.Name())
	}

	resp, err := p.Chat(context.Background(), quackquery.ChatRequest{})
	if err != nil {
		t.Fatalf("Chat error: %v", err)
	}
	if resp.Content != "answer" {
		t.Errorf("Content = %q", resp.Content)
	}
}

func TestWrapProviderStreamForwardsDeltas(t *testing.T) {
	inst, err := newInstruments()
	if err != nil {
		t.Fatal(err)
	}
	p := WrapProvider(staticProvider{}, "test-model", inst)

	ch := make(chan string, 8)
	resp, err := p.ChatStream(context.Background(), quackquery.ChatRequest{}, ch)
	if err != nil {
		t.Fatalf("ChatStream error: %v", err)
	}
	if resp.Content != "answer" {
		t.Errorf("Content = %q", resp.Content)
	}

	var got string
	for d := range ch {
		got += d
	}
	if got != "answer" {
		t.Errorf("deltas = %q", got)
	}
}

type staticCapability struct{ executed bool }

func (s *staticCapability) Name() string { return "static" }

func (s *staticCapability) Parse(text string) (quackquery.Intent, bool) {
	if text != "go" {
		return quackquery.Intent{}, false
	}
	return quackquery.Intent{Operation: "go_op"}, true
}

func (s *staticCapability) Execute(context.Context, quackquery.Intent) quackquery.ExecResult {
	s.executed = true
	return quackquery.ExecResult{Content: "done"}
}

func TestWrapCapabilityDelegates(t *testing.T) {
	inst, err := newInstruments()
	if err != nil {
		t.Fatal(err)
	}
	inner := &staticCapability{}
	c := WrapCapability(inner, inst)

	if c.Name() != "static" {
		t.Errorf("Name = %q", c.Name())
	}
	if _, ok := c.Parse("nope"); ok {
		t.Error("Parse should delegate misses")
	}
	intent, ok := c.Parse("go")
	if !ok {
		t.Fatal("Parse should delegate matches")
	}

	result := c.Execute(context.Background(), intent)
	if !inner.executed {
		t.Error("inner capability not executed")
	}
	if result.Content != "done" {
		t.Errorf("Content = %q", result.Content)
	}
}
