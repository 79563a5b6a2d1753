package quackquery

import (
	"context"
	"fmt"
	"sync"
)

// fakeProvider is a scripted Provider for tests. Each call consumes the next
// step; when the script runs out, the last step repeats.
type fakeProvider struct {
	mu    sync.Mutex
	steps []fakeStep
	calls int
	reqs  []ChatRequest
}

type fakeStep struct {
	resp ChatResponse
	err  error
}

func respondWith(content string) *fakeProvider {
	return &fakeProvider{steps: []fakeStep{{resp: ChatResponse{Content: content}}}}
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) next(req ChatRequest) (ChatResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	i := f.calls
	if i >= len(f.steps) {
		i = len(f.steps) - 1
	}
	f.calls++
	return f.steps[i].resp, f.steps[i].err
}

func (f *fakeProvider) Chat(_ context.Context, req ChatRequest) (ChatResponse, error) {
	return f.next(req)
}

func (f *fakeProvider) ChatStream(_ context.Context, req ChatRequest, ch chan<- string) (ChatResponse, error) {
	resp, err := f.next(req)
	if err == nil {
		ch <- resp.Content
	}
	close(ch)
	return resp, err
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeProvider) lastRequest() ChatRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.reqs) == 0 {
		return ChatRequest{}
	}
	return f.reqs[len(f.reqs)-1]
}

// fakeCapability matches commands with a fixed prefix and returns a canned
// result.
type fakeCapability struct {
	name     string
	prefix   string
	result   ExecResult
	executed []Intent
}

func (f *fakeCapability) Name() string { return f.name }

func (f *fakeCapability) Parse(text string) (Intent, bool) {
	if f.prefix == "" || len(text) < len(f.prefix) || text[:len(f.prefix)] != f.prefix {
		return Intent{}, false
	}
	return Intent{Operation: f.name + "_op", Params: map[string]string{"text": text}}, true
}

func (f *fakeCapability) Execute(_ context.Context, intent Intent) ExecResult {
	f.executed = append(f.executed, intent)
	return f.result
}

// memStore is an in-memory HistoryStore.
type memStore struct {
	mu       sync.Mutex
	convs    map[string]Conversation // keyed by session ID
	messages map[string][]Message    // keyed by conversation ID
}

func newMemStore() *memStore {
	return &memStore{
		convs:    make(map[string]Conversation),
		messages: make(map[string][]Message),
	}
}

func (s *memStore) Init(context.Context) error { return nil }
func (s *memStore) Close() error               { return nil }

func (s *memStore) GetOrCreateConversation(_ context.Context, sessionID string) (Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if conv, ok := s.convs[sessionID]; ok {
		return conv, nil
	}
	conv := Conversation{ID: fmt.Sprintf("conv-%d", len(s.convs)+1), SessionID: sessionID, CreatedAt: NowUnix()}
	s.convs[sessionID] = conv
	return conv, nil
}

func (s *memStore) StoreMessage(_ context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[msg.ConversationID] = append(s.messages[msg.ConversationID], msg)
	return nil
}

func (s *memStore) GetMessages(_ context.Context, conversationID string, limit int) ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.messages[conversationID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (s *memStore) GetConfig(_ context.Context, key string) (string, error) { return "", nil }
func (s *memStore) SetConfig(_ context.Context, key, value string) error   { return nil }
