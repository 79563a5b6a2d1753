package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	quackquery "github.com/QuackQuery/QuackQuery"
)

func newTestProvider(t *testing.T, handler http.Handler) *Gemini {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	old := baseURL
	baseURL = srv.URL
	t.Cleanup(func() { baseURL = old })

	return New("test-key", "gemini-2.5-flash")
}

func chatBody(text string, promptTokens, outputTokens int) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{{
			"content": map[string]any{
				"role":  "model",
				"parts": []map[string]any{{"text": text}},
			},
		}},
		"usageMetadata": map[string]any{
			"promptTokenCount":     promptTokens,
			"candidatesTokenCount": outputTokens,
		},
	}
}

func TestChat(t *testing.T) {
	var gotBody map[string]any
	g := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "gemini-2.5-flash:generateContent") {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatal(err)
		}
		json.NewEncoder(w).Encode(chatBody("Paris", 12, 3))
	}))

	resp, err := g.Chat(context.Background(), quackquery.ChatRequest{
		Messages: []quackquery.ChatMessage{
			quackquery.SystemMessage("be brief"),
			quackquery.UserMessage("capital of France?"),
		},
	})
	if err != nil {
		t.Fatalf("Chat error: %v", err)
	}
	if resp.Content != "Paris" {
		t.Errorf("Content = %q", resp.Content)
	}
	if resp.Usage.InputTokens != 12 || resp.Usage.OutputTokens != 3 {
		t.Errorf("Usage = %+v", resp.Usage)
	}

	if _, ok := gotBody["systemInstruction"]; !ok {
		t.Error("system message should become systemInstruction")
	}
	contents := gotBody["contents"].([]any)
	if len(contents) != 1 {
		t.Fatalf("contents length = %d, want 1 (system message hoisted out)", len(contents))
	}
}

func TestChatMapsAssistantRole(t *testing.T) {
	var gotBody map[string]any
	g := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(chatBody("ok", 1, 1))
	}))

	_, err := g.Chat(context.Background(), quackquery.ChatRequest{
		Messages: []quackquery.ChatMessage{
			quackquery.UserMessage("hi"),
			quackquery.AssistantMessage("hello"),
			quackquery.UserMessage("again"),
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	contents := gotBody["contents"].([]any)
	second := contents[1].(map[string]any)
	if second["role"] != "model" {
		t.Errorf("assistant role = %q, want model", second["role"])
	}
}

func TestChatSendsInlineImages(t *testing.T) {
	var gotBody map[string]any
	g := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(chatBody("a screenshot", 1, 1))
	}))

	user := quackquery.UserMessage("what is this?")
	user.Images = []quackquery.ImageData{{MimeType: "image/png", Base64: "cGl4ZWxz"}}
	_, err := g.Chat(context.Background(), quackquery.ChatRequest{Messages: []quackquery.ChatMessage{user}})
	if err != nil {
		t.Fatal(err)
	}

	contents := gotBody["contents"].([]any)
	parts := contents[0].(map[string]any)["parts"].([]any)
	if len(parts) != 2 {
		t.Fatalf("parts = %d, want text + inlineData", len(parts))
	}
	inline := parts[1].(map[string]any)["inlineData"].(map[string]any)
	if inline["mimeType"] != "image/png" || inline["data"] != "cGl4ZWxz" {
		t.Errorf("inlineData = %v", inline)
	}
}

func TestChatSkipsThoughtParts(t *testing.T) {
	g := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"parts": []map[string]any{
						{"text": "internal reasoning", "thought": true},
						{"text": "visible answer"},
					},
				},
			}},
		})
	}))

	resp, err := g.Chat(context.Background(), quackquery.ChatRequest{
		Messages: []quackquery.ChatMessage{quackquery.UserMessage("hi")},
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Content != "visible answer" {
		t.Errorf("Content = %q, thought parts must be skipped", resp.Content)
	}
}

func TestChatHTTPError(t *testing.T) {
	g := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"quota exceeded"}}`))
	}))

	_, err := g.Chat(context.Background(), quackquery.ChatRequest{
		Messages: []quackquery.ChatMessage{quackquery.UserMessage("hi")},
	})
	httpErr, ok := err.(*quackquery.ErrHTTP)
	if !ok {
		t.Fatalf("err = %T, want *ErrHTTP", err)
	}
	if httpErr.Status != 429 {
		t.Errorf("Status = %d", httpErr.Status)
	}
	if httpErr.RetryAfter != 30*time.Second {
		t.Errorf("RetryAfter = %v, want 30s", httpErr.RetryAfter)
	}
}

func TestParseRetryInfo(t *testing.T) {
	body := `{"error":{"details":[
		{"@type":"type.googleapis.com/google.rpc.ErrorInfo","reason":"RATE_LIMIT_EXCEEDED"},
		{"@type":"type.googleapis.com/google.rpc.RetryInfo","retryDelay":"17s"}
	]}}`
	if got := parseRetryInfo(body); got != 17*time.Second {
		t.Errorf("parseRetryInfo = %v, want 17s", got)
	}
	if got := parseRetryInfo(`{"error":{}}`); got != 0 {
		t.Errorf("parseRetryInfo without details = %v, want 0", got)
	}
	if got := parseRetryInfo("not json"); got != 0 {
		t.Errorf("parseRetryInfo on garbage = %v, want 0", got)
	}
}

func TestChatStream(t *testing.T) {
	g := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, ":streamGenerateContent") {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		chunk1, _ := json.Marshal(chatBody("Hello ", 0, 0))
		chunk2, _ := json.Marshal(chatBody("world", 5, 2))
		w.Write([]byte("data: " + string(chunk1) + "\n\n"))
		w.Write([]byte("data: " + string(chunk2) + "\n\n"))
	}))

	ch := make(chan string, 8)
	resp, err := g.ChatStream(context.Background(), quackquery.ChatRequest{
		Messages: []quackquery.ChatMessage{quackquery.UserMessage("hi")},
	}, ch)
	if err != nil {
		t.Fatalf("ChatStream error: %v", err)
	}
	if resp.Content != "Hello world" {
		t.Errorf("Content = %q", resp.Content)
	}
	// Usage comes from the last chunk.
	if resp.Usage.InputTokens != 5 || resp.Usage.OutputTokens != 2 {
		t.Errorf("Usage = %+v", resp.Usage)
	}

	var deltas []string
	for d := range ch {
		deltas = append(deltas, d)
	}
	if len(deltas) != 2 || deltas[0] != "Hello " || deltas[1] != "world" {
		t.Errorf("deltas = %v", deltas)
	}
}

func TestTranscribe(t *testing.T) {
	var gotBody map[string]any
	g := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(chatBody("  launch notepad  ", 1, 1))
	}))

	got, err := g.Transcribe(context.Background(), quackquery.AudioData{
		MimeType: "audio/wav",
		Data:     []byte("RIFF...."),
	})
	if err != nil {
		t.Fatalf("Transcribe error: %v", err)
	}
	if got != "launch notepad" {
		t.Errorf("transcript = %q, want trimmed text", got)
	}

	contents := gotBody["contents"].([]any)
	parts := contents[0].(map[string]any)["parts"].([]any)
	if len(parts) != 2 {
		t.Fatalf("parts = %d, want instruction + inlineData", len(parts))
	}
	inline := parts[1].(map[string]any)["inlineData"].(map[string]any)
	if inline["mimeType"] != "audio/wav" {
		t.Errorf("mimeType = %v", inline["mimeType"])
	}
}

func TestTranscribeEmptyAudio(t *testing.T) {
	g := New("key", "model")
	if _, err := g.Transcribe(context.Background(), quackquery.AudioData{}); err == nil {
		t.Error("empty audio should error")
	}
}
