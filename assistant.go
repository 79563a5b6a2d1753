package quackquery

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DefaultSystemPrompt is used when no system prompt is configured.
const DefaultSystemPrompt = "You are QuackQuery, a helpful multimodal desktop assistant. " +
	"Answer concisely. When the user shares a screenshot, describe or act on what is visible."

// Assistant is the facade over an LLM provider. It answers free-text prompts
// (optionally with images) that no automation capability recognized, and
// records the exchange through a HistoryStore when one is configured.
type Assistant struct {
	provider     Provider
	store        HistoryStore // nil = stateless
	systemPrompt string
	sessionID    string
	historyLimit int
	logger       *slog.Logger
}

// AssistantOption configures an Assistant.
type AssistantOption func(*Assistant)

// WithHistory enables conversation persistence. sessionID groups turns into
// one conversation per process run.
func WithHistory(s HistoryStore, sessionID string) AssistantOption {
	return func(a *Assistant) { a.store, a.sessionID = s, sessionID }
}

// WithSystemPrompt overrides the default system prompt.
func WithSystemPrompt(prompt string) AssistantOption {
	return func(a *Assistant) { a.systemPrompt = prompt }
}

// WithHistoryLimit sets how many stored messages are replayed per turn
// (default: 20).
func WithHistoryLimit(n int) AssistantOption {
	return func(a *Assistant) { a.historyLimit = n }
}

// WithLogger sets the structured logger. If not set, a no-op logger is used.
func WithLogger(l *slog.Logger) AssistantOption {
	return func(a *Assistant) { a.logger = l }
}

// NewAssistant creates an Assistant over the given provider.
func NewAssistant(p Provider, opts ...AssistantOption) *Assistant {
	a := &Assistant{
		provider:     p,
		systemPrompt: DefaultSystemPrompt,
		historyLimit: 20,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = nopLogger
	}
	return a
}

// Answer sends prompt (plus any images) to the provider and returns the
// response text. The call blocks until the provider completes; callers run
// one request at a time. Provider errors are returned as values and must be
// reported, not propagated past the command loop.
func (a *Assistant) Answer(ctx context.Context, prompt string, images []ImageData) (string, error) {
	messages := a.buildMessages(ctx, prompt, images)

	resp, err := a.provider.Chat(ctx, ChatRequest{Messages: messages})
	if err != nil {
		return "", err
	}

	a.logger.Debug("assistant answer",
		"provider", a.provider.Name(),
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens)

	a.spawnStore(ctx, prompt, resp.Content)
	return resp.Content, nil
}

// AnswerStream is like Answer but streams text deltas into ch as they
// arrive. ch is closed by the provider when streaming completes.
func (a *Assistant) AnswerStream(ctx context.Context, prompt string, images []ImageData, ch chan<- string) (string, error) {
	messages := a.buildMessages(ctx, prompt, images)

	resp, err := a.provider.ChatStream(ctx, ChatRequest{Messages: messages}, ch)
	if err != nil {
		return "", err
	}

	a.spawnStore(ctx, prompt, resp.Content)
	return resp.Content, nil
}

// buildMessages constructs the message list: system prompt + history + user turn.
func (a *Assistant) buildMessages(ctx context.Context, prompt string, images []ImageData) []ChatMessage {
	var messages []ChatMessage

	system := a.systemPrompt + fmt.Sprintf("\n\nCurrent time: %s", time.Now().Format(time.RFC3339))
	messages = append(messages, SystemMessage(system))

	if a.store != nil {
		if conv, err := a.store.GetOrCreateConversation(ctx, a.sessionID); err == nil {
			history, _ := a.store.GetMessages(ctx, conv.ID, a.historyLimit)
			for _, m := range history {
				messages = append(messages, ChatMessage{Role: m.Role, Content: m.Content})
			}
		}
	}

	user := UserMessage(prompt)
	user.Images = images
	messages = append(messages, user)
	return messages
}

// spawnStore persists the turn in the background. Best effort: storage
// failures are logged and never surface to the user.
func (a *Assistant) spawnStore(ctx context.Context, userText, assistantText string) {
	if a.store == nil {
		return
	}
	go func() {
		conv, err := a.store.GetOrCreateConversation(ctx, a.sessionID)
		if err != nil {
			a.logger.Warn("store conversation", "err", err)
			return
		}
		now := NowUnix()
		if err := a.store.StoreMessage(ctx, Message{
			ID: NewID(), ConversationID: conv.ID,
			Role: "user", Content: userText, CreatedAt: now,
		}); err != nil {
			a.logger.Warn("store user message", "err", err)
		}
		if err := a.store.StoreMessage(ctx, Message{
			ID: NewID(), ConversationID: conv.ID,
			Role: "assistant", Content: assistantText, CreatedAt: now,
		}); err != nil {
			a.logger.Warn("store assistant message", "err", err)
		}
	}()
}

// Provider returns the underlying provider (for capabilities that need it).
func (a *Assistant) Provider() Provider { return a.provider }
