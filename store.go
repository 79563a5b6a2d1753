package quackquery

import "context"

// HistoryStore abstracts conversation persistence. Optional: an Assistant
// without a store answers each turn statelessly.
type HistoryStore interface {
	// --- Messages ---
	StoreMessage(ctx context.Context, msg Message) error
	GetMessages(ctx context.Context, conversationID string, limit int) ([]Message, error)

	// --- Conversations ---
	GetOrCreateConversation(ctx context.Context, sessionID string) (Conversation, error)

	// --- Key-value config ---
	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error

	// --- Lifecycle ---
	Init(ctx context.Context) error
	Close() error
}
