package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	quackquery "github.com/QuackQuery/QuackQuery"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(filepath.Join(t.TempDir(), "test.db"))
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGetOrCreateConversation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.GetOrCreateConversation(ctx, "session-a")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.ID == "" || first.SessionID != "session-a" {
		t.Errorf("conversation = %+v", first)
	}

	again, err := s.GetOrCreateConversation(ctx, "session-a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if again.ID != first.ID {
		t.Errorf("same session returned different conversations: %q vs %q", again.ID, first.ID)
	}

	other, err := s.GetOrCreateConversation(ctx, "session-b")
	if err != nil {
		t.Fatalf("create other: %v", err)
	}
	if other.ID == first.ID {
		t.Error("different sessions should get different conversations")
	}
}

func TestStoreAndGetMessages(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	conv, err := s.GetOrCreateConversation(ctx, "session-a")
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 5; i++ {
		msg := quackquery.Message{
			ID:             quackquery.NewID(),
			ConversationID: conv.ID,
			Role:           "user",
			Content:        fmt.Sprintf("message %d", i),
			CreatedAt:      int64(1000 + i),
		}
		if err := s.StoreMessage(ctx, msg); err != nil {
			t.Fatalf("StoreMessage: %v", err)
		}
	}

	msgs, err := s.GetMessages(ctx, conv.ID, 3)
	if err != nil {
		t.Fatalf("GetMessages: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("got %d messages, want 3 (limit)", len(msgs))
	}
	// Most recent three, oldest first.
	for i, want := range []string{"message 2", "message 3", "message 4"} {
		if msgs[i].Content != want {
			t.Errorf("msgs[%d] = %q, want %q", i, msgs[i].Content, want)
		}
	}
}

func TestGetMessagesEmptyConversation(t *testing.T) {
	s := newTestStore(t)

	msgs, err := s.GetMessages(context.Background(), "no-such-conversation", 10)
	if err != nil {
		t.Fatalf("GetMessages: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("got %d messages, want 0", len(msgs))
	}
}

func TestStoreMessageIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	conv, _ := s.GetOrCreateConversation(ctx, "session-a")
	msg := quackquery.Message{
		ID:             "fixed-id",
		ConversationID: conv.ID,
		Role:           "user",
		Content:        "original",
		CreatedAt:      1000,
	}
	if err := s.StoreMessage(ctx, msg); err != nil {
		t.Fatal(err)
	}
	msg.Content = "replaced"
	if err := s.StoreMessage(ctx, msg); err != nil {
		t.Fatal(err)
	}

	msgs, err := s.GetMessages(ctx, conv.ID, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1 after replace", len(msgs))
	}
	if msgs[0].Content != "replaced" {
		t.Errorf("Content = %q, want replaced", msgs[0].Content)
	}
}

func TestConfigRoundtrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if v, err := s.GetConfig(ctx, "missing"); err != nil || v != "" {
		t.Errorf("missing key = %q, %v; want empty, nil", v, err)
	}

	if err := s.SetConfig(ctx, "theme", "dark"); err != nil {
		t.Fatal(err)
	}
	if v, _ := s.GetConfig(ctx, "theme"); v != "dark" {
		t.Errorf("theme = %q, want dark", v)
	}

	if err := s.SetConfig(ctx, "theme", "light"); err != nil {
		t.Fatal(err)
	}
	if v, _ := s.GetConfig(ctx, "theme"); v != "light" {
		t.Errorf("theme = %q, want light (overwritten)", v)
	}
}
