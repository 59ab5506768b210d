package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/supportbot/chatbot-go/internal/model"
	"go.uber.org/zap"
)

func userTurn(text string) model.ConversationTurn {
	return model.ConversationTurn{Role: "user", Text: text, Timestamp: time.Now()}
}

func TestConversationWindowBound(t *testing.T) {
	store := NewMemoryConversationStore(3, time.Hour, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		turns, err := store.Append(ctx, "s1", userTurn(fmt.Sprintf("msg-%d", i)))
		if err != nil {
			t.Fatalf("append failed: %v", err)
		}
		if len(turns) > 3 {
			t.Fatalf("window exceeded after %d appends: %d turns", i+1, len(turns))
		}
	}
}

func TestConversationFIFOEviction(t *testing.T) {
	store := NewMemoryConversationStore(3, time.Hour, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		store.Append(ctx, "s1", userTurn(fmt.Sprintf("msg-%d", i)))
	}

	turns, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	want := []string{"msg-1", "msg-2", "msg-3"}
	if len(turns) != len(want) {
		t.Fatalf("expected %d turns, got %d", len(want), len(turns))
	}
	for i, w := range want {
		if turns[i].Text != w {
			t.Fatalf("turn %d = %q, want %q (oldest must be evicted first)", i, turns[i].Text, w)
		}
	}
}

func TestConversationChronologicalOrder(t *testing.T) {
	store := NewMemoryConversationStore(10, time.Hour, zap.NewNop())
	ctx := context.Background()

	store.Append(ctx, "s1", userTurn("first"))
	store.Append(ctx, "s1", model.ConversationTurn{Role: "assistant", Text: "second"})

	turns, _ := store.Get(ctx, "s1")
	if len(turns) != 2 || turns[0].Text != "first" || turns[1].Text != "second" {
		t.Fatalf("expected chronological order [first second], got %v", turns)
	}
}

func TestConversationUnknownSessionEmpty(t *testing.T) {
	store := NewMemoryConversationStore(3, time.Hour, zap.NewNop())
	turns, err := store.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(turns) != 0 {
		t.Fatalf("expected empty context for unknown session, got %v", turns)
	}
}

func TestConversationSessionIsolation(t *testing.T) {
	// Two sessions appending concurrently must never interleave turns.
	store := NewMemoryConversationStore(100, time.Hour, zap.NewNop())
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, sessionID := range []string{"s1", "s2"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				store.Append(ctx, id, userTurn(id))
			}
		}(sessionID)
	}
	wg.Wait()

	for _, sessionID := range []string{"s1", "s2"} {
		turns, _ := store.Get(ctx, sessionID)
		if len(turns) != 50 {
			t.Fatalf("session %s expected 50 turns, got %d", sessionID, len(turns))
		}
		for _, turn := range turns {
			if turn.Text != sessionID {
				t.Fatalf("session %s contains foreign turn %q", sessionID, turn.Text)
			}
		}
	}
}

func TestConversationSweepEvictsIdleSessions(t *testing.T) {
	store := NewMemoryConversationStore(3, 10*time.Minute, zap.NewNop())
	ctx := context.Background()

	store.Append(ctx, "idle", userTurn("old"))

	evicted := store.sweep(time.Now().Add(11 * time.Minute))
	if evicted != 1 {
		t.Fatalf("expected 1 session evicted, got %d", evicted)
	}
	if store.SessionCount() != 0 {
		t.Fatalf("expected no sessions left, got %d", store.SessionCount())
	}
}

func TestConversationAppendReturnsCopy(t *testing.T) {
	store := NewMemoryConversationStore(5, time.Hour, zap.NewNop())
	ctx := context.Background()

	turns, _ := store.Append(ctx, "s1", userTurn("original"))
	turns[0].Text = "mutated"

	stored, _ := store.Get(ctx, "s1")
	if stored[0].Text != "original" {
		t.Fatal("caller mutation leaked into the store")
	}
}
