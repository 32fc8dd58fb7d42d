package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "finsight.db"))
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestReopenExistingDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "finsight.db")
	ctx := context.Background()

	repo, err := NewRepository(dbPath)
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}
	id, err := repo.CreateConversation(ctx, "user-1")
	if err != nil {
		t.Fatalf("CreateConversation() error = %v", err)
	}
	if err := repo.SaveExchange(ctx, id, "xin chào", "chào bạn"); err != nil {
		t.Fatalf("SaveExchange() error = %v", err)
	}
	repo.Close()

	// Reopening must apply no further migrations and keep the data.
	reopened, err := NewRepository(dbPath)
	if err != nil {
		t.Fatalf("NewRepository() on existing db error = %v", err)
	}
	defer reopened.Close()

	turns, err := reopened.History(ctx, id, 10)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(turns) != 2 {
		t.Errorf("len(turns) = %d, want 2", len(turns))
	}
}

func TestCreateConversation(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	id, err := repo.CreateConversation(ctx, "user-1")
	if err != nil {
		t.Fatalf("CreateConversation() error = %v", err)
	}
	if id == "" {
		t.Fatal("CreateConversation() returned empty id")
	}

	other, err := repo.CreateConversation(ctx, "user-1")
	if err != nil {
		t.Fatalf("CreateConversation() error = %v", err)
	}
	if other == id {
		t.Error("CreateConversation() returned duplicate ids")
	}
}

func TestSaveExchangeAndHistory(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	id, err := repo.CreateConversation(ctx, "user-1")
	if err != nil {
		t.Fatalf("CreateConversation() error = %v", err)
	}

	exchanges := [][2]string{
		{"xin chào", "chào bạn, tôi có thể giúp gì?"},
		{"tháng này tôi tiêu bao nhiêu?", "bạn đã chi 1.200.000 VND"},
	}
	for _, ex := range exchanges {
		if err := repo.SaveExchange(ctx, id, ex[0], ex[1]); err != nil {
			t.Fatalf("SaveExchange() error = %v", err)
		}
	}

	turns, err := repo.History(ctx, id, 10)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(turns) != 4 {
		t.Fatalf("len(turns) = %d, want 4", len(turns))
	}

	wantRoles := []string{"user", "assistant", "user", "assistant"}
	for i, turn := range turns {
		if turn.Role != wantRoles[i] {
			t.Errorf("turns[%d].Role = %q, want %q", i, turn.Role, wantRoles[i])
		}
	}
	if turns[0].Content != "xin chào" {
		t.Errorf("turns[0].Content = %q, want oldest message first", turns[0].Content)
	}
	if turns[3].Content != "bạn đã chi 1.200.000 VND" {
		t.Errorf("turns[3].Content = %q, want newest reply last", turns[3].Content)
	}
}

func TestHistoryLimitKeepsNewest(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	id, err := repo.CreateConversation(ctx, "user-1")
	if err != nil {
		t.Fatalf("CreateConversation() error = %v", err)
	}
	if err := repo.SaveExchange(ctx, id, "một", "trả lời một"); err != nil {
		t.Fatalf("SaveExchange() error = %v", err)
	}
	if err := repo.SaveExchange(ctx, id, "hai", "trả lời hai"); err != nil {
		t.Fatalf("SaveExchange() error = %v", err)
	}

	turns, err := repo.History(ctx, id, 2)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("len(turns) = %d, want 2", len(turns))
	}
	if turns[0].Content != "hai" || turns[1].Content != "trả lời hai" {
		t.Errorf("turns = %+v, want the newest exchange", turns)
	}
}

func TestHistoryEmptyConversation(t *testing.T) {
	repo := newTestRepository(t)

	turns, err := repo.History(context.Background(), "missing", 10)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(turns) != 0 {
		t.Errorf("len(turns) = %d, want 0", len(turns))
	}
}
