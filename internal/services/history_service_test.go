package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pmoralis/go-ai-chat/internal/domain"
)

// seedMessages inserts n messages for userID with strictly increasing
// timestamps and content "msg-1".."msg-n" (msg-n is the newest).
func seedMessages(t *testing.T, db *gorm.DB, userID string, n int) {
	t.Helper()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 1; i <= n; i++ {
		m := &domain.Message{
			ID:        uuid.NewString(),
			UserID:    userID,
			Role:      domain.RoleUser,
			Content:   fmt.Sprintf("msg-%d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := db.Create(m).Error; err != nil {
			t.Fatalf("seed message %d: %v", i, err)
		}
	}
}

func TestHistoryService_ListPage_Empty(t *testing.T) {
	s := &HistoryService{DB: newSvcDB(t)}
	page, err := s.ListPage(context.Background(), "u1", 1, 20)
	if err != nil {
		t.Fatalf("ListPage: %v", err)
	}
	if len(page.Messages) != 0 || page.HasMore || page.TotalPages != 0 {
		t.Fatalf("page = %+v, want empty", page)
	}
}

func TestHistoryService_ListPage_RoundTrip(t *testing.T) {
	db := newSvcDB(t)
	seedMessages(t, db, "u1", 45)
	s := &HistoryService{DB: db}

	// Page 1: the 20 most recent, ascending within the page.
	p1, err := s.ListPage(context.Background(), "u1", 1, 20)
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if len(p1.Messages) != 20 {
		t.Fatalf("page 1 len = %d, want 20", len(p1.Messages))
	}
	if got := p1.Messages[0].Content; got != "msg-26" {
		t.Fatalf("page 1 first = %q, want msg-26", got)
	}
	if got := p1.Messages[19].Content; got != "msg-45" {
		t.Fatalf("page 1 last = %q, want msg-45", got)
	}
	if !p1.HasMore || p1.TotalPages != 3 || p1.CurrentPage != 1 {
		t.Fatalf("page 1 meta = %+v", p1)
	}

	// Page 3: the 5 oldest.
	p3, err := s.ListPage(context.Background(), "u1", 3, 20)
	if err != nil {
		t.Fatalf("page 3: %v", err)
	}
	if len(p3.Messages) != 5 {
		t.Fatalf("page 3 len = %d, want 5", len(p3.Messages))
	}
	if got := p3.Messages[0].Content; got != "msg-1" {
		t.Fatalf("page 3 first = %q, want msg-1", got)
	}
	if got := p3.Messages[4].Content; got != "msg-5" {
		t.Fatalf("page 3 last = %q, want msg-5", got)
	}
	if p3.HasMore {
		t.Fatal("page 3 HasMore = true, want false")
	}
}

func TestHistoryService_ListPage_AscendingWithinPage(t *testing.T) {
	db := newSvcDB(t)
	seedMessages(t, db, "u1", 7)
	s := &HistoryService{DB: db}

	page, err := s.ListPage(context.Background(), "u1", 1, 20)
	if err != nil {
		t.Fatalf("ListPage: %v", err)
	}
	for i := 1; i < len(page.Messages); i++ {
		prev, cur := page.Messages[i-1], page.Messages[i]
		if cur.CreatedAt.Before(prev.CreatedAt) {
			t.Fatalf("messages out of order at %d: %v after %v", i, cur.CreatedAt, prev.CreatedAt)
		}
	}
}

func TestHistoryService_ListPage_BeyondLastPage(t *testing.T) {
	db := newSvcDB(t)
	seedMessages(t, db, "u1", 3)
	s := &HistoryService{DB: db}

	page, err := s.ListPage(context.Background(), "u1", 9, 20)
	if err != nil {
		t.Fatalf("ListPage: %v", err)
	}
	if len(page.Messages) != 0 || page.HasMore {
		t.Fatalf("page = %+v, want empty with HasMore=false", page)
	}
	if page.TotalPages != 1 || page.CurrentPage != 9 {
		t.Fatalf("meta = %+v", page)
	}
}

func TestHistoryService_ListPage_CoercesInvalidParams(t *testing.T) {
	db := newSvcDB(t)
	seedMessages(t, db, "u1", 2)
	s := &HistoryService{DB: db}

	page, err := s.ListPage(context.Background(), "u1", 0, 0)
	if err != nil {
		t.Fatalf("ListPage: %v", err)
	}
	if page.CurrentPage != 1 || len(page.Messages) != 2 {
		t.Fatalf("page = %+v, want coerced page 1 with defaults", page)
	}
}

func TestHistoryService_ListPage_ScopedToOwner(t *testing.T) {
	db := newSvcDB(t)
	seedMessages(t, db, "u1", 4)
	seedMessages(t, db, "u2", 2)
	s := &HistoryService{DB: db}

	page, err := s.ListPage(context.Background(), "u2", 1, 20)
	if err != nil {
		t.Fatalf("ListPage: %v", err)
	}
	if len(page.Messages) != 2 || page.Total != 2 {
		t.Fatalf("page = %+v, want only u2 rows", page)
	}
	for _, m := range page.Messages {
		if m.UserID != "u2" {
			t.Fatalf("leaked row for %q", m.UserID)
		}
	}
}
