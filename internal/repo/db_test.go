package repo

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/pmoralis/go-ai-chat/internal/domain"
)

func TestOpenSQLite_AndAutoMigrate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.db")

	db, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}

	// schema is usable end to end
	if _, err := CreateMessage(context.Background(), db, "u1", domain.RoleUser, "hi"); err != nil {
		t.Fatalf("insert after migrate: %v", err)
	}
	if _, err := UpdateOwnerProfile(context.Background(), db, "u1", ProfileFields{ChatbotName: strptr("Atlas")}); err != nil {
		t.Fatalf("profile after migrate: %v", err)
	}
}

func TestOpenSQLite_MissingParentDir(t *testing.T) {
	if _, err := OpenSQLite(filepath.Join(t.TempDir(), "no", "such", "dir", "app.db")); err == nil {
		t.Fatalf("expected error for missing parent directory")
	}
}

func TestAutoMigrate_NilDB(t *testing.T) {
	if err := AutoMigrate(nil); err == nil {
		t.Fatalf("expected error for nil db")
	}
}
