// Package testutil provides shared test helpers for setting up vaults and databases.
package testutil

import (
	"os"
	"testing"
	"time"

	"github.com/starford/mathlinks/internal/index"
	"github.com/starford/mathlinks/internal/storage"
)

// TestDB creates a temporary SQLite metadata cache that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "mathlinks-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestVault creates a temporary vault directory with a storage.Provider.
func TestVault(t *testing.T) (string, storage.Provider) {
	t.Helper()
	vaultDir := t.TempDir()
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}
	return vaultDir, store
}

// Seed writes every file into the vault and indexes it.
func Seed(t *testing.T, store storage.Provider, db *index.DB, files map[string]string) {
	t.Helper()
	for path, content := range files {
		if err := store.Write(path, []byte(content)); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		if err := index.IndexFile(db, path, []byte(content), time.Now()); err != nil {
			t.Fatalf("index %s: %v", path, err)
		}
	}
}
