package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sweetpotato0/chainsocket/memory"
)

type deleter interface {
	Delete(ctx context.Context, key string) error
}

// exerciseVarStore runs the behaviour every VarStore must share.
func exerciseVarStore(t *testing.T, s memory.VarStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		value, ok, err := s.Get(ctx, "never-set")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if ok || value != nil {
			t.Errorf("expected missing key, got ok=%v value=%q", ok, value)
		}
	})

	t.Run("set and overwrite", func(t *testing.T) {
		if err := s.Set(ctx, "session-a", []byte("Human: hello\n")); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		if err := s.Set(ctx, "session-a", []byte("Human: hello\nAssistant: hi there\n")); err != nil {
			t.Fatalf("Set failed: %v", err)
		}

		value, ok, err := s.Get(ctx, "session-a")
		if err != nil || !ok {
			t.Fatalf("Get failed: ok=%v err=%v", ok, err)
		}
		if string(value) != "Human: hello\nAssistant: hi there\n" {
			t.Errorf("unexpected value %q", value)
		}
	})

	t.Run("keys are isolated", func(t *testing.T) {
		if err := s.Set(ctx, "session-b", []byte("other")); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		value, _, _ := s.Get(ctx, "session-a")
		if string(value) == "other" {
			t.Error("writing session-b changed session-a")
		}
	})

	if d, ok := s.(deleter); ok {
		t.Run("delete", func(t *testing.T) {
			for _, key := range []string{"session-a", "session-b"} {
				if err := d.Delete(ctx, key); err != nil {
					t.Fatalf("Delete failed: %v", err)
				}
			}
			if _, ok, _ := s.Get(ctx, "session-a"); ok {
				t.Error("expected session-a to be deleted")
			}
		})
	}
}

func TestInMemoryStore(t *testing.T) {
	s := NewInMemoryStore()
	exerciseVarStore(t, s)

	if s.Count() != 0 {
		t.Errorf("expected empty store after deletes, got %d", s.Count())
	}
}

func TestInMemoryStoreCopiesValues(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	buf := []byte("original")
	_ = s.Set(ctx, "k", buf)
	buf[0] = 'X'

	value, _, _ := s.Get(ctx, "k")
	if string(value) != "original" {
		t.Errorf("store aliased caller buffer: %q", value)
	}
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vars.db")
	s, err := NewSQLiteStore(context.Background(), path)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer s.Close()

	exerciseVarStore(t, s)
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "vars.db")

	s, err := NewSQLiteStore(ctx, path)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	if err := s.Set(ctx, memory.DefaultKey, []byte("transcript")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	s.Close()

	reopened, err := NewSQLiteStore(ctx, path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	value, ok, err := reopened.Get(ctx, memory.DefaultKey)
	if err != nil || !ok || string(value) != "transcript" {
		t.Errorf("Get after reopen = %q, %v, %v", value, ok, err)
	}
}

// TestRedisStore requires a running Redis server; set REDIS_ADDR to run it.
func TestRedisStore(t *testing.T) {
	if os.Getenv("REDIS_ADDR") == "" {
		t.Skip("REDIS_ADDR not set, skipping Redis store tests")
	}

	cfg := RedisConfigFromEnv()
	cfg.Prefix = "chainsocket:test:"
	s := NewRedisStore(cfg)
	defer s.Close()
	if err := s.Ping(context.Background()); err != nil {
		t.Skipf("Failed to connect to Redis: %v", err)
	}

	exerciseVarStore(t, s)
}

// TestPostgresStore requires a running PostgreSQL server; set POSTGRES_HOST to run it.
func TestPostgresStore(t *testing.T) {
	if os.Getenv("POSTGRES_HOST") == "" {
		t.Skip("POSTGRES_HOST not set, skipping PostgreSQL store tests")
	}

	s, err := NewPostgresStore(context.Background(), PostgresConfigFromEnv())
	if err != nil {
		t.Skipf("Failed to connect to PostgreSQL: %v", err)
	}
	defer s.Close()

	exerciseVarStore(t, s)
}

// TestMongoStore requires a running MongoDB server; set MONGODB_URI to run it.
func TestMongoStore(t *testing.T) {
	if os.Getenv("MONGODB_URI") == "" {
		t.Skip("MONGODB_URI not set, skipping MongoDB store tests")
	}

	cfg := MongoConfigFromEnv()
	cfg.Database = "chainsocket_test"
	s, err := NewMongoStore(context.Background(), cfg)
	if err != nil {
		t.Skipf("Failed to connect to MongoDB: %v", err)
	}
	defer s.Close(context.Background())

	exerciseVarStore(t, s)
}

func TestOpen(t *testing.T) {
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "open.db"))

	for _, backend := range []string{"", BackendMemory, BackendSQLite} {
		s, closeFn, err := Open(context.Background(), backend)
		if err != nil {
			t.Fatalf("Open(%q) failed: %v", backend, err)
		}
		if s == nil {
			t.Fatalf("Open(%q) returned nil store", backend)
		}
		if err := closeFn(); err != nil {
			t.Errorf("close(%q) failed: %v", backend, err)
		}
	}

	if _, _, err := Open(context.Background(), "etcd"); err == nil {
		t.Error("expected error for unknown backend")
	}
}
