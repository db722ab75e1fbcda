package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalCreate(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.csv")

	wc, err := NewLocal(path).Create(context.Background())
	if err != nil {
		t.Fatalf("Create() err = %v", err)
	}
	if _, err := wc.Write([]byte("a,b\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := wc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if want := "a,b\n"; string(got) != want {
		t.Fatalf("contents = %q, want %q", got, want)
	}
}

func TestLocalCreateTruncatesExisting(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.csv")
	if err := os.WriteFile(path, []byte("stale contents that should vanish"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	wc, err := NewLocal(path).Create(context.Background())
	if err != nil {
		t.Fatalf("Create() err = %v", err)
	}
	if _, err := wc.Write([]byte("x\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := wc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if want := "x\n"; string(got) != want {
		t.Fatalf("contents = %q, want %q", got, want)
	}
}

func TestLocalCreateCanceledContext(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.csv")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewLocal(path).Create(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Create() err = %v, want context.Canceled", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("file should not exist, stat err = %v", err)
	}
}
