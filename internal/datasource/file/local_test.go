package file

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalOpen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	if err := os.WriteFile(path, []byte("a,b\n1,2\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	tests := []struct {
		name    string
		path    string
		ctx     func() context.Context
		wantErr error
	}{
		{
			name: "existing file",
			path: path,
			ctx:  context.Background,
		},
		{
			name:    "missing file",
			path:    filepath.Join(dir, "nope.csv"),
			ctx:     context.Background,
			wantErr: os.ErrNotExist,
		},
		{
			name: "canceled context",
			path: path,
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			},
			wantErr: context.Canceled,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rc, err := NewLocal(tt.path).Open(tt.ctx())
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Open() err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Open() err = %v", err)
			}
			defer rc.Close()

			got, err := io.ReadAll(rc)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if want := "a,b\n1,2\n"; string(got) != want {
				t.Fatalf("contents = %q, want %q", got, want)
			}
		})
	}
}
