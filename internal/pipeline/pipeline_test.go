package pipeline

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"csvpipe/internal/config"
)

// writeInput drops contents into a temp file and returns its path.
func writeInput(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return path
}

// runToFile executes one file→file run and returns the produced output.
func runToFile(t *testing.T, cfg config.Config) (*Processor, string) {
	t.Helper()
	if cfg.Output == "" {
		cfg.Output = filepath.Join(t.TempDir(), "output.csv")
	}
	if cfg.BufferSize == 0 {
		cfg.BufferSize = config.DefaultBufferSize
	}

	p := New(cfg)
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	out, err := os.ReadFile(cfg.Output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	return p, string(out)
}

func TestRun_Projection(t *testing.T) {
	t.Parallel()

	in := writeInput(t, "a,b,c\n1,2,3\n4,5,6\n")
	p, out := runToFile(t, config.Config{Input: in, Fields: []int{1, 3}})

	if want := "a,c\n1,3\n4,6\n"; out != want {
		t.Fatalf("output = %q, want %q", out, want)
	}
	if got := p.Tracker().Records(); got != 2 {
		t.Fatalf("Records() = %d, want 2", got)
	}
}

func TestRun_ProjectionDuplicatesAndReorder(t *testing.T) {
	t.Parallel()

	in := writeInput(t, "a,b,c\n1,2,3\n")
	_, out := runToFile(t, config.Config{Input: in, Fields: []int{3, 1, 3}})

	if want := "c,a,c\n3,1,3\n"; out != want {
		t.Fatalf("output = %q, want %q", out, want)
	}
}

func TestRun_PassthroughKeepsFlexibleWidths(t *testing.T) {
	t.Parallel()

	in := writeInput(t, "a,b,c\n1,2\n4,5,6\n")
	_, out := runToFile(t, config.Config{Input: in})

	if want := "a,b,c\n1,2\n4,5,6\n"; out != want {
		t.Fatalf("output = %q, want %q", out, want)
	}
}

func TestRun_OffsetsBeyondWidthShrinkRows(t *testing.T) {
	t.Parallel()

	in := writeInput(t, "a,b,c\n1,2,3\n4,5,6\n")
	_, out := runToFile(t, config.Config{Input: in, Fields: []int{5}})

	// Every offset is out of range, header included: all rows are empty.
	if want := "\n\n\n"; out != want {
		t.Fatalf("output = %q, want %q", out, want)
	}
}

func TestRun_ShortRowProjection(t *testing.T) {
	t.Parallel()

	// Second data row has no third column; its projected row shrinks
	// instead of padding.
	in := writeInput(t, "a,b,c\n1,2,3\n4,5\n")
	_, out := runToFile(t, config.Config{Input: in, Fields: []int{1, 3}})

	if want := "a,c\n1,3\n4\n"; out != want {
		t.Fatalf("output = %q, want %q", out, want)
	}
}

func TestRun_MalformedRowIsSkipped(t *testing.T) {
	t.Parallel()

	in := writeInput(t, "a,b\n1,2\nx\"y,3\n4,5\n")
	p, out := runToFile(t, config.Config{Input: in})

	if want := "a,b\n1,2\n4,5\n"; out != want {
		t.Fatalf("output = %q, want %q", out, want)
	}
	// Final count equals well-formed lines only.
	if got := p.Tracker().Records(); got != 2 {
		t.Fatalf("Records() = %d, want 2", got)
	}
}

func TestRun_EmptyInputFailsWithoutOutput(t *testing.T) {
	t.Parallel()

	in := writeInput(t, "")
	outPath := filepath.Join(t.TempDir(), "output.csv")

	p := New(config.Config{Input: in, Output: outPath, BufferSize: config.DefaultBufferSize})
	err := p.Run(context.Background())
	if err == nil {
		t.Fatalf("expected header parse failure on empty input")
	}
	if got := KindOf(err); got != FailParse {
		t.Fatalf("KindOf = %q, want %q (err: %v)", got, FailParse, err)
	}
	if _, serr := os.Stat(outPath); !errors.Is(serr, os.ErrNotExist) {
		t.Fatalf("output file should not exist, stat err = %v", serr)
	}
}

func TestRun_MissingInputIsIOFailure(t *testing.T) {
	t.Parallel()

	p := New(config.Config{
		Input:      filepath.Join(t.TempDir(), "does-not-exist.csv"),
		Output:     filepath.Join(t.TempDir(), "output.csv"),
		BufferSize: config.DefaultBufferSize,
	})
	err := p.Run(context.Background())
	if got := KindOf(err); got != FailIO {
		t.Fatalf("KindOf = %q, want %q (err: %v)", got, FailIO, err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected wrapped os.ErrNotExist, got %v", err)
	}
}

func TestRun_DegenerateBufferSizeIsConfigFailure(t *testing.T) {
	t.Parallel()

	p := New(config.Config{Input: "ignored.csv", BufferSize: 0})
	err := p.Run(context.Background())
	if got := KindOf(err); got != FailConfig {
		t.Fatalf("KindOf = %q, want %q (err: %v)", got, FailConfig, err)
	}
}

func TestRun_InvalidFieldIndexIsFieldSelectionFailure(t *testing.T) {
	t.Parallel()

	p := New(config.Config{
		Input:      "ignored.csv",
		BufferSize: config.DefaultBufferSize,
		Fields:     []int{1, 0},
	})
	err := p.Run(context.Background())
	if got := KindOf(err); got != FailFieldSelection {
		t.Fatalf("KindOf = %q, want %q (err: %v)", got, FailFieldSelection, err)
	}
}

func TestRun_TracksBytes(t *testing.T) {
	t.Parallel()

	const doc = "a,b,c\n1,2,3\n4,5,6\n"
	in := writeInput(t, doc)
	p, _ := runToFile(t, config.Config{Input: in})

	if got := p.Tracker().Bytes(); got != uint64(len(doc)) {
		t.Fatalf("Bytes() = %d, want %d", got, len(doc))
	}
}

func TestRun_ChecksumModeMatchesPlainOutput(t *testing.T) {
	t.Parallel()

	in := writeInput(t, "a,b,c\n1,2,3\n4,5,6\n")

	_, plain := runToFile(t, config.Config{Input: in, Fields: []int{1, 3}})
	_, checked := runToFile(t, config.Config{Input: in, Fields: []int{1, 3}, Checksum: true})

	if plain != checked {
		t.Fatalf("checksum mode changed output: %q vs %q", checked, plain)
	}
}

func TestRun_SQLiteLoad(t *testing.T) {
	t.Parallel()

	in := writeInput(t, "Name,Age,City\nada,36,london\ngrace,85,arlington\n")
	dbPath := filepath.Join(t.TempDir(), "load.db")

	p := New(config.Config{
		Input:       in,
		BufferSize:  config.DefaultBufferSize,
		Fields:      []int{1, 3},
		SQLitePath:  dbPath,
		SQLiteTable: "people",
	})
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := p.Tracker().Records(); got != 2 {
		t.Fatalf("Records() = %d, want 2", got)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	var city string
	if err := db.QueryRow("SELECT city FROM people WHERE name = ?", "ada").Scan(&city); err != nil {
		t.Fatalf("query: %v", err)
	}
	if city != "london" {
		t.Fatalf("city = %q, want %q", city, "london")
	}
}

func TestRun_SmallBufferStillStreamsCorrectly(t *testing.T) {
	t.Parallel()

	// A buffer far smaller than the input forces many refills on both the
	// read and write side.
	in := writeInput(t, "a,b,c\n1,2,3\n4,5,6\n7,8,9\n")
	_, out := runToFile(t, config.Config{Input: in, BufferSize: 16, Fields: []int{2}})

	if want := "b\n2\n5\n8\n"; out != want {
		t.Fatalf("output = %q, want %q", out, want)
	}
}
