package config

import (
	"reflect"
	"testing"
)

func TestParseFields(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		in      string
		want    []int
		wantErr bool
	}{
		{name: "single", in: "1", want: []int{1}},
		{name: "multiple_in_order", in: "1,3", want: []int{1, 3}},
		{name: "duplicates_preserved", in: "2,2,1", want: []int{2, 2, 1}},
		{name: "spaces_tolerated", in: " 1 , 3 ", want: []int{1, 3}},
		{name: "empty_is_error", in: "", wantErr: true},
		{name: "blank_is_error", in: "   ", wantErr: true},
		{name: "non_numeric_is_error", in: "1,x", wantErr: true},
		{name: "zero_is_error", in: "0", wantErr: true},
		{name: "negative_is_error", in: "1,-2", wantErr: true},
		{name: "trailing_comma_is_error", in: "1,", wantErr: true},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseFields(c.in)
			if c.wantErr {
				if err == nil {
					t.Fatalf("ParseFields(%q) expected error, got %v", c.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFields(%q) unexpected error: %v", c.in, err)
			}
			if !reflect.DeepEqual(got, c.want) {
				t.Fatalf("ParseFields(%q) = %v, want %v", c.in, got, c.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := Config{BufferSize: DefaultBufferSize}

	cases := []struct {
		name       string
		mutate     func(c *Config)
		wantError  bool // at least one SeverityError
		wantIssues bool // at least one issue of any severity
	}{
		{
			name:   "defaults_are_valid",
			mutate: func(c *Config) {},
		},
		{
			name:      "zero_buffer_size",
			mutate:    func(c *Config) { c.BufferSize = 0 },
			wantError: true, wantIssues: true,
		},
		{
			name:      "negative_buffer_size",
			mutate:    func(c *Config) { c.BufferSize = -1 },
			wantError: true, wantIssues: true,
		},
		{
			name:      "empty_field_list",
			mutate:    func(c *Config) { c.Fields = []int{} },
			wantError: true, wantIssues: true,
		},
		{
			name:      "non_positive_field_index",
			mutate:    func(c *Config) { c.Fields = []int{1, 0} },
			wantError: true, wantIssues: true,
		},
		{
			name:   "valid_field_list",
			mutate: func(c *Config) { c.Fields = []int{3, 1, 3} },
		},
		{
			name:      "sqlite_without_table",
			mutate:    func(c *Config) { c.SQLitePath = "out.db" },
			wantError: true, wantIssues: true,
		},
		{
			name: "sqlite_with_table",
			mutate: func(c *Config) {
				c.SQLitePath = "out.db"
				c.SQLiteTable = "rows"
			},
		},
		{
			name: "sqlite_shadows_output_warns_only",
			mutate: func(c *Config) {
				c.SQLitePath = "out.db"
				c.SQLiteTable = "rows"
				c.Output = "out.csv"
			},
			wantIssues: true,
		},
		{
			name:       "extra_threads_warn_only",
			mutate:     func(c *Config) { c.Threads = 8 },
			wantIssues: true,
		},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid
			c.mutate(&cfg)

			issues := Validate(cfg)
			if c.wantIssues && len(issues) == 0 {
				t.Fatalf("expected issues, got none")
			}
			if !c.wantIssues && len(issues) > 0 {
				t.Fatalf("expected no issues, got %v", issues)
			}
			if got := HasError(issues); got != c.wantError {
				t.Fatalf("HasError = %v, want %v (issues: %v)", got, c.wantError, issues)
			}
		})
	}
}

func TestIssue_Error(t *testing.T) {
	t.Parallel()

	iss := Issue{Severity: SeverityError, Path: "buffer_size", Message: "must be positive, got 0"}
	want := "error at buffer_size: must be positive, got 0"
	if got := iss.Error(); got != want {
		t.Fatalf("Issue.Error() = %q, want %q", got, want)
	}
}
