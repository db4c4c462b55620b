package validation

import (
	"testing"
)

func hasField(errors []ValidationError, field string) bool {
	for _, err := range errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

func TestCleanID(t *testing.T) {
	tests := map[string]string{
		"":              "",
		"  Wiki:Start ": "wiki:start",
		":foo:bar:":     "foo:bar",
		"foo/bar":       "foo:bar",
		"::":            "",
	}
	for raw, want := range tests {
		if got := CleanID(raw); got != want {
			t.Errorf("CleanID(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestNamespace(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"empty is whole wiki", "", "", false},
		{"simple", "foo", "foo", false},
		{"nested", "foo:bar_baz", "foo:bar_baz", false},
		{"trailing colon", "foo:", "foo", false},
		{"double colon", "foo::bar", "", true},
		{"spaces inside", "foo bar", "", true},
		{"markup", "<script>", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewValidator()
			got := v.Namespace("ns", tt.raw)
			if got != tt.want {
				t.Errorf("Namespace() = %q, want %q", got, tt.want)
			}
			if hasField(v.Errors(), "ns") != tt.wantErr {
				t.Errorf("Namespace() errors = %v, wantErr %v", v.Errors(), tt.wantErr)
			}
		})
	}
}

func TestPageID(t *testing.T) {
	v := NewValidator()
	if got := v.PageID("id", "Wiki:Page"); got != "wiki:page" {
		t.Errorf("Expected cleaned id, got %q", got)
	}
	if !v.Valid() {
		t.Fatalf("Unexpected errors %v", v.Errors())
	}

	v.PageID("id", "")
	v.PageID("id", "a b")
	if len(v.Errors()) != 2 {
		t.Errorf("Expected 2 errors, got %v", v.Errors())
	}
}

func TestLimit(t *testing.T) {
	v := NewValidator()

	if v.Limit("num", "") != nil {
		t.Error("Empty limit should be nil")
	}
	if v.Limit("num", "abc") != nil {
		t.Error("Non-numeric limit should fall back to nil")
	}
	if n := v.Limit("num", " 7 "); n == nil || *n != 7 {
		t.Errorf("Expected 7, got %v", n)
	}
	if n := v.Limit("num", "-1"); n == nil || *n != -1 {
		t.Errorf("Negative limit should be passed through, got %v", n)
	}
	if !v.Valid() {
		t.Errorf("Limit never fails validation, got %v", v.Errors())
	}
}

func TestOffset(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{"", 0, false},
		{"0", 0, false},
		{"15", 15, false},
		{"-3", 0, true},
		{"ten", 0, true},
	}

	for _, tt := range tests {
		v := NewValidator()
		got := v.Offset("first", tt.raw)
		if got != tt.want || v.Valid() == tt.wantErr {
			t.Errorf("Offset(%q) = %d, errors %v", tt.raw, got, v.Errors())
		}
	}
}

func TestCount(t *testing.T) {
	v := NewValidator()
	if v.Count("num", "") != nil {
		t.Error("Empty count should be nil")
	}
	if n := v.Count("num", "3"); n == nil || *n != 3 {
		t.Errorf("Expected 3, got %v", n)
	}
	v.Count("num", "-2")
	v.Count("num", "x")
	if len(v.Errors()) != 2 {
		t.Errorf("Expected 2 errors, got %v", v.Errors())
	}
}

func TestFlagAndOneOf(t *testing.T) {
	v := NewValidator()
	if !v.Flag("skip_empty", "true") || !v.Flag("skip_empty", "1") || v.Flag("skip_empty", "") {
		t.Error("Unexpected flag parsing")
	}
	if got := v.OneOf("format", "", "json", "json", "ndjson"); got != "json" {
		t.Errorf("Expected default, got %q", got)
	}
	if got := v.OneOf("format", "ndjson", "json", "json", "ndjson"); got != "ndjson" {
		t.Errorf("Expected ndjson, got %q", got)
	}
	if !v.Valid() {
		t.Fatalf("Unexpected errors %v", v.Errors())
	}

	v.Flag("skip_empty", "maybe")
	v.OneOf("format", "csv", "json", "json", "ndjson")
	if !hasField(v.Errors(), "skip_empty") || !hasField(v.Errors(), "format") {
		t.Errorf("Expected flag and format errors, got %v", v.Errors())
	}
}
