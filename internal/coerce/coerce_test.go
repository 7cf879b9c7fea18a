package coerce

import "testing"

func TestCoerce(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantText  string
		wantValid bool
	}{
		{
			name:      "fenced with tag",
			raw:       "```json\n{\"a\":1}\n```",
			wantText:  "{\n  \"a\": 1\n}",
			wantValid: true,
		},
		{
			name:      "fenced upper tag",
			raw:       "  ```JSON\n{\"a\":1}```  ",
			wantText:  "{\n  \"a\": 1\n}",
			wantValid: true,
		},
		{
			name:      "fenced no tag",
			raw:       "```\n[1,2]\n```",
			wantText:  "[\n  1,\n  2\n]",
			wantValid: true,
		},
		{
			name:      "empty leading segments",
			raw:       "``````json\n{\"a\":true}\n```",
			wantText:  "{\n  \"a\": true\n}",
			wantValid: true,
		},
		{
			name:      "bare json keeps key order",
			raw:       `{"z":1,"a":{"y":[],"b":"x"}}`,
			wantText:  "{\n  \"z\": 1,\n  \"a\": {\n    \"y\": [],\n    \"b\": \"x\"\n  }\n}",
			wantValid: true,
		},
		{
			name:      "not json",
			raw:       "not json at all",
			wantText:  "not json at all",
			wantValid: false,
		},
		{
			name:      "fenced but broken",
			raw:       "```json\n{\"a\":\n```",
			wantText:  "{\"a\":",
			wantValid: false,
		},
		{
			name:      "only fences",
			raw:       "``````",
			wantText:  "``````",
			wantValid: false,
		},
		{
			name:      "empty",
			raw:       "   ",
			wantText:  "",
			wantValid: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got := Coerce(tt.raw)
			if got.Text != tt.wantText {
				t.Fatalf("Coerce(%q).Text = %q, want %q", tt.raw, got.Text, tt.wantText)
			}
			if got.Valid != tt.wantValid {
				t.Fatalf("Coerce(%q).Valid = %v, want %v", tt.raw, got.Valid, tt.wantValid)
			}
		})
	}
}

func TestStripFencesLeavesUnfencedTextAlone(t *testing.T) {
	if got := StripFences("  jsonish text  "); got != "jsonish text" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestCoerceIsIdempotentOnValidOutput(t *testing.T) {
	first := Coerce("```json\n{\"k\":[1,{\"n\":null}]}\n```")
	second := Coerce(first.Text)
	if !second.Valid || second.Text != first.Text {
		t.Fatalf("expected stable output, got %q then %q", first.Text, second.Text)
	}
}
