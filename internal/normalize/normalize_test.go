package normalize

import "testing"

func TestName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Salt", "Salt"},
		{"  Kosher Salt  ", "Kosher Salt"},
		{"\tThai\n", "Thai"},
		{"salt", "salt"}, // case preserved
		{"Cre\u0301me", "Cr\u00e9me"}, // decomposed accent composes
		{"pep\x00per", "pepper"},
		{"   ", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Name(tt.input); got != tt.expected {
				t.Errorf("Name(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestText(t *testing.T) {
	if got := Text("  Sample recipe  "); got != "Sample recipe" {
		t.Errorf("Text() = %q", got)
	}
}
