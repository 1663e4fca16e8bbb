package domain

import "testing"

func TestNormalizeKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "trim spaces", input: "  가다  ", want: "가다"},
		{name: "case preserved", input: "DNA 검사", want: "DNA 검사"},
		{name: "compress multiple spaces", input: "한국   사람", want: "한국 사람"},
		{name: "tabs become a single space", input: "한국\t\t사람", want: "한국 사람"},
		{name: "decomposed hangul composed", input: "\u1100\u1161\u1103\u1161", want: "가다"},
		{name: "hyphen preserved", input: "-가", want: "-가"},
		{name: "empty string", input: "", want: ""},
		{name: "only spaces", input: "   ", want: ""},
		{name: "ideographic space", input: "가\u3000나", want: "가 나"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := NormalizeKey(tt.input); got != tt.want {
				t.Errorf("NormalizeKey(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
