package slug

import "testing"

func TestMake(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"simple", "My First Post", "my-first-post"},
		{"punctuation", "Hello, World!", "hello-world"},
		{"run of separators", "Go --- and   Rust", "go-and-rust"},
		{"leading and trailing", "  *Breaking News*  ", "breaking-news"},
		{"digits", "Top 10 Tips for 2026", "top-10-tips-for-2026"},
		{"already clean", "already-clean", "already-clean"},
		{"uppercase", "SHOUTING TITLE", "shouting-title"},
		{"only separators", "!!!", ""},
		{"unicode letters", "Café Culture", "café-culture"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Make(tt.title); got != tt.want {
				t.Errorf("Make(%q) = %q; want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestMakeDeterministic(t *testing.T) {
	title := "Some, Rather! Odd -- Title"
	first := Make(title)
	for i := 0; i < 10; i++ {
		if got := Make(title); got != first {
			t.Fatalf("Make(%q) not deterministic: %q vs %q", title, got, first)
		}
	}
}
