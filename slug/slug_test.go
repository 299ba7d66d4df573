package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"simple", "Hello, World!", "hello-world"},
		{"already clean", "release-notes", "release-notes"},
		{"mixed case and digits", "Q3 2025 Roadmap", "q3-2025-roadmap"},
		{"whitespace runs", "a    b\tc", "a-b-c"},
		{"hyphen runs", "a --- b", "a-b"},
		{"leading and trailing junk", "  ...Hello...  ", "hello"},
		{"only punctuation", "!!!???", Fallback},
		{"empty", "", Fallback},
		{"unicode stripped", "café menu", "caf-menu"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Make(tt.title))
		})
	}
}

func TestPick_NoCollision(t *testing.T) {
	got := Pick("hello-world", func(string) bool { return false })
	assert.Equal(t, "hello-world", got)
}

func TestPick_SequentialSuffixes(t *testing.T) {
	taken := map[string]bool{}
	isTaken := func(s string) bool { return taken[s] }

	var got []string
	for i := 0; i < 4; i++ {
		s := Pick(Make("Hello, World!"), isTaken)
		taken[s] = true
		got = append(got, s)
	}
	assert.Equal(t, []string{"hello-world", "hello-world-1", "hello-world-2", "hello-world-3"}, got)
}

func TestPick_SkipsHoles(t *testing.T) {
	taken := map[string]bool{"post": true, "post-1": true, "post-3": true}
	got := Pick("post", func(s string) bool { return taken[s] })
	assert.Equal(t, "post-2", got)
}
