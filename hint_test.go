package imgnamer

import (
	"reflect"
	"testing"
)

func TestHintWords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		hint     string
		minRunes int
		want     []string
	}{
		{"empty", "", 2, nil},
		{"short words dropped", "a cat in la", 2, []string{"cat", "in", "la"}},
		{"min three", "a cat in la", 3, []string{"cat"}},
		{"punctuation trimmed", "«Paris», sunset!", 2, []string{"paris", "sunset"}},
		{"duplicates collapse case-insensitively", "Paris paris PARIS", 2, []string{"paris"}},
		{"unicode counted in runes", "éé ü", 2, []string{"éé"}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := HintWords(tc.hint, tc.minRunes)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("HintWords(%q, %d) = %v, want %v", tc.hint, tc.minRunes, got, tc.want)
			}
		})
	}
}

func TestHintBonus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		title string
		hint  string
		want  float64
	}{
		{"empty hint is neutral", "Sunset Over Paris", "", 1},
		{"only short words is neutral", "Sunset Over Paris", "a b c", 1},
		{"all words match", "Sunset Over Paris", "paris sunset", 2},
		{"half the words match", "Sunset Over Paris", "paris london", 1.5},
		{"no word matches", "Sunset Over Paris", "london", 1},
		{"partial word does not match", "Parisian Sunset", "paris", 1},
		{"separators count as boundaries", "Paris|Sunset-by_Ann", "sunset", 2},
		{"punctuation in hint ignored", "Sunset Over Paris", "Paris!", 2},
		{"unicode boundaries", "Café de Flore", "café", 2},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := HintBonus(tc.title, tc.hint, DefaultMinHintWordLength)
			if got != tc.want {
				t.Errorf("HintBonus(%q, %q) = %v, want %v", tc.title, tc.hint, got, tc.want)
			}
		})
	}
}

func TestHintBonus_EmptyHintNeutralForAnyTitle(t *testing.T) {
	t.Parallel()

	for _, title := range []string{"", "x", "Sunset Over Paris", "日本の風景"} {
		if got := HintBonus(title, "", DefaultMinHintWordLength); got != 1 {
			t.Errorf("HintBonus(%q, \"\") = %v, want 1", title, got)
		}
	}
}

func TestHintBonus_Monotonic(t *testing.T) {
	t.Parallel()

	hint := "red fox snow forest winter"
	titles := []string{
		"Landscape",
		"Red landscape",
		"Red fox landscape",
		"Red fox in snow",
		"Red fox in snow forest",
		"Red fox in snow forest, winter",
	}

	prev := 0.0
	for _, title := range titles {
		got := HintBonus(title, hint, DefaultMinHintWordLength)
		if got < prev {
			t.Errorf("HintBonus(%q) = %v decreased from %v", title, got, prev)
		}
		if got < 1 || got > 2 {
			t.Errorf("HintBonus(%q) = %v, out of [1,2]", title, got)
		}
		prev = got
	}
	if prev != 2 {
		t.Errorf("all words matched: HintBonus = %v, want 2", prev)
	}
}
