package grapheme

import "testing"

const (
	family = "\U0001F468\u200d\U0001F469\u200d\U0001F467"
	eAcute = "e\u0301"
	flagDE = "\U0001F1E9\U0001F1EA"
)

func TestBefore(t *testing.T) {
	tests := []struct {
		text   string
		offset int
		want   int
	}{
		{"abc", 0, 0},
		{"abc", 2, 1},
		{"añ", 3, 2},
		{"a" + family, len("a" + family), len(family)},
		{eAcute + "x", len(eAcute), len(eAcute)},
		{flagDE, len(flagDE), len(flagDE)},
		{"abc", 10, 1},
	}
	for _, tt := range tests {
		if got := Before(tt.text, tt.offset); got != tt.want {
			t.Errorf("Before(%q, %d) = %d, want %d", tt.text, tt.offset, got, tt.want)
		}
	}
}

func TestAfter(t *testing.T) {
	tests := []struct {
		text   string
		offset int
		want   int
	}{
		{"abc", 3, 0},
		{"abc", 0, 1},
		{"añb", 1, 2},
		{"a" + family, 1, len(family)},
		{eAcute + "x", 0, len(eAcute)},
		{"", 0, 0},
	}
	for _, tt := range tests {
		if got := After(tt.text, tt.offset); got != tt.want {
			t.Errorf("After(%q, %d) = %d, want %d", tt.text, tt.offset, got, tt.want)
		}
	}
}

func TestCount(t *testing.T) {
	if got := Count("a" + family + eAcute); got != 3 {
		t.Errorf("Count = %d, want 3", got)
	}
}
