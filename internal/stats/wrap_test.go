package stats

import (
	"strings"
	"testing"
)

func TestWrapTextShortLineUnchanged(t *testing.T) {
	if got := WrapText("Amazing grace", 40); got != "Amazing grace" {
		t.Fatalf("WrapText = %q", got)
	}
}

func TestWrapTextWrapsAtWordBoundaries(t *testing.T) {
	got := WrapText("Amazing grace how sweet the sound", 13)
	want := "Amazing grace\nhow sweet the\nsound"
	if got != want {
		t.Fatalf("WrapText = %q, want %q", got, want)
	}
}

func TestWrapTextPreservesLineBreaks(t *testing.T) {
	text := "Amazing grace\nHow sweet the sound"
	got := WrapText(text, 40)
	if got != text {
		t.Fatalf("WrapText = %q, want %q", got, text)
	}
}

func TestWrapTextNeverExceedsWidth(t *testing.T) {
	got := WrapText("That saved a wretch like me I once was lost but now am found", 10)
	for _, line := range strings.Split(got, "\n") {
		if len(line) > 10 {
			t.Fatalf("line %q exceeds width", line)
		}
	}
}

func TestWrapTextSplitsOverwideWords(t *testing.T) {
	got := WrapText("hallelujah", 4)
	lines := strings.Split(got, "\n")
	for _, line := range lines {
		if len(line) > 4 {
			t.Fatalf("line %q exceeds width in %q", line, got)
		}
	}
	if strings.Join(lines, "") != "hallelujah" {
		t.Fatalf("split dropped characters: %q", got)
	}
}

func TestWrapTextZeroWidth(t *testing.T) {
	if got := WrapText("unchanged", 0); got != "unchanged" {
		t.Fatalf("WrapText = %q", got)
	}
}
