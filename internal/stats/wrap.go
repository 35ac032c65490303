package stats

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// WrapText word-wraps text to the given display width, preserving
// existing line breaks. Words wider than the width are split hard.
func WrapText(text string, width int) string {
	if width <= 0 {
		return text
	}
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, wrapLine(line, width)...)
	}
	return strings.Join(out, "\n")
}

func wrapLine(line string, width int) []string {
	if runewidth.StringWidth(line) <= width {
		return []string{line}
	}
	words := strings.Fields(line)
	if len(words) == 0 {
		return []string{""}
	}

	var wrapped []string
	current := ""
	currentWidth := 0
	for _, word := range words {
		wordWidth := runewidth.StringWidth(word)
		if wordWidth > width {
			if current != "" {
				wrapped = append(wrapped, current)
				current = ""
				currentWidth = 0
			}
			wrapped = append(wrapped, splitWord(word, width)...)
			continue
		}
		sep := 0
		if current != "" {
			sep = 1
		}
		if currentWidth+sep+wordWidth > width {
			wrapped = append(wrapped, current)
			current = word
			currentWidth = wordWidth
			continue
		}
		if sep == 1 {
			current += " "
		}
		current += word
		currentWidth += sep + wordWidth
	}
	if current != "" {
		wrapped = append(wrapped, current)
	}
	return wrapped
}

func splitWord(word string, width int) []string {
	var parts []string
	current := ""
	currentWidth := 0
	for _, r := range word {
		rw := runewidth.RuneWidth(r)
		if currentWidth+rw > width && current != "" {
			parts = append(parts, current)
			current = ""
			currentWidth = 0
		}
		current += string(r)
		currentWidth += rw
	}
	if current != "" {
		parts = append(parts, current)
	}
	return parts
}
