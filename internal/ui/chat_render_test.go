package ui

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
)

func TestWrapTextShortLineUnchanged(t *testing.T) {
	lines := wrapText("hello world", 40)
	if len(lines) != 1 || lines[0] != "hello world" {
		t.Errorf("lines = %q", lines)
	}
}

func TestWrapTextBreaksOnSpaces(t *testing.T) {
	lines := wrapText("the quick brown fox jumps over the lazy dog", 15)
	if len(lines) < 2 {
		t.Fatalf("expected multiple lines, got %q", lines)
	}
	for _, line := range lines {
		if runewidth.StringWidth(line) > 15 {
			t.Errorf("line %q exceeds width", line)
		}
	}
	if joined := strings.Join(lines, " "); joined != "the quick brown fox jumps over the lazy dog" {
		t.Errorf("content lost in wrapping: %q", joined)
	}
}

func TestWrapTextHardBreaksLongWord(t *testing.T) {
	word := strings.Repeat("a", 25)
	lines := wrapText(word, 10)
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3: %q", len(lines), lines)
	}
	for _, line := range lines {
		if runewidth.StringWidth(line) > 10 {
			t.Errorf("line %q exceeds width", line)
		}
	}
	if strings.Join(lines, "") != word {
		t.Error("characters lost in hard break")
	}
}

func TestBreakLongWordKeepsGraphemesIntact(t *testing.T) {
	// Family emoji is a single grapheme built from several runes
	word := strings.Repeat("👨‍👩‍👧x", 4)
	pieces := breakLongWord(word, 3)
	if strings.Join(pieces, "") != word {
		t.Error("characters lost in grapheme break")
	}
	for _, piece := range pieces {
		if strings.Contains(piece, "‍") && !strings.Contains(piece, "👨") {
			t.Errorf("grapheme cluster split apart: %q", piece)
		}
	}
}

func TestRenderMessageBodyPlainText(t *testing.T) {
	lines := renderMessageBody("hello", 40)
	if len(lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(lines))
	}
}

func TestRenderMessageBodyCodeFence(t *testing.T) {
	content := "before\n```go\nfmt.Println(\"hi\")\n```\nafter"
	lines := renderMessageBody(content, 40)
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3: %q", len(lines), lines)
	}
}

func TestRenderMessageBodyUnterminatedFence(t *testing.T) {
	content := "```\ncode without closing fence"
	lines := renderMessageBody(content, 40)
	if len(lines) != 1 {
		t.Fatalf("unterminated fence dropped: %d lines", len(lines))
	}
}
