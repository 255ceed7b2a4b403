package ui

import (
	"bytes"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// highlightCode applies syntax highlighting to code using chroma, with the
// style paired to the active theme.
func highlightCode(code, language string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get(CurrentTheme().ChromaStyle)
	if style == nil {
		style = styles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}

	return strings.TrimRight(buf.String(), "\n")
}

// renderMessageBody renders message content: fenced code blocks go through
// chroma, everything else is word-wrapped to the given width.
func renderMessageBody(content string, width int) []string {
	if width <= 0 {
		width = DefaultWrapWidth
	}

	var out []string
	var codeLines []string
	var codeLang string
	inCode := false

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			if inCode {
				highlighted := highlightCode(strings.Join(codeLines, "\n"), codeLang)
				for _, cl := range strings.Split(highlighted, "\n") {
					out = append(out, CodeBlockStyle.Render("  "+cl))
				}
				codeLines = nil
				inCode = false
			} else {
				inCode = true
				codeLang = strings.TrimPrefix(trimmed, "```")
			}
			continue
		}
		if inCode {
			codeLines = append(codeLines, line)
			continue
		}
		for _, wrapped := range wrapText(line, width) {
			out = append(out, ChatMessageStyle.Render(wrapped))
		}
	}

	// Unterminated fence: render what we have
	if inCode && len(codeLines) > 0 {
		highlighted := highlightCode(strings.Join(codeLines, "\n"), codeLang)
		for _, cl := range strings.Split(highlighted, "\n") {
			out = append(out, CodeBlockStyle.Render("  "+cl))
		}
	}

	return out
}

// wrapText wraps a single line of text to the given display width, breaking
// on spaces and falling back to grapheme-cluster breaks for words wider than
// a whole line.
func wrapText(text string, width int) []string {
	if width <= 0 || runewidth.StringWidth(text) <= width {
		return []string{text}
	}

	var lines []string
	var current strings.Builder
	currentWidth := 0

	for _, word := range strings.Fields(text) {
		w := runewidth.StringWidth(word)

		if w > width {
			// Flush the current line, then hard-break the word
			if currentWidth > 0 {
				lines = append(lines, current.String())
				current.Reset()
				currentWidth = 0
			}
			for _, piece := range breakLongWord(word, width) {
				pw := runewidth.StringWidth(piece)
				if pw == width {
					lines = append(lines, piece)
				} else {
					current.WriteString(piece)
					currentWidth = pw
				}
			}
			continue
		}

		sep := 0
		if currentWidth > 0 {
			sep = 1
		}
		if currentWidth+sep+w > width {
			lines = append(lines, current.String())
			current.Reset()
			currentWidth = 0
			sep = 0
		}
		if sep == 1 {
			current.WriteByte(' ')
			currentWidth++
		}
		current.WriteString(word)
		currentWidth += w
	}

	if currentWidth > 0 || len(lines) == 0 {
		lines = append(lines, current.String())
	}
	return lines
}

// breakLongWord splits a word wider than the wrap width on grapheme cluster
// boundaries so multi-rune glyphs are never cut apart.
func breakLongWord(word string, width int) []string {
	var pieces []string
	var current strings.Builder
	currentWidth := 0

	g := uniseg.NewGraphemes(word)
	for g.Next() {
		cluster := g.Str()
		w := runewidth.StringWidth(cluster)
		if currentWidth+w > width && currentWidth > 0 {
			pieces = append(pieces, current.String())
			current.Reset()
			currentWidth = 0
		}
		current.WriteString(cluster)
		currentWidth += w
	}
	if currentWidth > 0 {
		pieces = append(pieces, current.String())
	}
	return pieces
}
