package ingest

import (
	"regexp"
	"strings"
)

var (
	numberedListPattern = regexp.MustCompile(`^\d+\.`)
	trailingCommaObject = regexp.MustCompile(`,\s*}`)
	trailingCommaArray  = regexp.MustCompile(`,\s*\]`)
)

// Sanitize applies best-effort structural repairs to a model response so that
// a strict JSON parse has a chance of succeeding. It is tuned to the ways chat
// models break JSON (prose around the payload, trailing commas, truncation)
// and is not a general repair tool.
//
// A response that carries no bracketed payload but reads as a numbered list is
// converted straight to a JSON card array.
func Sanitize(raw string) string {
	cleaned := strings.TrimSpace(raw)

	fragment, found := findJSONFragment(cleaned)
	if !found && numberedListPattern.MatchString(cleaned) {
		return ConvertNumberedList(cleaned)
	}
	if found {
		cleaned = fragment
	}

	cleaned = stripControlChars(cleaned)
	cleaned = trailingCommaObject.ReplaceAllString(cleaned, "}")
	cleaned = trailingCommaArray.ReplaceAllString(cleaned, "]")
	cleaned = repairEscapes(cleaned)

	return closeOpenBrackets(cleaned)
}

// findJSONFragment returns the text from the first opening bracket or brace
// through the last matching closer, dropping any prose on either side. An
// array that lost its closing bracket is clipped at its last complete object.
func findJSONFragment(text string) (string, bool) {
	lastBracket := strings.LastIndexByte(text, ']')
	lastBrace := strings.LastIndexByte(text, '}')

	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '[':
			if lastBracket > i {
				return text[i : lastBracket+1], true
			}
			if lastBrace > i {
				return text[i : lastBrace+1], true
			}
		case '{':
			if lastBrace > i {
				return text[i : lastBrace+1], true
			}
		}
	}
	return "", false
}

func stripControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if r <= 0x1F || (r >= 0x7F && r <= 0x9F) {
			return -1
		}
		return r
	}, s)
}

// repairEscapes doubles any backslash that does not start a valid JSON escape.
func repairEscapes(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		if i+1 < len(s) && strings.IndexByte(`"\/bfnrtu`, s[i+1]) >= 0 {
			b.WriteByte(c)
			b.WriteByte(s[i+1])
			i++
			continue
		}
		b.WriteString(`\\`)
	}
	return b.String()
}

// closeOpenBrackets appends the closers needed for any bracket or brace left
// open outside of string literals. Unmatched closers are left in place.
func closeOpenBrackets(s string) string {
	var stack []byte
	inString, escaped := false, false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if n := len(stack); n > 0 && stack[n-1] == c {
				stack = stack[:n-1]
			}
		}
	}

	if len(stack) == 0 {
		return s
	}

	var b strings.Builder
	b.WriteString(s)
	for i := len(stack) - 1; i >= 0; i-- {
		b.WriteByte(stack[i])
	}
	return b.String()
}
