package ml_parser

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"wick-go/packages/compiler/src/util"
)

// Equivalent to \s with \u00a0 (non-breaking space) excluded
const wsChars = " \f\n\r\t\v\u1680\u180e\u2000-\u200a\u2028\u2029\u202f\u205f\u3000\ufeff"

var (
	noWsRegexp      = regexp.MustCompile(`[^` + wsChars + `]`)
	wsReplaceRegexp = regexp.MustCompile(`[` + wsChars + `]{2,}`)
)

// IsBlank reports whether text has only whitespace characters
func IsBlank(text string) bool {
	return !noWsRegexp.MatchString(text)
}

func collapseWhitespace(text string) string {
	return wsReplaceRegexp.ReplaceAllString(text, " ")
}

// SplitInterpolation splits raw source text starting at offset into literal
// and `${}` expression parts. Literal parts are entity decoded; expression
// parts keep their raw source so offsets stay exact.
func SplitInterpolation(file *util.ParseSourceFile, raw string, offset int) ([]*Part, *util.ParseError) {
	var parts []*Part
	literalStart := 0
	addLiteral := func(end int) {
		if end > literalStart {
			parts = append(parts, &Part{
				Text:   html.UnescapeString(raw[literalStart:end]),
				Offset: offset + literalStart,
				Span:   file.Span(offset+literalStart, offset+end),
			})
		}
	}

	for i := 0; i < len(raw)-1; i++ {
		if raw[i] != '$' || raw[i+1] != '{' {
			continue
		}
		if i > 0 && raw[i-1] == '\\' {
			continue
		}
		end := matchBrace(raw, i+2)
		if end < 0 {
			return parts, util.NewParseError(file.Span(offset+i, offset+len(raw)), "Unterminated expression, expected `}`")
		}
		addLiteral(i)
		parts = append(parts, &Part{
			Text:   raw[i+2 : end],
			IsExpr: true,
			Offset: offset + i + 2,
			Span:   file.Span(offset+i, offset+end+1),
		})
		literalStart = end + 1
		i = end
	}
	addLiteral(len(raw))
	return parts, nil
}

// matchBrace returns the index of the `}` closing an expression that starts
// at i, skipping nested braces, strings and template literals.
func matchBrace(s string, i int) int {
	depth := 0
	for ; i < len(s); i++ {
		switch c := s[i]; c {
		case '{':
			depth++
		case '}':
			if depth == 0 {
				return i
			}
			depth--
		case '\'', '"':
			if i = skipString(s, i, c); i < 0 {
				return -1
			}
		case '`':
			if i = skipTemplate(s, i); i < 0 {
				return -1
			}
		}
	}
	return -1
}

func skipString(s string, i int, quote byte) int {
	for i++; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case quote:
			return i
		}
	}
	return -1
}

func skipTemplate(s string, i int) int {
	for i++; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '`':
			return i
		case '$':
			if i+1 < len(s) && s[i+1] == '{' {
				end := matchBrace(s, i+2)
				if end < 0 {
					return -1
				}
				i = end
			}
		}
	}
	return -1
}

// PartsValue joins literal parts and expression sources back into text
func PartsValue(parts []*Part) string {
	var b strings.Builder
	for _, p := range parts {
		if p.IsExpr {
			b.WriteString("${")
			b.WriteString(p.Text)
			b.WriteString("}")
		} else {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}
