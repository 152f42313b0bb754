package expression_parser

import (
	"strings"

	"wick-go/packages/compiler/src/util"
)

// ImportSpecifier is one name bound by an import declaration. Imported is
// "default" for default imports and "*" for namespace imports.
type ImportSpecifier struct {
	Local    string
	Imported string
	Span     *util.ParseSourceSpan
}

// ImportDecl is an `import ... from "source"` declaration
type ImportDecl struct {
	Source     string
	Specifiers []*ImportSpecifier
	Span       *util.ParseSourceSpan
}

// ExportSpecifier is one `local as exported` entry of an export declaration
type ExportSpecifier struct {
	Local    string
	Exported string
	Span     *util.ParseSourceSpan
}

// declarationScanner finds top level import and export declarations and
// blanks them out of the source so the rest can be handed to a script parser
// that does not understand module syntax. Every blanked character except
// newlines becomes a space, keeping offsets intact.
type declarationScanner struct {
	file *util.ParseSourceFile
	src  []byte
	base int

	imports []*ImportDecl
	exports []*ExportSpecifier
	// declared holds the offsets of declarations prefixed with `export`
	declared []int
	errors   util.ErrorList
}

func scanDeclarations(file *util.ParseSourceFile, src string, base int) *declarationScanner {
	s := &declarationScanner{file: file, src: []byte(src), base: base}
	s.scan()
	return s
}

func (s *declarationScanner) blanked() string {
	return string(s.src)
}

func (s *declarationScanner) span(start, end int) *util.ParseSourceSpan {
	return s.file.Span(s.base+start, s.base+end)
}

func (s *declarationScanner) blank(start, end int) {
	for i := start; i < end && i < len(s.src); i++ {
		if s.src[i] != '\n' && s.src[i] != '\r' {
			s.src[i] = ' '
		}
	}
}

func (s *declarationScanner) scan() {
	depth := 0
	prev := byte(0)
	for i := 0; i < len(s.src); {
		c := s.src[i]
		switch {
		case c == '/' && i+1 < len(s.src) && s.src[i+1] == '/':
			i = s.skipLine(i)
			continue
		case c == '/' && i+1 < len(s.src) && s.src[i+1] == '*':
			i = s.skipBlockComment(i)
			continue
		case c == '\'' || c == '"':
			i = s.skipQuoted(i, c) + 1
			prev = c
			continue
		case c == '`':
			i = s.skipTemplate(i) + 1
			prev = c
			continue
		case c == '/' && regexAllowed(prev):
			i = s.skipRegex(i) + 1
			prev = c
			continue
		case c == '{' || c == '(' || c == '[':
			depth++
		case c == '}' || c == ')' || c == ']':
			depth--
		case isIdentStart(c):
			end := i
			for end < len(s.src) && isIdentPart(s.src[end]) {
				end++
			}
			word := string(s.src[i:end])
			if depth == 0 && prev != '.' {
				switch word {
				case "import":
					if next := s.skipSpace(end); next < len(s.src) && s.src[next] != '(' && s.src[next] != '.' {
						i = s.importDecl(i, end)
						prev = ';'
						continue
					}
				case "export":
					i = s.exportDecl(i, end)
					prev = ';'
					continue
				}
			}
			i = end
			prev = 'a'
			continue
		}
		if !isSpace(c) {
			prev = c
		}
		i++
	}
}

// regexAllowed reports whether a slash after prev starts a regular expression
// literal rather than a division.
func regexAllowed(prev byte) bool {
	switch prev {
	case 0, '(', ',', '=', ':', '[', '!', '&', '|', '?', '{', '}', ';', '+', '-', '*', '%', '<', '>', '~', '^':
		return true
	}
	return false
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func (s *declarationScanner) skipSpace(i int) int {
	for i < len(s.src) {
		switch {
		case isSpace(s.src[i]):
			i++
		case s.src[i] == '/' && i+1 < len(s.src) && s.src[i+1] == '/':
			i = s.skipLine(i)
		case s.src[i] == '/' && i+1 < len(s.src) && s.src[i+1] == '*':
			i = s.skipBlockComment(i)
		default:
			return i
		}
	}
	return i
}

func (s *declarationScanner) skipLine(i int) int {
	for i < len(s.src) && s.src[i] != '\n' {
		i++
	}
	return i
}

func (s *declarationScanner) skipBlockComment(i int) int {
	end := strings.Index(string(s.src[i+2:]), "*/")
	if end < 0 {
		return len(s.src)
	}
	return i + 2 + end + 2
}

// skipQuoted returns the index of the closing quote
func (s *declarationScanner) skipQuoted(i int, quote byte) int {
	for i++; i < len(s.src); i++ {
		switch s.src[i] {
		case '\\':
			i++
		case quote, '\n':
			return i
		}
	}
	return len(s.src)
}

// skipTemplate returns the index of the closing backtick
func (s *declarationScanner) skipTemplate(i int) int {
	for i++; i < len(s.src); i++ {
		switch s.src[i] {
		case '\\':
			i++
		case '`':
			return i
		case '$':
			if i+1 < len(s.src) && s.src[i+1] == '{' {
				i = s.skipBraces(i + 1)
			}
		}
	}
	return len(s.src)
}

// skipBraces returns the index of the `}` matching the `{` at i
func (s *declarationScanner) skipBraces(i int) int {
	depth := 0
	for ; i < len(s.src); i++ {
		switch c := s.src[i]; c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		case '\'', '"':
			i = s.skipQuoted(i, c)
		case '`':
			i = s.skipTemplate(i)
		}
	}
	return len(s.src)
}

func (s *declarationScanner) skipRegex(i int) int {
	inClass := false
	for i++; i < len(s.src); i++ {
		switch s.src[i] {
		case '\\':
			i++
		case '[':
			inClass = true
		case ']':
			inClass = false
		case '/':
			if !inClass {
				for i+1 < len(s.src) && isIdentPart(s.src[i+1]) {
					i++
				}
				return i
			}
		case '\n':
			return i
		}
	}
	return len(s.src)
}

func (s *declarationScanner) ident(i int) (string, int) {
	start := i
	if i >= len(s.src) || !isIdentStart(s.src[i]) {
		return "", i
	}
	for i < len(s.src) && isIdentPart(s.src[i]) {
		i++
	}
	return string(s.src[start:i]), i
}

func (s *declarationScanner) keyword(i int, word string) (int, bool) {
	w, end := s.ident(i)
	if w != word {
		return i, false
	}
	return end, true
}

func (s *declarationScanner) stringLiteral(i int) (string, int, bool) {
	if i >= len(s.src) || (s.src[i] != '"' && s.src[i] != '\'') {
		return "", i, false
	}
	end := s.skipQuoted(i, s.src[i])
	if end >= len(s.src) || s.src[end] != s.src[i] {
		return "", end, false
	}
	return string(s.src[i+1 : end]), end + 1, true
}

func (s *declarationScanner) terminate(i int) int {
	j := i
	for j < len(s.src) && (s.src[j] == ' ' || s.src[j] == '\t') {
		j++
	}
	if j < len(s.src) && s.src[j] == ';' {
		return j + 1
	}
	return i
}

// nameList reads `{ a, b as c }` starting at the opening brace. For imports
// the entries are (imported, local); for exports (local, exported).
func (s *declarationScanner) nameList(i int) ([][2]string, []int, int, bool) {
	var names [][2]string
	var offsets []int
	i = s.skipSpace(i + 1)
	for i < len(s.src) && s.src[i] != '}' {
		start := i
		first, end := s.ident(i)
		if first == "" {
			if lit, litEnd, ok := s.stringLiteral(i); ok {
				first, end = lit, litEnd
			} else {
				return nil, nil, i, false
			}
		}
		second := first
		i = s.skipSpace(end)
		if next, ok := s.keyword(i, "as"); ok {
			second, end = s.ident(s.skipSpace(next))
			if second == "" {
				return nil, nil, end, false
			}
			i = s.skipSpace(end)
		}
		names = append(names, [2]string{first, second})
		offsets = append(offsets, start)
		if i < len(s.src) && s.src[i] == ',' {
			i = s.skipSpace(i + 1)
		}
	}
	if i >= len(s.src) {
		return nil, nil, i, false
	}
	return names, offsets, i + 1, true
}

func (s *declarationScanner) importDecl(start, i int) int {
	decl := &ImportDecl{}
	fail := func(at int) int {
		s.errors.Add(s.span(start, at), "Malformed import declaration")
		end := s.skipLine(at)
		s.blank(start, end)
		return end
	}

	i = s.skipSpace(i)
	if source, end, ok := s.stringLiteral(i); ok {
		decl.Source = source
		i = end
	} else {
		for {
			i = s.skipSpace(i)
			switch {
			case i < len(s.src) && s.src[i] == '{':
				names, offsets, end, ok := s.nameList(i)
				if !ok {
					return fail(end)
				}
				for k, n := range names {
					decl.Specifiers = append(decl.Specifiers, &ImportSpecifier{
						Imported: n[0],
						Local:    n[1],
						Span:     s.span(offsets[k], offsets[k]+len(n[0])),
					})
				}
				i = end
			case i < len(s.src) && s.src[i] == '*':
				next, ok := s.keyword(s.skipSpace(i+1), "as")
				if !ok {
					return fail(i)
				}
				at := s.skipSpace(next)
				local, end := s.ident(at)
				if local == "" {
					return fail(at)
				}
				decl.Specifiers = append(decl.Specifiers, &ImportSpecifier{Imported: "*", Local: local, Span: s.span(at, end)})
				i = end
			default:
				local, end := s.ident(i)
				if local == "" || local == "from" {
					return fail(i)
				}
				decl.Specifiers = append(decl.Specifiers, &ImportSpecifier{Imported: "default", Local: local, Span: s.span(i, end)})
				i = end
			}
			i = s.skipSpace(i)
			if i < len(s.src) && s.src[i] == ',' {
				i++
				continue
			}
			break
		}
		next, ok := s.keyword(i, "from")
		if !ok {
			return fail(i)
		}
		source, end, ok := s.stringLiteral(s.skipSpace(next))
		if !ok {
			return fail(end)
		}
		decl.Source = source
		i = end
	}

	end := s.terminate(i)
	decl.Span = s.span(start, end)
	s.imports = append(s.imports, decl)
	s.blank(start, end)
	return end
}

func (s *declarationScanner) exportDecl(start, i int) int {
	i = s.skipSpace(i)
	if i < len(s.src) && s.src[i] == '{' {
		names, offsets, end, ok := s.nameList(i)
		if !ok {
			s.errors.Add(s.span(start, end), "Malformed export declaration")
			end = s.skipLine(end)
			s.blank(start, end)
			return end
		}
		if next, ok := s.keyword(s.skipSpace(end), "from"); ok {
			s.errors.Add(s.span(start, next), "Re-exporting from another module is not supported")
		}
		for k, n := range names {
			s.exports = append(s.exports, &ExportSpecifier{
				Local:    n[0],
				Exported: n[1],
				Span:     s.span(offsets[k], offsets[k]+len(n[0])),
			})
		}
		end = s.terminate(end)
		s.blank(start, end)
		return end
	}

	word, _ := s.ident(i)
	switch word {
	case "var", "let", "const", "function", "async":
		s.declared = append(s.declared, s.base+i)
	case "default":
		s.errors.Add(s.span(start, i+len(word)), "Default exports are not supported")
	default:
		s.errors.Add(s.span(start, i), "Malformed export declaration")
	}
	s.blank(start, start+len("export"))
	return i
}
