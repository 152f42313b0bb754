package util

import (
	"fmt"
	"sort"
	"strings"
)

// ParseLocation represents a location in the source file
type ParseLocation struct {
	File   *ParseSourceFile
	Offset int
	Line   int
	Col    int
}

// NewParseLocation creates a new ParseLocation
func NewParseLocation(file *ParseSourceFile, offset, line, col int) *ParseLocation {
	return &ParseLocation{
		File:   file,
		Offset: offset,
		Line:   line,
		Col:    col,
	}
}

// String returns a string representation of the location
func (p *ParseLocation) String() string {
	if p.Offset >= 0 {
		return fmt.Sprintf("%s@%d:%d", p.File.URL, p.Line, p.Col)
	}
	return p.File.URL
}

// MoveBy moves the location by delta characters
func (p *ParseLocation) MoveBy(delta int) *ParseLocation {
	offset := p.Offset + delta
	if offset < 0 {
		offset = 0
	}
	return p.File.Location(offset)
}

// GetContext returns the source context around the location
func (p *ParseLocation) GetContext(maxChars, maxLines int) *Context {
	content := p.File.Content
	startOffset := p.Offset

	if startOffset < 0 || len(content) == 0 {
		return nil
	}
	if startOffset > len(content)-1 {
		startOffset = len(content) - 1
	}
	anchor := startOffset

	endOffset := startOffset
	ctxChars := 0
	ctxLines := 0

	for ctxChars < maxChars && startOffset > 0 {
		startOffset--
		ctxChars++
		if content[startOffset] == '\n' {
			ctxLines++
			if ctxLines == maxLines {
				break
			}
		}
	}

	ctxChars = 0
	ctxLines = 0
	for ctxChars < maxChars && endOffset < len(content)-1 {
		endOffset++
		ctxChars++
		if content[endOffset] == '\n' {
			ctxLines++
			if ctxLines == maxLines {
				break
			}
		}
	}

	return &Context{
		Before: content[startOffset:anchor],
		After:  content[anchor : endOffset+1],
	}
}

// Context represents source context around a location
type Context struct {
	Before string
	After  string
}

// ParseSourceFile represents a source file
type ParseSourceFile struct {
	Content string
	URL     string

	lineStarts []int
}

// NewParseSourceFile creates a new ParseSourceFile
func NewParseSourceFile(content, url string) *ParseSourceFile {
	return &ParseSourceFile{
		Content: content,
		URL:     url,
	}
}

// Location returns the zero based line/column location of a byte offset.
func (f *ParseSourceFile) Location(offset int) *ParseLocation {
	if f.lineStarts == nil {
		f.lineStarts = []int{0}
		for i := 0; i < len(f.Content); i++ {
			if f.Content[i] == '\n' {
				f.lineStarts = append(f.lineStarts, i+1)
			}
		}
	}
	if offset > len(f.Content) {
		offset = len(f.Content)
	}
	line := sort.Search(len(f.lineStarts), func(i int) bool { return f.lineStarts[i] > offset }) - 1
	return NewParseLocation(f, offset, line, offset-f.lineStarts[line])
}

// Span returns the span covering [start, end).
func (f *ParseSourceFile) Span(start, end int) *ParseSourceSpan {
	if end < start {
		end = start
	}
	return NewParseSourceSpan(f.Location(start), f.Location(end), nil, nil)
}

// ParseSourceSpan represents a span of source code
type ParseSourceSpan struct {
	Start     *ParseLocation
	End       *ParseLocation
	FullStart *ParseLocation
	Details   *string
}

// NewParseSourceSpan creates a new ParseSourceSpan
func NewParseSourceSpan(start, end *ParseLocation, fullStart *ParseLocation, details *string) *ParseSourceSpan {
	if fullStart == nil {
		fullStart = start
	}
	return &ParseSourceSpan{
		Start:     start,
		End:       end,
		FullStart: fullStart,
		Details:   details,
	}
}

// String returns the source code in this span
func (p *ParseSourceSpan) String() string {
	return p.Start.File.Content[p.Start.Offset:p.End.Offset]
}

// ParseErrorLevel represents the level of a parse error
type ParseErrorLevel int

const (
	ParseErrorLevelWarning ParseErrorLevel = iota
	ParseErrorLevelError
)

// ParseError represents a positioned compile diagnostic
type ParseError struct {
	Span         *ParseSourceSpan
	Msg          string
	Level        ParseErrorLevel
	RelatedError error
}

// NewParseError creates a new ParseError
func NewParseError(span *ParseSourceSpan, msg string) *ParseError {
	return &ParseError{
		Span:  span,
		Msg:   msg,
		Level: ParseErrorLevelError,
	}
}

// NewParseWarning creates a new ParseWarning
func NewParseWarning(span *ParseSourceSpan, msg string) *ParseError {
	return &ParseError{
		Span:  span,
		Msg:   msg,
		Level: ParseErrorLevelWarning,
	}
}

// Error implements the error interface
func (p *ParseError) Error() string {
	return p.String()
}

// Unwrap returns the underlying Go error, if any.
func (p *ParseError) Unwrap() error {
	return p.RelatedError
}

// ContextualMessage returns the error message with context
func (p *ParseError) ContextualMessage() string {
	if p.Span == nil || p.Span.Start == nil {
		return p.Msg
	}
	ctx := p.Span.Start.GetContext(100, 3)
	if ctx != nil {
		levelStr := "ERROR"
		if p.Level == ParseErrorLevelWarning {
			levelStr = "WARNING"
		}
		return fmt.Sprintf(`%s ("%s[%s ->]%s")`, p.Msg, ctx.Before, levelStr, ctx.After)
	}
	return p.Msg
}

// String returns a string representation of the error
func (p *ParseError) String() string {
	if p.Span == nil {
		return p.Msg
	}
	details := ""
	if p.Span.Details != nil {
		details = fmt.Sprintf(", %s", *p.Span.Details)
	}
	if p.Span.Start == nil {
		return fmt.Sprintf("%s%s", p.ContextualMessage(), details)
	}
	return fmt.Sprintf("%s: %s%s", p.ContextualMessage(), p.Span.Start, details)
}

// ErrorList accumulates diagnostics for one compilation unit.
type ErrorList []*ParseError

// Add appends an error at span.
func (l *ErrorList) Add(span *ParseSourceSpan, format string, args ...interface{}) {
	*l = append(*l, NewParseError(span, fmt.Sprintf(format, args...)))
}

// Warn appends a warning at span.
func (l *ErrorList) Warn(span *ParseSourceSpan, format string, args ...interface{}) {
	*l = append(*l, NewParseWarning(span, fmt.Sprintf(format, args...)))
}

// Append adds already built diagnostics.
func (l *ErrorList) Append(errs ...*ParseError) {
	*l = append(*l, errs...)
}

// HasErrors reports whether any entry is at error level.
func (l ErrorList) HasErrors() bool {
	for _, e := range l {
		if e.Level == ParseErrorLevelError {
			return true
		}
	}
	return false
}

// Errors returns only the error level entries.
func (l ErrorList) Errors() ErrorList {
	var out ErrorList
	for _, e := range l {
		if e.Level == ParseErrorLevelError {
			out = append(out, e)
		}
	}
	return out
}

// Sort orders the list by source position, keeping insertion order for ties.
func (l ErrorList) Sort() {
	sort.SliceStable(l, func(i, j int) bool {
		return offsetOf(l[i]) < offsetOf(l[j])
	})
}

// Err returns the list as an error, or nil if it holds no errors.
func (l ErrorList) Err() error {
	if !l.HasErrors() {
		return nil
	}
	return l
}

// Error implements the error interface
func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	msgs := make([]string, len(l))
	for i, e := range l {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "\n")
}

func offsetOf(e *ParseError) int {
	if e.Span == nil || e.Span.Start == nil {
		return -1
	}
	return e.Span.Start.Offset
}
