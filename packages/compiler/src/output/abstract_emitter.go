package output

import (
	"fmt"
	"regexp"
	"strings"

	"wick-go/packages/compiler/src/util"
)

var (
	singleQuoteEscapeStringRe = regexp.MustCompile(`'|\\|\n|\r|\$`)
	legalIdentifierRe         = regexp.MustCompile(`(?i)^[$A-Z_][0-9A-Z_$]*$`)
	indentWith                = "  "
)

var binaryOperators = map[BinaryOperator]string{
	BinaryOperatorAnd:                          "&&",
	BinaryOperatorBigger:                       ">",
	BinaryOperatorBiggerEquals:                 ">=",
	BinaryOperatorBitwiseOr:                    "|",
	BinaryOperatorBitwiseAnd:                   "&",
	BinaryOperatorBitwiseXor:                   "^",
	BinaryOperatorShiftLeft:                    "<<",
	BinaryOperatorShiftRight:                   ">>",
	BinaryOperatorUnsignedShiftRight:           ">>>",
	BinaryOperatorDivide:                       "/",
	BinaryOperatorAssign:                       "=",
	BinaryOperatorEquals:                       "==",
	BinaryOperatorIdentical:                    "===",
	BinaryOperatorLower:                        "<",
	BinaryOperatorLowerEquals:                  "<=",
	BinaryOperatorMinus:                        "-",
	BinaryOperatorModulo:                       "%",
	BinaryOperatorExponentiation:               "**",
	BinaryOperatorMultiply:                     "*",
	BinaryOperatorNotEquals:                    "!=",
	BinaryOperatorNotIdentical:                 "!==",
	BinaryOperatorNullishCoalesce:              "??",
	BinaryOperatorOr:                           "||",
	BinaryOperatorPlus:                         "+",
	BinaryOperatorIn:                           "in",
	BinaryOperatorInstanceOf:                   "instanceof",
	BinaryOperatorAdditionAssignment:           "+=",
	BinaryOperatorSubtractionAssignment:        "-=",
	BinaryOperatorMultiplicationAssignment:     "*=",
	BinaryOperatorDivisionAssignment:           "/=",
	BinaryOperatorRemainderAssignment:          "%=",
	BinaryOperatorExponentiationAssignment:     "**=",
	BinaryOperatorAndAssignment:                "&&=",
	BinaryOperatorOrAssignment:                 "||=",
	BinaryOperatorNullishCoalesceAssignment:    "??=",
	BinaryOperatorBitwiseAndAssignment:         "&=",
	BinaryOperatorBitwiseOrAssignment:          "|=",
	BinaryOperatorBitwiseXorAssignment:         "^=",
	BinaryOperatorShiftLeftAssignment:          "<<=",
	BinaryOperatorShiftRightAssignment:         ">>=",
	BinaryOperatorUnsignedShiftRightAssignment: ">>>=",
}

var unaryOperators = map[UnaryOperator]string{
	UnaryOperatorMinus:      "-",
	UnaryOperatorPlus:       "+",
	UnaryOperatorNot:        "!",
	UnaryOperatorBitwiseNot: "~",
	UnaryOperatorTypeof:     "typeof ",
	UnaryOperatorVoid:       "void ",
	UnaryOperatorDelete:     "delete ",
}

// BinaryOperatorString returns the JS spelling of op.
func BinaryOperatorString(op BinaryOperator) string {
	return binaryOperators[op]
}

// EmittedLine represents a line being emitted
type EmittedLine struct {
	PartsLength int
	Parts       []string
	SrcSpans    []*util.ParseSourceSpan
	Indent      int
}

// NewEmittedLine creates a new EmittedLine
func NewEmittedLine(indent int) *EmittedLine {
	return &EmittedLine{
		PartsLength: 0,
		Parts:       []string{},
		SrcSpans:    []*util.ParseSourceSpan{},
		Indent:      indent,
	}
}

// EmitterVisitorContext represents the context for emitting code
type EmitterVisitorContext struct {
	lines  []*EmittedLine
	indent int
}

// CreateRootEmitterVisitorContext creates a root EmitterVisitorContext
func CreateRootEmitterVisitorContext() *EmitterVisitorContext {
	return NewEmitterVisitorContext(0)
}

// NewEmitterVisitorContext creates a new EmitterVisitorContext
func NewEmitterVisitorContext(indent int) *EmitterVisitorContext {
	return &EmitterVisitorContext{
		lines:  []*EmittedLine{NewEmittedLine(indent)},
		indent: indent,
	}
}

func (ctx *EmitterVisitorContext) currentLine() *EmittedLine {
	return ctx.lines[len(ctx.lines)-1]
}

// Println prints a line
func (ctx *EmitterVisitorContext) Println(from interface{}, lastPart string) {
	ctx.Print(from, lastPart, true)
}

// LineIsEmpty checks if the current line is empty
func (ctx *EmitterVisitorContext) LineIsEmpty() bool {
	return len(ctx.currentLine().Parts) == 0
}

// LineLength returns the length of the current line
func (ctx *EmitterVisitorContext) LineLength() int {
	line := ctx.currentLine()
	return line.Indent*len(indentWith) + line.PartsLength
}

// Print prints to the context
func (ctx *EmitterVisitorContext) Print(from interface{}, part string, newLine bool) {
	if len(part) > 0 {
		line := ctx.currentLine()
		line.Parts = append(line.Parts, part)
		line.PartsLength += len(part)

		var sourceSpan *util.ParseSourceSpan
		if from != nil {
			if withSpan, ok := from.(interface {
				GetSourceSpan() *util.ParseSourceSpan
			}); ok {
				sourceSpan = withSpan.GetSourceSpan()
			}
		}
		line.SrcSpans = append(line.SrcSpans, sourceSpan)
	}
	if newLine {
		ctx.lines = append(ctx.lines, NewEmittedLine(ctx.indent))
	}
}

// RemoveEmptyLastLine removes the empty last line
func (ctx *EmitterVisitorContext) RemoveEmptyLastLine() {
	if ctx.LineIsEmpty() && len(ctx.lines) > 1 {
		ctx.lines = ctx.lines[:len(ctx.lines)-1]
	}
}

// IncIndent increases the indent
func (ctx *EmitterVisitorContext) IncIndent() {
	ctx.indent++
	if ctx.LineIsEmpty() {
		ctx.currentLine().Indent = ctx.indent
	}
}

// DecIndent decreases the indent
func (ctx *EmitterVisitorContext) DecIndent() {
	ctx.indent--
	if ctx.LineIsEmpty() {
		ctx.currentLine().Indent = ctx.indent
	}
}

// ToSource converts the context to source code
func (ctx *EmitterVisitorContext) ToSource() string {
	lines := ctx.sourceLines()
	result := make([]string, 0, len(lines))
	for _, line := range lines {
		if len(line.Parts) > 0 {
			result = append(result, strings.Repeat(indentWith, line.Indent)+strings.Join(line.Parts, ""))
		} else {
			result = append(result, "")
		}
	}
	return strings.Join(result, "\n")
}

// ToSourceMapGenerator converts the context to a source map generator
func (ctx *EmitterVisitorContext) ToSourceMapGenerator(genFilePath string, startsAtLine int) (*SourceMapGenerator, error) {
	mapGen := NewSourceMapGenerator(genFilePath)

	firstOffsetMapped := false
	mapFirstOffsetIfNeeded := func() error {
		if !firstOffsetMapped {
			mapGen.AddSource(genFilePath, " ")
			if err := mapGen.AddMapping(0, genFilePath, 0, 0); err != nil {
				return err
			}
			firstOffsetMapped = true
		}
		return nil
	}

	for i := 0; i < startsAtLine; i++ {
		mapGen.AddLine()
		if err := mapFirstOffsetIfNeeded(); err != nil {
			return nil, err
		}
	}

	for lineIdx, line := range ctx.sourceLines() {
		mapGen.AddLine()

		spans := line.SrcSpans
		parts := line.Parts
		col0 := line.Indent * len(indentWith)
		spanIdx := 0

		// skip leading parts without source spans
		for spanIdx < len(spans) && spans[spanIdx] == nil {
			col0 += len(parts[spanIdx])
			spanIdx++
		}

		if spanIdx < len(spans) && lineIdx == 0 && col0 == 0 {
			firstOffsetMapped = true
		} else if err := mapFirstOffsetIfNeeded(); err != nil {
			return nil, err
		}

		for spanIdx < len(spans) {
			span := spans[spanIdx]
			if span == nil || span.Start == nil {
				col0 += len(parts[spanIdx])
				spanIdx++
				continue
			}

			source := span.Start.File
			mapGen.AddSource(source.URL, source.Content)
			if err := mapGen.AddMapping(col0, source.URL, span.Start.Line, span.Start.Col); err != nil {
				return nil, err
			}

			col0 += len(parts[spanIdx])
			spanIdx++

			// assign parts without span or the same span to the previous segment
			for spanIdx < len(spans) && (spans[spanIdx] == span || spans[spanIdx] == nil) {
				col0 += len(parts[spanIdx])
				spanIdx++
			}
		}
	}

	return mapGen, nil
}

// SpanOf returns the source span at the given line and column
func (ctx *EmitterVisitorContext) SpanOf(lineNum, column int) *util.ParseSourceSpan {
	if lineNum < len(ctx.lines) {
		emittedLine := ctx.lines[lineNum]
		columnsLeft := column - emittedLine.Indent*len(indentWith)
		for partIndex := 0; partIndex < len(emittedLine.Parts); partIndex++ {
			part := emittedLine.Parts[partIndex]
			if len(part) > columnsLeft {
				return emittedLine.SrcSpans[partIndex]
			}
			columnsLeft -= len(part)
		}
	}
	return nil
}

// sourceLines returns the source lines (excluding empty last line)
func (ctx *EmitterVisitorContext) sourceLines() []*EmittedLine {
	if len(ctx.lines) > 0 && len(ctx.lines[len(ctx.lines)-1].Parts) == 0 {
		return ctx.lines[:len(ctx.lines)-1]
	}
	return ctx.lines
}

// EscapeIdentifier escapes an identifier
func EscapeIdentifier(input string, escapeDollar bool, alwaysQuote bool) string {
	if input == "" {
		if alwaysQuote {
			return "''"
		}
		return ""
	}

	body := singleQuoteEscapeStringRe.ReplaceAllStringFunc(input, func(match string) string {
		switch match {
		case "$":
			if escapeDollar {
				return "\\$"
			}
			return "$"
		case "\n":
			return "\\n"
		case "\r":
			return "\\r"
		default:
			return "\\" + match
		}
	})

	requiresQuotes := alwaysQuote || !legalIdentifierRe.MatchString(body)
	if requiresQuotes {
		return "'" + body + "'"
	}
	return body
}

// IsLegalIdentifier reports whether name can be used unquoted as a property name.
func IsLegalIdentifier(name string) bool {
	return legalIdentifierRe.MatchString(name)
}

func getContext(context interface{}) *EmitterVisitorContext {
	if ctx, ok := context.(*EmitterVisitorContext); ok {
		return ctx
	}
	panic(fmt.Sprintf("context must be *EmitterVisitorContext, got %T", context))
}
