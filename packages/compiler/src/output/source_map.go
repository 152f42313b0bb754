package output

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	// Version is the source map version
	Version     = 3
	jsB64Prefix = "# sourceMappingURL=data:application/json;base64,"
)

// Segment represents a segment in a source map line
type Segment struct {
	Col0        int
	SourceURL   string
	SourceLine0 int
	SourceCol0  int
}

// SourceMap represents a source map
type SourceMap struct {
	Version        int      `json:"version"`
	File           string   `json:"file"`
	SourceRoot     string   `json:"sourceRoot"`
	Sources        []string `json:"sources"`
	SourcesContent []string `json:"sourcesContent"`
	Mappings       string   `json:"mappings"`
}

// SourceMapGenerator generates source maps
type SourceMapGenerator struct {
	sourcesContent map[string]string
	sources        []string
	lines          [][]Segment
	lastCol0       int
	hasMappings    bool
	file           string
}

// NewSourceMapGenerator creates a new SourceMapGenerator
func NewSourceMapGenerator(file string) *SourceMapGenerator {
	return &SourceMapGenerator{
		sourcesContent: make(map[string]string),
		file:           file,
	}
}

// AddSource adds a source file to the source map
func (smg *SourceMapGenerator) AddSource(url string, content string) *SourceMapGenerator {
	if _, exists := smg.sourcesContent[url]; !exists {
		smg.sourcesContent[url] = content
		smg.sources = append(smg.sources, url)
	}
	return smg
}

// AddLine adds a new line to the source map
func (smg *SourceMapGenerator) AddLine() *SourceMapGenerator {
	smg.lines = append(smg.lines, []Segment{})
	smg.lastCol0 = 0
	return smg
}

// AddMapping adds a mapping to the current line
func (smg *SourceMapGenerator) AddMapping(col0 int, sourceURL string, sourceLine0, sourceCol0 int) error {
	if len(smg.lines) == 0 {
		return fmt.Errorf("a line must be added before mappings can be added")
	}
	if _, exists := smg.sourcesContent[sourceURL]; !exists {
		return fmt.Errorf("unknown source file %q", sourceURL)
	}
	if col0 < smg.lastCol0 {
		return fmt.Errorf("mapping should be added in output order")
	}

	smg.hasMappings = true
	smg.lastCol0 = col0
	last := len(smg.lines) - 1
	smg.lines[last] = append(smg.lines[last], Segment{
		Col0:        col0,
		SourceURL:   sourceURL,
		SourceLine0: sourceLine0,
		SourceCol0:  sourceCol0,
	})
	return nil
}

// ToJSON converts the generator into a SourceMap. It returns nil when no
// mappings were recorded.
func (smg *SourceMapGenerator) ToJSON() *SourceMap {
	if !smg.hasMappings {
		return nil
	}

	sources := smg.sources

	sourcesIndex := make(map[string]int, len(sources))
	sourcesContent := make([]string, len(sources))
	for i, url := range sources {
		sourcesIndex[url] = i
		sourcesContent[i] = smg.sourcesContent[url]
	}

	lastSourceIndex := 0
	lastSourceLine0 := 0
	lastSourceCol0 := 0

	lineStrs := make([]string, len(smg.lines))
	for i, segments := range smg.lines {
		lastCol0 := 0
		segStrs := make([]string, len(segments))
		for j, segment := range segments {
			var b strings.Builder
			// zero-based starting column of the line in the generated code
			writeBase64VLQ(&b, segment.Col0-lastCol0)
			lastCol0 = segment.Col0

			sourceIndex := sourcesIndex[segment.SourceURL]
			writeBase64VLQ(&b, sourceIndex-lastSourceIndex)
			lastSourceIndex = sourceIndex
			writeBase64VLQ(&b, segment.SourceLine0-lastSourceLine0)
			lastSourceLine0 = segment.SourceLine0
			writeBase64VLQ(&b, segment.SourceCol0-lastSourceCol0)
			lastSourceCol0 = segment.SourceCol0

			segStrs[j] = b.String()
		}
		lineStrs[i] = strings.Join(segStrs, ",")
	}

	return &SourceMap{
		Version:        Version,
		File:           smg.file,
		Sources:        sources,
		SourcesContent: sourcesContent,
		Mappings:       strings.Join(lineStrs, ";"),
	}
}

// ToJsComment converts the source map to an inline JavaScript comment
func (smg *SourceMapGenerator) ToJsComment() (string, error) {
	sourceMap := smg.ToJSON()
	if sourceMap == nil {
		return "", nil
	}
	data, err := json.Marshal(sourceMap)
	if err != nil {
		return "", err
	}
	return "//" + jsB64Prefix + base64.StdEncoding.EncodeToString(data), nil
}

const b64Digits = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// writeBase64VLQ appends the VLQ encoding of value
func writeBase64VLQ(b *strings.Builder, value int) {
	if value < 0 {
		value = (-value << 1) + 1
	} else {
		value = value << 1
	}
	for {
		digit := value & 31
		value >>= 5
		if value > 0 {
			digit |= 32
		}
		b.WriteByte(b64Digits[digit])
		if value == 0 {
			break
		}
	}
}
