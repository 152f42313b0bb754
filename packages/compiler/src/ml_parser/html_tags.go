package ml_parser

import (
	"strings"
	"sync"
)

// TagContentType represents the content type of a tag
type TagContentType int

const (
	TagContentTypeRawText TagContentType = iota
	TagContentTypeEscapableRawText
	TagContentTypeParsableData
)

// TagDefinition defines how the tree builder treats an HTML tag
type TagDefinition struct {
	closedByChildren map[string]bool
	contentType      TagContentType
	closedByParent   bool
	isVoid           bool
	ignoreFirstLf    bool
}

// TagDefinitionOptions are options for creating a TagDefinition
type TagDefinitionOptions struct {
	ClosedByChildren []string
	ClosedByParent   bool
	ContentType      TagContentType
	IsVoid           bool
	IgnoreFirstLf    bool
}

// NewTagDefinition creates a new TagDefinition
func NewTagDefinition(opts TagDefinitionOptions) *TagDefinition {
	closedByChildren := make(map[string]bool, len(opts.ClosedByChildren))
	for _, tagName := range opts.ClosedByChildren {
		closedByChildren[tagName] = true
	}
	return &TagDefinition{
		closedByChildren: closedByChildren,
		contentType:      opts.ContentType,
		closedByParent:   opts.ClosedByParent || opts.IsVoid,
		isVoid:           opts.IsVoid,
		ignoreFirstLf:    opts.IgnoreFirstLf,
	}
}

// ClosedByParent returns whether the tag may be left open until its parent closes
func (d *TagDefinition) ClosedByParent() bool {
	return d.closedByParent
}

// IsVoid returns whether this tag is void
func (d *TagDefinition) IsVoid() bool {
	return d.isVoid
}

// IgnoreFirstLf returns whether to ignore first line feed
func (d *TagDefinition) IgnoreFirstLf() bool {
	return d.ignoreFirstLf
}

// IsClosedByChild returns whether an open tag is implicitly closed by a child
func (d *TagDefinition) IsClosedByChild(name string) bool {
	return d.isVoid || d.closedByChildren[strings.ToLower(name)]
}

// ContentType returns the content type for this tag
func (d *TagDefinition) ContentType() TagContentType {
	return d.contentType
}

var (
	tagDefinitionsOnce   sync.Once
	defaultTagDefinition *TagDefinition
	tagDefinitions       map[string]*TagDefinition
)

// GetHtmlTagDefinition returns the HTML tag definition for a tag name
func GetHtmlTagDefinition(tagName string) *TagDefinition {
	tagDefinitionsOnce.Do(initHtmlTagDefinitions)
	if def, exists := tagDefinitions[strings.ToLower(tagName)]; exists {
		return def
	}
	return defaultTagDefinition
}

func initHtmlTagDefinitions() {
	defaultTagDefinition = NewTagDefinition(TagDefinitionOptions{ContentType: TagContentTypeParsableData})
	tagDefinitions = make(map[string]*TagDefinition)

	voidTags := []string{"base", "meta", "area", "embed", "link", "img", "input", "param", "hr", "br", "source", "track", "wbr", "col"}
	for _, tag := range voidTags {
		tagDefinitions[tag] = NewTagDefinition(TagDefinitionOptions{IsVoid: true, ContentType: TagContentTypeParsableData})
	}

	tagDefinitions["p"] = NewTagDefinition(TagDefinitionOptions{
		ClosedByChildren: []string{
			"address", "article", "aside", "blockquote", "div", "dl", "fieldset",
			"footer", "form", "h1", "h2", "h3", "h4", "h5", "h6", "header",
			"hgroup", "hr", "main", "nav", "ol", "p", "pre", "section", "table", "ul",
		},
		ClosedByParent: true,
		ContentType:    TagContentTypeParsableData,
	})

	closers := map[string][]string{
		"thead":    {"tbody", "tfoot"},
		"tbody":    {"tbody", "tfoot"},
		"tfoot":    {"tbody"},
		"tr":       {"tr"},
		"td":       {"td", "th"},
		"th":       {"td", "th"},
		"li":       {"li"},
		"dt":       {"dt", "dd"},
		"dd":       {"dt", "dd"},
		"optgroup": {"optgroup"},
		"option":   {"option", "optgroup"},
	}
	for tag, children := range closers {
		tagDefinitions[tag] = NewTagDefinition(TagDefinitionOptions{
			ClosedByChildren: children,
			ClosedByParent:   tag != "thead" && tag != "dt",
			ContentType:      TagContentTypeParsableData,
		})
	}

	tagDefinitions["pre"] = NewTagDefinition(TagDefinitionOptions{IgnoreFirstLf: true, ContentType: TagContentTypeParsableData})
	tagDefinitions["listing"] = NewTagDefinition(TagDefinitionOptions{IgnoreFirstLf: true, ContentType: TagContentTypeParsableData})
	tagDefinitions["style"] = NewTagDefinition(TagDefinitionOptions{ContentType: TagContentTypeRawText})
	tagDefinitions["script"] = NewTagDefinition(TagDefinitionOptions{ContentType: TagContentTypeRawText})
	tagDefinitions["markdown"] = NewTagDefinition(TagDefinitionOptions{ContentType: TagContentTypeRawText})
	tagDefinitions["title"] = NewTagDefinition(TagDefinitionOptions{ContentType: TagContentTypeEscapableRawText})
	tagDefinitions["textarea"] = NewTagDefinition(TagDefinitionOptions{
		ContentType:   TagContentTypeEscapableRawText,
		IgnoreFirstLf: true,
	})
}
