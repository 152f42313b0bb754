package ml_parser

import (
	"fmt"
	"strings"

	"github.com/russross/blackfriday/v2"
	"golang.org/x/net/html"

	"wick-go/packages/compiler/src/util"
)

const markdownEndTag = "</markdown>"

// RenderMarkdown converts the body of a <markdown> element to HTML.
func RenderMarkdown(content string) string {
	out := blackfriday.Run([]byte(dedent(content)), blackfriday.WithExtensions(blackfriday.CommonExtensions))
	return strings.TrimSpace(string(out))
}

// markdown replaces a <markdown> element with the nodes its rendered body
// produces. The tokenizer restarts after the closing tag.
func (b *treeBuilder) markdown(startSpan *util.ParseSourceSpan) {
	rest := b.src[b.offset:]
	end := strings.Index(strings.ToLower(rest), markdownEndTag)
	consumed := end + len(markdownEndTag)
	if end < 0 {
		b.errors.Add(startSpan, "Unclosed element <markdown>")
		end = len(rest)
		consumed = end
	}

	rendered := RenderMarkdown(rest[:end])
	log.Debugf("rendered markdown block at %s", startSpan.Start)

	url := fmt.Sprintf("%s#markdown@%d", b.file.URL, b.offset)
	sub := newTreeBuilder(util.NewParseSourceFile(rendered, url), b.options)
	sub.build()
	b.errors.Append(sub.errors...)
	for _, node := range sub.roots {
		b.addChild(node)
	}

	b.offset += consumed
	b.z = html.NewTokenizer(strings.NewReader(b.src[b.offset:]))
}

func dedent(text string) string {
	lines := strings.Split(text, "\n")
	indent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " \t"))
		if indent < 0 || n < indent {
			indent = n
		}
	}
	if indent <= 0 {
		return text
	}
	for i, line := range lines {
		if len(line) >= indent {
			lines[i] = line[indent:]
		} else {
			lines[i] = strings.TrimLeft(line, " \t")
		}
	}
	return strings.Join(lines, "\n")
}
