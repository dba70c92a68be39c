package processor

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ZaguanLabs/autotranslate"
	"golang.org/x/net/html"
)

// HTMLProcessor translates the text nodes of HTML leaves, such as rich-text
// descriptions stored in entity fields, leaving tags and attributes intact.
type HTMLProcessor struct {
	ignoredTags map[string]bool
}

// NewHTMLProcessor creates a new HTML processor with default ignored tags.
func NewHTMLProcessor() *HTMLProcessor {
	return &HTMLProcessor{
		ignoredTags: autotranslate.IgnoredTags,
	}
}

// NewHTMLProcessorWithIgnoredTags creates a new HTML processor with custom ignored tags.
func NewHTMLProcessorWithIgnoredTags(tags []string) *HTMLProcessor {
	ignored := make(map[string]bool)
	for _, tag := range tags {
		ignored[strings.ToLower(tag)] = true
	}
	return &HTMLProcessor{
		ignoredTags: ignored,
	}
}

// parsedHTML holds the parsed document.
type parsedHTML struct {
	doc      *goquery.Document
	fragment bool // Serialize only the body's children
}

// Accepts reports whether content looks like an HTML fragment or document.
func (p *HTMLProcessor) Accepts(content string) bool {
	trimmed := strings.TrimSpace(content)
	if len(trimmed) < 3 || trimmed[0] != '<' || trimmed[len(trimmed)-1] != '>' {
		return false
	}
	return strings.Contains(trimmed, "</") || strings.Contains(trimmed, "/>")
}

// isDocument reports whether content carries its own document structure.
func isDocument(content string) bool {
	lower := strings.ToLower(content)
	return strings.Contains(lower, "<html") || strings.Contains(lower, "<body")
}

// Extract parses HTML and returns one node per distinct trimmed text.
func (p *HTMLProcessor) Extract(content string) (interface{}, []autotranslate.TextNode, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, nil, &autotranslate.ProcessorError{
			Message:     "failed to parse HTML",
			Cause:       err,
			ContentType: "html",
		}
	}

	var nodes []autotranslate.TextNode
	seen := make(map[string]bool)

	p.eachText(doc, func(n *html.Node, trimmed string) {
		hash := autotranslate.HashText(trimmed)
		if seen[hash] {
			return
		}
		seen[hash] = true

		node := autotranslate.TextNode{
			ID:       fmt.Sprintf("node-%d", len(nodes)),
			Text:     trimmed,
			Hash:     hash,
			NodeType: "html_text",
			Context:  ancestry(n),
			Metadata: map[string]string{},
		}
		if n.Parent != nil {
			node.Metadata["parent_tag"] = n.Parent.Data
		}
		nodes = append(nodes, node)
	})

	return &parsedHTML{doc: doc, fragment: !isDocument(content)}, nodes, nil
}

// Apply writes translations, keyed by node hash, back into the document.
func (p *HTMLProcessor) Apply(parsed interface{}, nodes []autotranslate.TextNode, translations map[string]string) (string, error) {
	ph, ok := parsed.(*parsedHTML)
	if !ok {
		return "", &autotranslate.ProcessorError{
			Message:     "invalid parsed content type",
			ContentType: "html",
		}
	}

	p.eachText(ph.doc, func(n *html.Node, trimmed string) {
		if translated, ok := translations[autotranslate.HashText(trimmed)]; ok {
			n.Data = preserveWhitespace(n.Data, translated)
		}
	})

	var (
		out string
		err error
	)
	if ph.fragment {
		out, err = ph.doc.Find("body").Html()
	} else {
		out, err = ph.doc.Html()
	}
	if err != nil {
		return "", &autotranslate.ProcessorError{
			Message:     "failed to serialize HTML",
			Cause:       err,
			ContentType: "html",
		}
	}

	return out, nil
}

// ContentType returns "html".
func (p *HTMLProcessor) ContentType() string {
	return "html"
}

// eachText calls fn for every non-blank text node outside ignored elements
// and elements marked data-no-translate.
func (p *HTMLProcessor) eachText(doc *goquery.Document, fn func(n *html.Node, trimmed string)) {
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if p.ignoredTags[strings.ToLower(n.Data)] {
				return
			}
			for _, attr := range n.Attr {
				if attr.Key == "data-no-translate" {
					return
				}
			}
		}

		if n.Type == html.TextNode {
			if trimmed := strings.TrimSpace(n.Data); trimmed != "" {
				fn(n, trimmed)
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	for _, n := range doc.Nodes {
		walk(n)
	}
}

// ancestry renders the element path of a text node, outermost first,
// without the implied html and body elements.
func ancestry(n *html.Node) string {
	var path []string
	for a := n.Parent; a != nil; a = a.Parent {
		if a.Type == html.ElementNode && a.Data != "html" && a.Data != "body" {
			path = append(path, a.Data)
		}
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return strings.Join(path, " > ")
}

// preserveWhitespace preserves the original leading/trailing whitespace.
func preserveWhitespace(original, translated string) string {
	leading := original[:len(original)-len(strings.TrimLeft(original, " \t\n\r"))]
	trailing := original[len(strings.TrimRight(original, " \t\n\r")):]
	return leading + translated + trailing
}

var _ ContentProcessor = (*HTMLProcessor)(nil)
