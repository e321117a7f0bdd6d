// Package goquery decomposes static patent page markup into a
// patscan.RawDocument without a browser.
package goquery

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mrtoronto/patscan"
	"golang.org/x/net/html"
)

// Ensure Decomposer implements patscan.Decomposer at compile time.
var _ patscan.Decomposer = (*Decomposer)(nil)

// Decomposer splits markup into the blocks, cells and paragraphs of a
// RawDocument. Text is rendered the way a browser reports innerText:
// whitespace collapsed, one line per block element or <br>, table cells
// separated by tabs.
type Decomposer struct{}

// NewDecomposer creates a new Decomposer.
func NewDecomposer() *Decomposer {
	return &Decomposer{}
}

// Decompose parses markup into a normalized RawDocument.
func (d *Decomposer) Decompose(markup string) (*patscan.RawDocument, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, patscan.Errorf(patscan.EINVALID, "failed to parse HTML: %v", err)
	}

	raw := &patscan.RawDocument{
		Content:    markup,
		Blocks:     texts(doc.Find(patscan.BlockSelector)),
		Cells:      texts(doc.Find(patscan.CellSelector)),
		Paragraphs: texts(doc.Find(patscan.ParagraphSelector)),
	}
	if sel := doc.Find(patscan.ReferenceTableSelector).First(); sel.Length() > 0 {
		raw.ReferenceTable = Text(sel)
		raw.HasReferenceTable = true
	}
	raw.Normalize()
	return raw, nil
}

func texts(sel *goquery.Selection) []string {
	out := make([]string, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, Text(s))
	})
	return out
}

// blockElements start and end a line of rendered text.
var blockElements = map[string]bool{
	"address": true, "blockquote": true, "body": true, "center": true,
	"dd": true, "div": true, "dl": true, "dt": true, "form": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"hr": true, "li": true, "ol": true, "p": true, "pre": true,
	"table": true, "tbody": true, "tfoot": true, "thead": true, "tr": true, "ul": true,
}

// hiddenElements never contribute text.
var hiddenElements = map[string]bool{
	"head": true, "noscript": true, "script": true, "style": true, "template": true, "title": true,
}

var (
	spaceRun   = regexp.MustCompile(`[ \t\r\n\f]+`)
	paddedTabs = regexp.MustCompile(` *\t *`)
)

// Text renders the text of the first node in sel.
func Text(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	var b strings.Builder
	render(&b, sel.Nodes[0])
	return tidy(b.String())
}

func render(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(spaceRun.ReplaceAllString(n.Data, " "))
		return
	case html.ElementNode:
		if hiddenElements[n.Data] {
			return
		}
		if n.Data == "br" {
			b.WriteByte('\n')
			return
		}
	}

	block := n.Type == html.ElementNode && blockElements[n.Data]
	if block {
		b.WriteByte('\n')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		render(b, c)
	}
	switch {
	case block:
		b.WriteByte('\n')
	case n.Type == html.ElementNode && (n.Data == "td" || n.Data == "th") && hasNextCell(n):
		b.WriteByte('\t')
	}
}

func hasNextCell(n *html.Node) bool {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode && (s.Data == "td" || s.Data == "th") {
			return true
		}
	}
	return false
}

// tidy trims spaces around every line and drops empty lines.
func tidy(s string) string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.Trim(paddedTabs.ReplaceAllString(line, "\t"), " ")
		if strings.Trim(line, "\t") == "" {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
