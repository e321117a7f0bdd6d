package patscan

// MinBlocks is the number of blocks a normalized RawDocument always has.
const MinBlocks = 6

// CSS selectors locating the parts of a full-text patent page.
const (
	BlockSelector          = `body > table[width="100%"]`
	CellSelector           = `body > table > tbody > tr > td`
	ParagraphSelector      = `body > p`
	ReferenceTableSelector = `body > table[width="90%"]`
)

// RawDocument is the rendered content of one patent page.
type RawDocument struct {
	// Content is the full rendered markup.
	Content string

	// Blocks holds the text of the top-level full-width tables in page order.
	Blocks []string

	// Cells holds the text of the top-level table cells in page order.
	Cells []string

	// Paragraphs holds the text of the top-level paragraphs in page order.
	Paragraphs []string

	// ReferenceTable holds the text of the narrower table listing
	// non-patent references, if the page has one.
	ReferenceTable    string
	HasReferenceTable bool
}

// Normalize pads Blocks with empty strings up to MinBlocks.
func (d *RawDocument) Normalize() {
	for len(d.Blocks) < MinBlocks {
		d.Blocks = append(d.Blocks, "")
	}
}

// Block returns block i, or "" when the page has fewer blocks.
func (d *RawDocument) Block(i int) string {
	if i < 0 || i >= len(d.Blocks) {
		return ""
	}
	return d.Blocks[i]
}

// Decomposer turns rendered markup into a RawDocument.
type Decomposer interface {
	Decompose(html string) (*RawDocument, error)
}
