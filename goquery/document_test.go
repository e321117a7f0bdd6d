package goquery_test

import (
	"strings"
	"testing"

	gq "github.com/PuerkitoBio/goquery"
	"github.com/mrtoronto/patscan"
	"github.com/mrtoronto/patscan/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const patentPage = `<html><head><title>United States Patent: 10123456</title></head>
<body>
<table width="100%"><tr><td>Search</td></tr></table>
<table width="100%">
<tr><td>United States Patent </td><td>10,123,456</td></tr>
<tr><td>Smith, et al.</td><td>January 5, 2021</td></tr>
</table>
<table width="100%"><tr><td>Inventors:</td><td>Smith; Jane<br>(Boston, MA)</td></tr></table>
<p>  A widget
   with a frame. </p>
<table width="90%"><tr><td>.Smith, Widgets Quarterly<br>.Jones, Frames</td></tr></table>
<script>var x = 1;</script>
</body></html>`

func TestDecomposer_Decompose(t *testing.T) {
	t.Parallel()

	t.Run("splits page into blocks", func(t *testing.T) {
		t.Parallel()

		doc, err := goquery.NewDecomposer().Decompose(patentPage)

		require.NoError(t, err)
		assert.Equal(t, patentPage, doc.Content)
		require.Len(t, doc.Blocks, patscan.MinBlocks)
		assert.Equal(t, "Search", doc.Blocks[0])
		assert.Equal(t, "United States Patent\t10,123,456\nSmith, et al.\tJanuary 5, 2021", doc.Blocks[1])
		assert.Equal(t, "Inventors:\tSmith; Jane\n(Boston, MA)", doc.Blocks[2])
		assert.Empty(t, doc.Blocks[3])
		assert.Empty(t, doc.Blocks[5])
	})

	t.Run("collects cells and paragraphs", func(t *testing.T) {
		t.Parallel()

		doc, err := goquery.NewDecomposer().Decompose(patentPage)

		require.NoError(t, err)
		assert.Len(t, doc.Cells, 8)
		assert.Equal(t, "United States Patent", doc.Cells[1])
		assert.Equal(t, []string{"A widget with a frame."}, doc.Paragraphs)
	})

	t.Run("finds reference table", func(t *testing.T) {
		t.Parallel()

		doc, err := goquery.NewDecomposer().Decompose(patentPage)

		require.NoError(t, err)
		assert.True(t, doc.HasReferenceTable)
		assert.Equal(t, ".Smith, Widgets Quarterly\n.Jones, Frames", doc.ReferenceTable)
	})

	t.Run("empty markup yields padded document", func(t *testing.T) {
		t.Parallel()

		doc, err := goquery.NewDecomposer().Decompose("")

		require.NoError(t, err)
		assert.Equal(t, make([]string, patscan.MinBlocks), doc.Blocks)
		assert.Empty(t, doc.Paragraphs)
		assert.False(t, doc.HasReferenceTable)
	})
}

func TestText(t *testing.T) {
	t.Parallel()

	render := func(t *testing.T, markup string) string {
		t.Helper()
		d, err := gq.NewDocumentFromReader(strings.NewReader(markup))
		require.NoError(t, err)
		return goquery.Text(d.Find("body"))
	}

	t.Run("skips scripts and styles", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "a\nb", render(t, "<p>a</p><script>x()</script><style>p{}</style><p>b</p>"))
	})

	t.Run("breaks lines on br", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "a\nb", render(t, "a<br>b"))
	})

	t.Run("empty selection", func(t *testing.T) {
		t.Parallel()
		d, err := gq.NewDocumentFromReader(strings.NewReader("<p>a</p>"))
		require.NoError(t, err)
		assert.Empty(t, goquery.Text(d.Find("table")))
	})
}
