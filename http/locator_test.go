package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mrtoronto/patscan"
	patscanhttp "github.com/mrtoronto/patscan/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Story: Search Discovery
// A keyword search reports its result count and every result has a
// document URL derived from its position.

func TestLocator_Locate(t *testing.T) {
	t.Parallel()

	searchServer := func(t *testing.T, body string, status int) (*httptest.Server, *string) {
		t.Helper()
		var query string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			query = r.URL.RawQuery
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
		}))
		t.Cleanup(server.Close)
		return server, &query
	}

	t.Run("generates one reference per result", func(t *testing.T) {
		t.Parallel()

		// Given a search reporting three results
		server, query := searchServer(t, "<html><body>Results of Search ... <b>DOCS: 3</b></body></html>", http.StatusOK)
		l := patscanhttp.NewLocator(
			patscanhttp.WithSearchURL(server.URL+"/search?TERM1={keyword}"),
			patscanhttp.WithDocumentURL("https://patft.example.com/doc?s1={keyword}&r={ordinal}&f=G"),
		)

		// When I locate the results for a keyword with spaces
		refs, total, err := l.Locate(context.Background(), "solar cell")

		// Then the search was run with the escaped keyword
		require.NoError(t, err)
		assert.Equal(t, "TERM1=solar+cell", *query)

		// And every result position has a reference
		assert.Equal(t, 3, total)
		require.Len(t, refs, 3)
		assert.Equal(t, patscan.Reference{URL: "https://patft.example.com/doc?s1=solar+cell&r=1&f=G", Ordinal: 1}, refs[0])
		assert.Equal(t, 3, refs[2].Ordinal)
		for _, ref := range refs {
			parsed, err := patscan.ParseReference(ref.URL)
			require.NoError(t, err)
			assert.Equal(t, ref.Ordinal, parsed.Ordinal)
		}
	})

	t.Run("zero results yields no references", func(t *testing.T) {
		t.Parallel()

		server, _ := searchServer(t, "DOCS: 0", http.StatusOK)
		l := patscanhttp.NewLocator(patscanhttp.WithSearchURL(server.URL + "/?q={keyword}"))

		refs, total, err := l.Locate(context.Background(), "widget")

		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, refs)
	})

	t.Run("reads ordinals from document URLs", func(t *testing.T) {
		t.Parallel()

		// Given a document template whose position parameter is fixed
		server, _ := searchServer(t, "DOCS: 2", http.StatusOK)
		l := patscanhttp.NewLocator(
			patscanhttp.WithSearchURL(server.URL+"/?q={keyword}"),
			patscanhttp.WithDocumentURL("https://patft.example.com/doc?s1={keyword}&r=7&n={ordinal}"),
		)

		refs, total, err := l.Locate(context.Background(), "widget")

		// Then every reference carries the position found in its URL
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		require.Len(t, refs, 2)
		assert.Equal(t, 7, refs[0].Ordinal)
		assert.Equal(t, 7, refs[1].Ordinal)
		assert.Equal(t, "https://patft.example.com/doc?s1=widget&r=7&n=2", refs[1].URL)
	})

	t.Run("document template without position is invalid", func(t *testing.T) {
		t.Parallel()

		server, _ := searchServer(t, "DOCS: 4", http.StatusOK)
		l := patscanhttp.NewLocator(
			patscanhttp.WithSearchURL(server.URL+"/?q={keyword}"),
			patscanhttp.WithDocumentURL("https://patft.example.com/doc?s1={keyword}&n={ordinal}"),
		)

		refs, _, err := l.Locate(context.Background(), "widget")

		assert.Equal(t, patscan.EINVALID, patscan.ErrorCode(err))
		assert.Nil(t, refs)
	})

	t.Run("missing result count is unavailable", func(t *testing.T) {
		t.Parallel()

		server, _ := searchServer(t, "<html><body>No patents have matched your query</body></html>", http.StatusOK)
		l := patscanhttp.NewLocator(patscanhttp.WithSearchURL(server.URL + "/?q={keyword}"))

		_, _, err := l.Locate(context.Background(), "widget")

		assert.Equal(t, patscan.EUNAVAILABLE, patscan.ErrorCode(err))
	})

	t.Run("failed search is unavailable", func(t *testing.T) {
		t.Parallel()

		server, _ := searchServer(t, "", http.StatusInternalServerError)
		l := patscanhttp.NewLocator(patscanhttp.WithSearchURL(server.URL + "/?q={keyword}"))

		_, _, err := l.Locate(context.Background(), "widget")

		assert.Equal(t, patscan.EUNAVAILABLE, patscan.ErrorCode(err))
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, _, err := patscanhttp.NewLocator().Locate(ctx, "widget")

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestResultCount(t *testing.T) {
	t.Parallel()

	n, err := patscanhttp.ResultCount("Hits 1 through 50 out of 1234\n<strong>DOCS: 1234</strong>")
	require.NoError(t, err)
	assert.Equal(t, 1234, n)

	_, err = patscanhttp.ResultCount("DOCS: many")
	assert.Equal(t, patscan.EUNAVAILABLE, patscan.ErrorCode(err))
}
