package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Sort orders.
const (
	SortRelevance = "relevance"
	SortTitle     = "title"
	SortAuthor    = "author"
	SortRecent    = "recent"
	SortPages     = "pages"
)

// SearchParams configures a search query.
type SearchParams struct {
	Query     string
	GenreSlug string // Exact genre filter
	Read      *bool  // nil = both

	Limit  int
	Offset int

	SortBy    string // One of the Sort* constants
	SortOrder string // "asc", "desc"

	IncludeFacets bool
	Highlight     bool
}

// DefaultSearchParams returns sensible defaults.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		Limit:         20,
		SortBy:        SortRelevance,
		SortOrder:     "desc",
		IncludeFacets: true,
		Highlight:     true,
	}
}

// SearchResult represents the search results.
type SearchResult struct {
	Query  string       `json:"query"`
	Hits   []SearchHit  `json:"hits"`
	Facets SearchFacets `json:"facets,omitzero"`
	Total  uint64       `json:"total"`
	TookMs int64        `json:"took_ms"`
}

// SearchHit represents a single search result.
type SearchHit struct {
	Highlights map[string]string `json:"highlights,omitempty"`
	ID         string            `json:"id"`
	Title      string            `json:"title"`
	Author     string            `json:"author,omitempty"`
	Genre      string            `json:"genre,omitempty"`
	Score      float64           `json:"score"`
	Pages      int               `json:"pages,omitempty"`
	Read       bool              `json:"read"`
}

// SearchFacets contains facet counts.
type SearchFacets struct {
	Genres []FacetCount `json:"genres,omitempty"`
	Read   []FacetCount `json:"read,omitempty"`
}

// FacetCount represents a facet value and its count.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Search executes a search query.
func (s *SearchIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	if params.Limit <= 0 {
		params.Limit = DefaultSearchParams().Limit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	searchRequest := bleve.NewSearchRequestOptions(buildSearchQuery(params), params.Limit, params.Offset, false)
	addSorting(searchRequest, params)

	if params.IncludeFacets {
		searchRequest.AddFacet("genre_slug", bleve.NewFacetRequest("genre_slug", 20))
		searchRequest.AddFacet("read", bleve.NewFacetRequest("read", 2))
	}

	if params.Highlight {
		searchRequest.Highlight = bleve.NewHighlight()
		searchRequest.Highlight.AddField("title")
		searchRequest.Highlight.AddField("author")
	}

	searchRequest.Fields = []string{"title", "author", "genre", "pages", "read"}

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &SearchResult{
		Query:  params.Query,
		Total:  searchResult.Total,
		TookMs: searchResult.Took.Milliseconds(),
		Hits:   make([]SearchHit, 0, len(searchResult.Hits)),
	}

	for _, hit := range searchResult.Hits {
		searchHit := SearchHit{
			ID:    hit.ID,
			Score: hit.Score,
		}

		if t, ok := hit.Fields["title"].(string); ok {
			searchHit.Title = t
		}
		if a, ok := hit.Fields["author"].(string); ok {
			searchHit.Author = a
		}
		if g, ok := hit.Fields["genre"].(string); ok {
			searchHit.Genre = g
		}
		if p, ok := hit.Fields["pages"].(float64); ok {
			searchHit.Pages = int(p)
		}
		if r, ok := hit.Fields["read"].(string); ok {
			searchHit.Read = r == readTerm(true)
		}

		if len(hit.Fragments) > 0 {
			searchHit.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					searchHit.Highlights[field] = fragments[0]
				}
			}
		}

		result.Hits = append(result.Hits, searchHit)
	}

	if params.IncludeFacets {
		result.Facets = extractFacets(searchResult)
	}

	return result, nil
}

// MatchIDs returns the IDs of every document matching params, ignoring
// Limit and Offset.
func (s *SearchIndex) MatchIDs(ctx context.Context, params SearchParams) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count, err := s.index.DocCount()
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}
	if count == 0 {
		return nil, nil
	}

	req := bleve.NewSearchRequestOptions(buildSearchQuery(params), int(count), 0, false)
	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	ids := make([]string, 0, len(res.Hits))
	for _, hit := range res.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}

// textBoosts weights each analysed field for free-text queries.
var textBoosts = []struct {
	field string
	boost float64
}{
	{"title", 3.0},
	{"author", 2.0},
	{"description", 1.0},
	{"synopsis", 0.5},
}

// buildSearchQuery ANDs the text, genre and read clauses; no clauses
// matches everything.
func buildSearchQuery(params SearchParams) query.Query {
	var clauses []query.Query

	if q := strings.TrimSpace(params.Query); q != "" {
		clauses = append(clauses, textQuery(q))
	}
	if params.GenreSlug != "" {
		clauses = append(clauses, termOn("genre_slug", params.GenreSlug))
	}
	if params.Read != nil {
		clauses = append(clauses, termOn("read", readTerm(*params.Read)))
	}

	switch len(clauses) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return clauses[0]
	default:
		return bleve.NewConjunctionQuery(clauses...)
	}
}

func textQuery(q string) query.Query {
	lower := strings.ToLower(q)
	alternatives := make([]query.Query, 0, len(textBoosts)+2)

	for _, tb := range textBoosts {
		m := bleve.NewMatchQuery(q)
		m.SetField(tb.field)
		m.SetBoost(tb.boost)
		alternatives = append(alternatives, m)
	}

	// One-edit typos in the title.
	fuzzy := bleve.NewFuzzyQuery(lower)
	fuzzy.SetField("title")
	fuzzy.SetFuzziness(1)
	fuzzy.SetBoost(0.8)
	alternatives = append(alternatives, fuzzy)

	// Partial words while typing.
	if len(lower) >= 2 {
		prefix := bleve.NewPrefixQuery(lower)
		prefix.SetField("title")
		prefix.SetBoost(0.5)
		alternatives = append(alternatives, prefix)
	}

	return bleve.NewDisjunctionQuery(alternatives...)
}

func termOn(field, term string) query.Query {
	tq := bleve.NewTermQuery(term)
	tq.SetField(field)
	return tq
}

// sortKeys lists the ascending sort fields per order; relevance is
// handled separately.
var sortKeys = map[string][]string{
	SortTitle:  {"title"},
	SortAuthor: {"author", "title"},
	SortRecent: {"added_at"},
	SortPages:  {"pages"},
}

// addSorting applies params.SortBy. Title and author default to ascending,
// recent and pages to descending, unless SortOrder says otherwise.
func addSorting(req *bleve.SearchRequest, params SearchParams) {
	keys, ok := sortKeys[params.SortBy]
	if !ok {
		req.SortBy([]string{"-_score"})
		return
	}

	desc := params.SortOrder == "desc"
	if params.SortBy == SortRecent || params.SortBy == SortPages {
		desc = params.SortOrder != "asc"
	}

	order := make([]string, len(keys))
	for i, k := range keys {
		if desc {
			k = "-" + k
		}
		order[i] = k
	}
	req.SortBy(order)
}

// extractFacets converts Bleve facets to our format.
func extractFacets(result *bleve.SearchResult) SearchFacets {
	facets := SearchFacets{}

	if genreFacet, ok := result.Facets["genre_slug"]; ok {
		for _, term := range genreFacet.Terms.Terms() {
			facets.Genres = append(facets.Genres, FacetCount{Value: term.Term, Count: term.Count})
		}
	}
	if readFacet, ok := result.Facets["read"]; ok {
		for _, term := range readFacet.Terms.Terms() {
			facets.Read = append(facets.Read, FacetCount{Value: term.Term, Count: term.Count})
		}
	}

	return facets
}
