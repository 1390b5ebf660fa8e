package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

type fieldSpec struct {
	name     string
	analyzer string // empty for numeric fields
	store    bool
	vectors  bool // term vectors, needed for highlighting
}

// bookFields describes every indexed field of SearchDocument.ToMap.
// Stored fields come back on hits; keyword fields filter and facet.
var bookFields = []fieldSpec{
	{name: "title", analyzer: en.AnalyzerName, store: true, vectors: true},
	{name: "author", analyzer: simple.Name, store: true, vectors: true}, // names are not stemmed
	{name: "description", analyzer: en.AnalyzerName},
	{name: "synopsis", analyzer: en.AnalyzerName},
	{name: "id", analyzer: keyword.Name},
	{name: "genre", analyzer: keyword.Name, store: true},
	{name: "genre_slug", analyzer: keyword.Name, store: true},
	{name: "read", analyzer: keyword.Name, store: true},
	{name: "pages", store: true},
	{name: "added_at", store: true},
}

func buildIndexMapping() mapping.IndexMapping {
	doc := bleve.NewDocumentMapping()
	for _, f := range bookFields {
		var fm *mapping.FieldMapping
		if f.analyzer == "" {
			fm = bleve.NewNumericFieldMapping()
		} else {
			fm = bleve.NewTextFieldMapping()
			fm.Analyzer = f.analyzer
			fm.IncludeTermVectors = f.vectors
		}
		fm.Store = f.store
		doc.AddFieldMappingsAt(f.name, fm)
	}

	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = en.AnalyzerName
	im.DefaultMapping = doc
	return im
}
