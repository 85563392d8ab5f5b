package domain

// Passage is a unit of retrievable knowledge: a chunk of document text plus
// the source metadata the indexer attached to it.
type Passage struct {
	Content  string
	Metadata map[string]string
}

// ScoredPassage pairs a passage with the raw index distance for a query.
// Similarity is derived as max(0, 1 - distance/2).
type ScoredPassage struct {
	Passage  Passage
	Distance float64
}

// Similarity converts the index distance to the bounded [0,1] score used by
// the product matcher.
func (s ScoredPassage) Similarity() float64 {
	sim := 1 - s.Distance/2
	if sim < 0 {
		return 0
	}
	return sim
}
