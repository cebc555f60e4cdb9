package aggregate

import (
	"slices"

	"github.com/bookscape/bookscape-server/internal/domain"
)

// BuildFlowGraph derives the three-layer Sankey structure
// (genre -> rating tier -> movie status) from the records.
//
// Genres outside topGenres are bucketed into "Others". Records with an empty
// genre or a zero rating are skipped entirely, not bucketed. Each distinct
// (source, target) pair yields exactly one link carrying the aggregated count.
// Nodes and links are emitted in first-encountered order so repeated calls on
// the same input produce identical graphs.
func BuildFlowGraph(records []domain.BookRecord, topGenres []string) domain.FlowGraph {
	top := make(map[string]bool, len(topGenres))
	for _, g := range topGenres {
		top[g] = true
	}

	var (
		nodes     []domain.FlowNode
		nodeSeen  = make(map[string]bool)
		linkOrder []linkKey
		linkVals  = make(map[linkKey]int)
	)

	addNode := func(id, name string) {
		if nodeSeen[id] {
			return
		}
		nodeSeen[id] = true
		nodes = append(nodes, domain.FlowNode{ID: id, Name: name})
	}
	addLink := func(source, target string) {
		key := linkKey{source, target}
		if _, ok := linkVals[key]; !ok {
			linkOrder = append(linkOrder, key)
		}
		linkVals[key]++
	}

	for i := range records {
		rec := &records[i]
		if rec.Genre == "" || rec.RatingAverage <= 0 {
			continue
		}

		genre := rec.Genre
		if !top[genre] {
			genre = domain.OthersGenre
		}
		tier := domain.TierFor(rec.RatingAverage)

		genreID := domain.GenreNodeID(genre)
		tierID := domain.TierNodeID(tier)
		movieID := domain.MovieNodeID(rec.AdaptedToMovie)

		addNode(genreID, genre)
		addNode(tierID, tier.Label())
		addNode(movieID, domain.MovieNodeName(rec.AdaptedToMovie))

		addLink(genreID, tierID)
		addLink(tierID, movieID)
	}

	links := make([]domain.FlowLink, 0, len(linkOrder))
	for _, key := range linkOrder {
		links = append(links, domain.FlowLink{
			Source: key.source,
			Target: key.target,
			Value:  linkVals[key],
		})
	}

	return domain.FlowGraph{Nodes: nodes, Links: links}
}

type linkKey struct {
	source string
	target string
}

// RecordFlowNodeIDs returns the (genre, tier, movie) node id triple a record
// contributes to, or ok=false when the record is skipped by the flow graph.
// The selection coordinator uses this to resolve node selections back to
// record ids.
func RecordFlowNodeIDs(rec *domain.BookRecord, topGenres []string) (genreID, tierID, movieID string, ok bool) {
	if rec.Genre == "" || rec.RatingAverage <= 0 {
		return "", "", "", false
	}

	genre := rec.Genre
	if !slices.Contains(topGenres, genre) {
		genre = domain.OthersGenre
	}
	return domain.GenreNodeID(genre),
		domain.TierNodeID(domain.TierFor(rec.RatingAverage)),
		domain.MovieNodeID(rec.AdaptedToMovie),
		true
}
