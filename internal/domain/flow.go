package domain

// Node id prefixes for the three flow graph layers. Prefixing keeps identical
// display names in different layers from colliding into one graph node, which
// would create illegal cycles in the Sankey layout.
const (
	FlowPrefixGenre = "g_"
	FlowPrefixTier  = "r_"
	FlowPrefixMovie = "m_"
)

// OthersGenre is the bucket for genres outside the current top-N list.
const OthersGenre = "Others"

// FlowNode is one node of the three-layer flow graph.
type FlowNode struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FlowLink is one aggregated edge of the flow graph. There is exactly one link
// per ordered (Source, Target) pair; Value counts the records flowing through it.
type FlowLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Value  int    `json:"value"`
}

// FlowGraph is the Sankey structure: genre -> rating tier -> movie status.
type FlowGraph struct {
	Nodes []FlowNode `json:"nodes"`
	Links []FlowLink `json:"links"`
}

// GenreNodeID returns the flow node id for a (possibly bucketed) genre.
func GenreNodeID(genre string) string {
	return FlowPrefixGenre + genre
}

// TierNodeID returns the flow node id for a rating tier.
func TierNodeID(t RatingTier) string {
	return FlowPrefixTier + t.key()
}

// MovieNodeID returns the flow node id for a movie-adaptation status.
func MovieNodeID(adapted bool) string {
	if adapted {
		return FlowPrefixMovie + "Adapted"
	}
	return FlowPrefixMovie + "NotAdapted"
}

// MovieNodeName returns the display label for a movie-adaptation status.
func MovieNodeName(adapted bool) string {
	if adapted {
		return "Adapted to Movie"
	}
	return "Not Adapted"
}

// key is the compact tier identifier used in flow node ids.
func (t RatingTier) key() string {
	switch t {
	case TierAcclaimed:
		return "Acclaimed"
	case TierHighlyRated:
		return "HighlyRated"
	case TierWellRated:
		return "WellRated"
	case TierAverage:
		return "Average"
	default:
		return "Unknown"
	}
}

// HasNode reports whether the graph contains a node with the given id.
func (g *FlowGraph) HasNode(id string) bool {
	for _, n := range g.Nodes {
		if n.ID == id {
			return true
		}
	}
	return false
}
