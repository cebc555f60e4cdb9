// Package selection coordinates cross-view linked selection.
//
// A selection made in one view (clicking a genre bar, brushing the scatter
// plot, clicking a flow graph node) filters or highlights the other views.
// The Coordinator is the single source of truth for that state; views never
// mutate it directly, they funnel every interaction through the transition
// methods here.
package selection

import (
	"log/slog"
	"sync"

	"github.com/bookscape/bookscape-server/internal/aggregate"
	"github.com/bookscape/bookscape-server/internal/domain"
)

// State is a snapshot of the current selection.
//
// At most one of {BrushedIDs non-empty, SelectedFlowNodeID set} is active at a
// time: setting one clears the other. Changing the genre filter clears both,
// since brush and node selections are scoped to the filtered record set and
// would be stale under a different filter.
type State struct {
	SelectedGenre      *string `json:"selected_genre,omitempty"`
	BrushedIDs         []int   `json:"brushed_ids,omitempty"`
	SelectedFlowNodeID *string `json:"selected_flow_node_id,omitempty"`
}

// GenreFilter returns the active genre filter as a slice suitable for
// aggregate.FilterByGenres (empty when no genre is selected).
func (s State) GenreFilter() []string {
	if s.SelectedGenre == nil || *s.SelectedGenre == "" {
		return nil
	}
	return []string{*s.SelectedGenre}
}

// clone copies the state so callers can hold it without racing the coordinator.
func (s State) clone() State {
	out := State{}
	if s.SelectedGenre != nil {
		g := *s.SelectedGenre
		out.SelectedGenre = &g
	}
	if s.SelectedFlowNodeID != nil {
		n := *s.SelectedFlowNodeID
		out.SelectedFlowNodeID = &n
	}
	if len(s.BrushedIDs) > 0 {
		out.BrushedIDs = append([]int(nil), s.BrushedIDs...)
	}
	return out
}

// Listener is notified after every state transition with the new state.
type Listener func(State)

// Coordinator holds the selection state and serializes transitions.
//
// The original interaction model is single-threaded; concurrent HTTP handlers
// make that untrue here, so a mutex serializes transitions and derived queries
// to preserve the same observable semantics.
type Coordinator struct {
	mu        sync.RWMutex
	state     State
	listeners []Listener
	logger    *slog.Logger
}

// NewCoordinator creates a coordinator with empty selection state.
func NewCoordinator(logger *slog.Logger) *Coordinator {
	return &Coordinator{logger: logger}
}

// Subscribe registers a listener invoked after each transition.
// Listeners run synchronously while holding no coordinator locks.
func (c *Coordinator) Subscribe(l Listener) {
	c.mu.Lock()
	c.listeners = append(c.listeners, l)
	c.mu.Unlock()
}

// State returns a copy of the current selection state.
func (c *Coordinator) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.clone()
}

// SelectGenre sets the genre filter (nil clears it) and clears both the brush
// and the flow node selection. Idempotent when the genre is unchanged, but the
// clearing of dependent selections still applies.
func (c *Coordinator) SelectGenre(genre *string) State {
	c.mu.Lock()
	if genre != nil && *genre == "" {
		genre = nil
	}
	c.state.SelectedGenre = genre
	c.state.BrushedIDs = nil
	c.state.SelectedFlowNodeID = nil
	next := c.state.clone()
	c.mu.Unlock()

	c.logger.Debug("genre selected", "genre", genreLabel(genre))
	c.notify(next)
	return next
}

// ApplyBrush replaces the brushed record-id set (empty means "brush cleared")
// and clears any flow node selection.
func (c *Coordinator) ApplyBrush(ids []int) State {
	c.mu.Lock()
	if len(ids) == 0 {
		c.state.BrushedIDs = nil
	} else {
		c.state.BrushedIDs = dedupe(ids)
	}
	c.state.SelectedFlowNodeID = nil
	next := c.state.clone()
	c.mu.Unlock()

	c.logger.Debug("brush applied", "count", len(next.BrushedIDs))
	c.notify(next)
	return next
}

// SelectFlowNode toggles the flow node selection: selecting the already
// selected node clears it, selecting any other node replaces it and clears
// the brush. A nil or empty id clears the selection.
func (c *Coordinator) SelectFlowNode(nodeID *string) State {
	c.mu.Lock()
	switch {
	case nodeID == nil || *nodeID == "":
		c.state.SelectedFlowNodeID = nil
	case c.state.SelectedFlowNodeID != nil && *c.state.SelectedFlowNodeID == *nodeID:
		c.state.SelectedFlowNodeID = nil
	default:
		n := *nodeID
		c.state.SelectedFlowNodeID = &n
		c.state.BrushedIDs = nil
	}
	next := c.state.clone()
	c.mu.Unlock()

	c.logger.Debug("flow node selection", "node", genreLabel(next.SelectedFlowNodeID))
	c.notify(next)
	return next
}

// Reset clears the entire selection state.
func (c *Coordinator) Reset() State {
	c.mu.Lock()
	c.state = State{}
	next := c.state.clone()
	c.mu.Unlock()

	c.logger.Debug("selection reset")
	c.notify(next)
	return next
}

// HighlightSet computes the record ids currently emphasized across views.
//
// Brushed ids win verbatim when present; otherwise a selected flow node
// matches every record whose derived node triple contains it; otherwise the
// result is empty, which renderers interpret as "no highlight, draw at base
// opacity" rather than "highlight nothing".
//
// Stale ids (e.g. a brush kept across a dataset reload) are not an error;
// they simply match no records.
func HighlightSet(state State, records []domain.BookRecord, topGenres []string) map[int]bool {
	out := make(map[int]bool)

	if len(state.BrushedIDs) > 0 {
		for _, id := range state.BrushedIDs {
			out[id] = true
		}
		return out
	}

	if state.SelectedFlowNodeID == nil {
		return out
	}
	node := *state.SelectedFlowNodeID

	for i := range records {
		genreID, tierID, movieID, ok := aggregate.RecordFlowNodeIDs(&records[i], topGenres)
		if !ok {
			continue
		}
		if node == genreID || node == tierID || node == movieID {
			out[records[i].ID] = true
		}
	}
	return out
}

func (c *Coordinator) notify(state State) {
	c.mu.RLock()
	listeners := append([]Listener(nil), c.listeners...)
	c.mu.RUnlock()

	for _, l := range listeners {
		l(state)
	}
}

func dedupe(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func genreLabel(s *string) string {
	if s == nil {
		return "<none>"
	}
	return *s
}
