package service

import (
	"context"
	"log/slog"
	"slices"

	"github.com/bookscape/bookscape-server/internal/selection"
	"github.com/bookscape/bookscape-server/internal/sse"
	"github.com/bookscape/bookscape-server/internal/store"
	"github.com/bookscape/bookscape-server/internal/validation"
)

// SelectionService wraps the coordinator with the derived highlight set and
// fans state changes out to connected views over SSE.
type SelectionService struct {
	coordinator *selection.Coordinator
	dataset     *DatasetService
	emitter     store.EventEmitter
	validator   *validation.Validator
	logger      *slog.Logger
}

// SelectionView is the selection state plus the derived highlight set, as
// returned to clients after every query or transition.
type SelectionView struct {
	State       selection.State `json:"state"`
	Highlighted []int           `json:"highlighted"`
}

type selectGenreRequest struct {
	Genre string `json:"genre" validate:"max=100"`
}

type applyBrushRequest struct {
	IDs []int `json:"ids" validate:"max=100000,dive,min=0"`
}

type selectNodeRequest struct {
	NodeID string `json:"node_id" validate:"omitempty,max=100,startswith=g_|startswith=r_|startswith=m_"`
}

// NewSelectionService creates a selection service. The coordinator's
// listeners are not used here; the service emits its own events so each
// carries the derived highlight set.
func NewSelectionService(
	coordinator *selection.Coordinator,
	dataset *DatasetService,
	emitter store.EventEmitter,
	logger *slog.Logger,
) *SelectionService {
	if emitter == nil {
		emitter = store.NewNoopEmitter()
	}
	return &SelectionService{
		coordinator: coordinator,
		dataset:     dataset,
		emitter:     emitter,
		validator:   validation.New(),
		logger:      logger,
	}
}

// Get returns the current selection state and highlight set.
func (s *SelectionService) Get(_ context.Context) SelectionView {
	return s.view(s.coordinator.State())
}

// SelectGenre sets or clears (nil) the genre filter.
func (s *SelectionService) SelectGenre(_ context.Context, genre *string) (SelectionView, error) {
	req := selectGenreRequest{}
	if genre != nil {
		req.Genre = *genre
	}
	if err := s.validator.Validate(req); err != nil {
		return SelectionView{}, err
	}
	return s.changed(s.coordinator.SelectGenre(genre)), nil
}

// Brush replaces the brushed record-id set; empty clears the brush.
func (s *SelectionService) Brush(_ context.Context, ids []int) (SelectionView, error) {
	if err := s.validator.Validate(applyBrushRequest{IDs: ids}); err != nil {
		return SelectionView{}, err
	}
	return s.changed(s.coordinator.ApplyBrush(ids)), nil
}

// SelectNode toggles the flow node selection. The node id must carry one of
// the flow layer prefixes.
func (s *SelectionService) SelectNode(_ context.Context, nodeID *string) (SelectionView, error) {
	req := selectNodeRequest{}
	if nodeID != nil {
		req.NodeID = *nodeID
	}
	if err := s.validator.Validate(req); err != nil {
		return SelectionView{}, err
	}
	return s.changed(s.coordinator.SelectFlowNode(nodeID)), nil
}

// Reset clears all selection state.
func (s *SelectionService) Reset(_ context.Context) SelectionView {
	return s.changed(s.coordinator.Reset())
}

func (s *SelectionService) changed(state selection.State) SelectionView {
	view := s.view(state)
	s.emitter.Emit(sse.NewEvent(sse.EventSelectionChanged, view))
	return view
}

func (s *SelectionService) view(state selection.State) SelectionView {
	records, top, _ := s.dataset.Snapshot()
	highlight := selection.HighlightSet(state, records, top)

	ids := make([]int, 0, len(highlight))
	for id := range highlight {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	return SelectionView{State: state, Highlighted: ids}
}
