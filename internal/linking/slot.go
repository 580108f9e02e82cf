package linking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"worldsheet/internal/store"
)

// State is how a slot renders: nothing stored, a resolvable target, or a
// stored ref whose target no longer resolves.
type State int

const (
	StateUnlinked State = iota
	StateFresh
	StateStale
)

func (s State) String() string {
	switch s {
	case StateUnlinked:
		return "unlinked"
	case StateFresh:
		return "fresh"
	case StateStale:
		return "stale"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// WorksheetSource is the read side of the worksheet store.
type WorksheetSource interface {
	GetWorksheet(ctx context.Context, id string) (*store.Worksheet, error)
	ListWorksheets(ctx context.Context, worldID, toolType string) ([]store.Worksheet, error)
}

// Slot holds the link state of one slot of one source worksheet.
//
// Every Select, Refresh and Unlink advances the slot's generation. A fetch
// whose generation is no longer current when it completes is discarded, so
// the most recently issued request always wins regardless of completion
// order. The stored ref changes only through Select, Refresh and Unlink.
type Slot struct {
	config LinkConfig
	source WorksheetSource
	logger *zap.Logger
	now    func() time.Time

	// worldID, when set, restricts Select to targets in the same world.
	worldID string

	mu         sync.Mutex
	ref        *Ref
	stale      bool
	generation uint64
	inflight   int
}

func NewSlot(config LinkConfig, source WorksheetSource, ref *Ref, logger *zap.Logger) *Slot {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Slot{
		config: config,
		source: source,
		logger: logger.With(zap.String("slot", config.Key)),
		now:    time.Now,
		ref:    ref.clone(),
	}
}

func (s *Slot) Config() LinkConfig {
	return s.config
}

// Ref returns a copy of the stored ref, nil when unlinked.
func (s *Slot) Ref() *Ref {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ref.clone()
}

func (s *Slot) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Slot) stateLocked() State {
	switch {
	case s.ref == nil:
		return StateUnlinked
	case s.stale:
		return StateStale
	default:
		return StateFresh
	}
}

// Select links the slot to targetID and snapshots its sync fields. It reports
// false without error when a newer request superseded this one.
func (s *Slot) Select(ctx context.Context, targetID string) (bool, error) {
	gen := s.begin()
	defer s.end()

	target, err := s.source.GetWorksheet(ctx, targetID)
	if !s.current(gen) {
		s.logger.Debug("discarding superseded select", zap.String("target", targetID))
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("fetching link target %s: %w", targetID, err)
	}
	if target == nil {
		return false, fmt.Errorf("%w: %s", ErrTargetNotFound, targetID)
	}
	if target.ToolType != s.config.TargetTool {
		return false, fmt.Errorf("%w: %s is %s, slot %s expects %s", ErrWrongTool, targetID, target.ToolType, s.config.Key, s.config.TargetTool)
	}
	if s.worldID != "" && target.WorldID != s.worldID {
		return false, fmt.Errorf("%w: %s", ErrCrossWorld, targetID)
	}

	return s.commit(gen, s.snapshot(target)), nil
}

// Refresh re-snapshots the currently linked worksheet. When the target cannot
// be fetched the stored ref is left untouched and the slot turns stale.
func (s *Slot) Refresh(ctx context.Context) (bool, error) {
	s.mu.Lock()
	if s.ref == nil {
		s.mu.Unlock()
		return false, ErrNotLinked
	}
	targetID := s.ref.WorksheetID
	s.generation++
	gen := s.generation
	s.inflight++
	s.mu.Unlock()
	defer s.end()

	target, err := s.source.GetWorksheet(ctx, targetID)
	if !s.current(gen) {
		s.logger.Debug("discarding superseded refresh", zap.String("target", targetID))
		return false, nil
	}
	if err != nil && ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil || target == nil || target.ToolType != s.config.TargetTool {
		s.markStale(gen, targetID, err)
		return false, nil
	}

	return s.commit(gen, s.snapshot(target)), nil
}

// Check re-fetches the linked worksheet and records whether it still
// resolves. It never changes the stored ref.
func (s *Slot) Check(ctx context.Context) (State, error) {
	s.mu.Lock()
	if s.ref == nil {
		s.mu.Unlock()
		return StateUnlinked, nil
	}
	targetID := s.ref.WorksheetID
	gen := s.generation
	s.mu.Unlock()

	target, err := s.source.GetWorksheet(ctx, targetID)
	if err != nil && ctx.Err() != nil {
		return s.State(), ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return s.stateLocked(), nil
	}
	if err != nil || target == nil || target.ToolType != s.config.TargetTool {
		s.stale = true
		s.logger.Warn("link target unresolvable", zap.String("target", targetID), zap.Error(err))
	} else {
		s.stale = false
	}
	return s.stateLocked(), nil
}

// Unlink clears the slot from any state and supersedes in-flight requests.
func (s *Slot) Unlink() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.ref = nil
	s.stale = false
}

// reset replaces the stored ref with a persisted one while no request is in
// flight. It reports whether the ref was replaced.
func (s *Slot) reset(ref *Ref) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight > 0 {
		return false
	}
	if s.ref == nil || ref == nil || s.ref.WorksheetID != ref.WorksheetID {
		s.stale = false
	}
	s.ref = ref.clone()
	return true
}

// acquire resets the slot from a persisted ref when it is idle and then
// marks it busy, so no reset can overwrite a committed ref before the caller
// has written it back. Every acquire must be paired with release.
func (s *Slot) acquire(ref *Ref) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight == 0 {
		if s.ref == nil || ref == nil || s.ref.WorksheetID != ref.WorksheetID {
			s.stale = false
		}
		s.ref = ref.clone()
	}
	s.inflight++
}

func (s *Slot) release() {
	s.end()
}

func (s *Slot) snapshot(target *store.Worksheet) *Ref {
	data := Extract(target.Data, s.config.SyncFields)
	data[TitleField] = target.Title
	return &Ref{
		WorksheetID: target.ID,
		SyncedAt:    s.now().UTC(),
		SyncedData:  data,
	}
}

func (s *Slot) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.inflight++
	return s.generation
}

func (s *Slot) end() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
}

func (s *Slot) current(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gen == s.generation
}

func (s *Slot) commit(gen uint64, ref *Ref) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return false
	}
	s.ref = ref
	s.stale = false
	s.logger.Debug("link synced", zap.String("target", ref.WorksheetID), zap.Int("fields", len(ref.SyncedData)))
	return true
}

func (s *Slot) markStale(gen uint64, targetID string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return
	}
	s.stale = true
	s.logger.Warn("link target unresolvable", zap.String("target", targetID), zap.Error(err))
}
