package linking

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"worldsheet/internal/store"
)

// WorksheetStore is what the service needs to read targets and persist the
// source payload after a transition.
type WorksheetStore interface {
	WorksheetSource
	UpdateWorksheetData(ctx context.Context, id string, data map[string]any) error
}

// SlotStatus is the rendered view of one slot of a worksheet.
type SlotStatus struct {
	Config LinkConfig
	State  State
	Ref    *Ref
	// Malformed is set when the stored entry could not be decoded; such a
	// slot renders as stale until it is unlinked or re-selected.
	Malformed error
}

type slotKey struct {
	worksheetID string
	key         string
}

// Service runs slot transitions against stored worksheets. Slots are kept
// per (worksheet, key) so overlapping requests share one generation counter.
type Service struct {
	registry *Registry
	store    WorksheetStore
	logger   *zap.Logger

	mu    sync.Mutex
	slots map[slotKey]*Slot
}

func NewService(registry *Registry, ws WorksheetStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		registry: registry,
		store:    ws,
		logger:   logger,
		slots:    make(map[slotKey]*Slot),
	}
}

func (s *Service) Registry() *Registry {
	return s.registry
}

// Slots reports every slot of the worksheet's tool, checking linked targets
// concurrently. Nothing is written.
func (s *Service) Slots(ctx context.Context, worksheetID string) ([]SlotStatus, error) {
	source, err := s.source(ctx, worksheetID)
	if err != nil {
		return nil, err
	}

	configs := s.registry.ConfigsFor(source.ToolType)
	statuses := make([]SlotStatus, len(configs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, cfg := range configs {
		statuses[i].Config = cfg
		slot, loadErr := s.slot(source, cfg, false)
		if loadErr != nil {
			statuses[i].State = StateStale
			statuses[i].Malformed = loadErr
			continue
		}
		g.Go(func() error {
			state, err := slot.Check(gctx)
			if err != nil {
				return fmt.Errorf("checking slot %s: %w", cfg.Key, err)
			}
			statuses[i].State = state
			statuses[i].Ref = slot.Ref()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return statuses, nil
}

// Candidates lists worksheets the slot may point at: the slot's target tool
// within the source worksheet's world.
func (s *Service) Candidates(ctx context.Context, worksheetID, key string) ([]store.Worksheet, error) {
	source, err := s.source(ctx, worksheetID)
	if err != nil {
		return nil, err
	}
	cfg, ok := s.registry.ConfigFor(source.ToolType, key)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownSlot, source.ToolType, key)
	}

	items, err := s.store.ListWorksheets(ctx, source.WorldID, cfg.TargetTool)
	if err != nil {
		return nil, fmt.Errorf("listing link candidates: %w", err)
	}
	out := make([]store.Worksheet, 0, len(items))
	for _, item := range items {
		if item.ID == source.ID {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

// Select links the slot to targetID and persists the new snapshot. It
// returns the stored ref, or nil when a newer request superseded this one.
func (s *Service) Select(ctx context.Context, worksheetID, key, targetID string) (*Ref, error) {
	source, slot, err := s.lookup(ctx, worksheetID, key)
	if slot != nil {
		defer slot.release()
	}
	if err != nil && !errors.Is(err, ErrMalformedRef) {
		return nil, err
	}

	applied, err := slot.Select(ctx, targetID)
	if err != nil || !applied {
		return nil, err
	}
	return s.persist(ctx, source.ID, slot)
}

// Refresh re-syncs the slot from its current target. A nil ref with a nil
// error means nothing changed: the target was unresolvable or the request
// was superseded.
func (s *Service) Refresh(ctx context.Context, worksheetID, key string) (*Ref, error) {
	source, slot, err := s.lookup(ctx, worksheetID, key)
	if slot != nil {
		defer slot.release()
	}
	if err != nil {
		return nil, err
	}

	applied, err := slot.Refresh(ctx)
	if err != nil || !applied {
		return nil, err
	}
	return s.persist(ctx, source.ID, slot)
}

// Unlink clears the slot and persists the removal. It is valid from any
// state, including a stale or malformed entry.
func (s *Service) Unlink(ctx context.Context, worksheetID, key string) error {
	source, slot, err := s.lookup(ctx, worksheetID, key)
	if slot != nil {
		defer slot.release()
	}
	if err != nil && !errors.Is(err, ErrMalformedRef) {
		return err
	}

	slot.Unlink()
	_, err = s.persist(ctx, source.ID, slot)
	return err
}

func (s *Service) source(ctx context.Context, worksheetID string) (*store.Worksheet, error) {
	ws, err := s.store.GetWorksheet(ctx, worksheetID)
	if err != nil {
		return nil, fmt.Errorf("fetching worksheet %s: %w", worksheetID, err)
	}
	if ws == nil {
		return nil, fmt.Errorf("%w: %s", store.ErrNotFound, worksheetID)
	}
	return ws, nil
}

// lookup returns the slot even when the stored entry is malformed, together
// with the ErrMalformedRef describing it. A returned slot is held until the
// caller releases it, which keeps observers from resetting it mid-write.
func (s *Service) lookup(ctx context.Context, worksheetID, key string) (*store.Worksheet, *Slot, error) {
	source, err := s.source(ctx, worksheetID)
	if err != nil {
		return nil, nil, err
	}
	cfg, ok := s.registry.ConfigFor(source.ToolType, key)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s.%s", ErrUnknownSlot, source.ToolType, key)
	}
	slot, err := s.slot(source, cfg, true)
	return source, slot, err
}

func (s *Service) slot(source *store.Worksheet, cfg LinkConfig, hold bool) (*Slot, error) {
	ref, loadErr := LoadRef(source.Data, cfg.Key)

	s.mu.Lock()
	defer s.mu.Unlock()

	id := slotKey{worksheetID: source.ID, key: cfg.Key}
	slot, ok := s.slots[id]
	if !ok {
		slot = NewSlot(cfg, s.store, ref, s.logger.With(zap.String("worksheet", source.ID)))
		slot.worldID = source.WorldID
		s.slots[id] = slot
	}
	if hold {
		slot.acquire(ref)
	} else {
		slot.reset(ref)
	}
	return slot, loadErr
}

// persist writes the slot's current ref into a freshly read copy of the
// source payload.
func (s *Service) persist(ctx context.Context, worksheetID string, slot *Slot) (*Ref, error) {
	source, err := s.source(ctx, worksheetID)
	if err != nil {
		return nil, err
	}
	if source.Data == nil {
		source.Data = map[string]any{}
	}

	ref := slot.Ref()
	if err := PutRef(source.Data, slot.Config().Key, ref); err != nil {
		return nil, err
	}
	if err := s.store.UpdateWorksheetData(ctx, worksheetID, source.Data); err != nil {
		return nil, fmt.Errorf("saving worksheet %s: %w", worksheetID, err)
	}
	return ref, nil
}
