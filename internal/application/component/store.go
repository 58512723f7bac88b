// Package component manages saved ecosystem component assessments and the
// cross-component Total EV aggregation.  Saved components are snapshots:
// later edits to the data they were computed from never leak into them.
package component

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	appassessment "github.com/razinkele/marbefes-eva-app/internal/application/assessment"
	domain "github.com/razinkele/marbefes-eva-app/internal/domain/assessment"
	"github.com/razinkele/marbefes-eva-app/internal/infrastructure/monitoring/logging"
	"github.com/razinkele/marbefes-eva-app/pkg/errors"
	"github.com/razinkele/marbefes-eva-app/pkg/types/eva"
)

// Record is one saved ecosystem component: the dataset snapshot, its
// classification, and the full result table of the run that produced it.
type Record struct {
	ID             string
	Name           string
	DataType       domain.DataType
	Dataset        *domain.Dataset
	Classification domain.Classification
	Table          *domain.ResultTable
	SavedAt        time.Time
}

// Clone returns a deep copy so callers can never mutate stored state.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	return &Record{
		ID:             r.ID,
		Name:           r.Name,
		DataType:       r.DataType,
		Dataset:        r.Dataset.Clone(),
		Classification: r.Classification.Clone(),
		Table:          r.Table.Clone(),
		SavedAt:        r.SavedAt,
	}
}

// Metrics is the operational metrics port of the store.
type Metrics interface {
	SetComponentsStored(n int)
	IncAggregations()
}

type noopMetrics struct{}

func (noopMetrics) SetComponentsStored(int) {}
func (noopMetrics) IncAggregations()        {}

// Store manages saved components.
type Store interface {
	// Save snapshots an assessment outcome under a component name.
	// Saving an existing name requires overwrite, which replaces the
	// stored snapshot but keeps the component ID stable.
	Save(ctx context.Context, name string, outcome *appassessment.Outcome, overwrite bool) (*eva.ComponentSummary, error)

	// List returns summaries of all saved components, ordered by name.
	List(ctx context.Context) []eva.ComponentSummary

	// Get returns a component with its result table, by ID or name.
	Get(ctx context.Context, idOrName string) (*eva.ComponentDetail, error)

	// Delete removes a component by ID or name.
	Delete(ctx context.Context, idOrName string) error

	// Aggregate builds the Total EV table across saved components.  An
	// empty names list aggregates all of them.
	Aggregate(ctx context.Context, names ...string) (*eva.AggregateResponse, error)
}

type store struct {
	mu        sync.RWMutex
	byName    map[string]*Record
	logger    logging.Logger
	publisher EventPublisher
	metrics   Metrics
}

// NewStore builds an in-memory component store.  A nil logger, publisher, or
// metrics collector falls back to a no-op implementation.
func NewStore(log logging.Logger, publisher EventPublisher, metrics Metrics) Store {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if publisher == nil {
		publisher = noopPublisher{}
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &store{
		byName:    make(map[string]*Record),
		logger:    log.Named("component"),
		publisher: publisher,
		metrics:   metrics,
	}
}

func (s *store) Save(ctx context.Context, name string, outcome *appassessment.Outcome, overwrite bool) (*eva.ComponentSummary, error) {
	if name == "" {
		return nil, errors.New(errors.CodeComponentNameEmpty, "component name is required")
	}
	if outcome == nil || outcome.Table == nil || outcome.Dataset == nil {
		return nil, errors.New(errors.CodeComponentNoResults, "component has no assessment results to save")
	}

	record := &Record{
		ID:             uuid.NewString(),
		Name:           name,
		DataType:       outcome.DataType,
		Dataset:        outcome.Dataset.Clone(),
		Classification: outcome.Classification.Clone(),
		Table:          outcome.Table.Clone(),
		SavedAt:        time.Now().UTC(),
	}

	s.mu.Lock()
	if existing, ok := s.byName[name]; ok {
		if !overwrite {
			s.mu.Unlock()
			return nil, errors.Newf(errors.CodeConflict, "component %q already exists", name)
		}
		record.ID = existing.ID
	}
	s.byName[name] = record
	size := len(s.byName)
	s.mu.Unlock()

	s.metrics.SetComponentsStored(size)
	s.logger.Info("component saved",
		logging.String("component_id", record.ID),
		logging.String("name", name),
		logging.Bool("overwrite", overwrite))

	if err := s.publisher.ComponentSaved(ctx, SavedEvent{
		ComponentID:  record.ID,
		Name:         record.Name,
		DataType:     string(record.DataType),
		FeatureCount: record.Dataset.NumFeatures(),
		SubzoneCount: record.Dataset.NumSubzones(),
		SavedAt:      record.SavedAt,
	}); err != nil {
		s.logger.Warn("component saved event not published", logging.Err(err))
	}

	summary := summarize(record)
	return &summary, nil
}

func (s *store) List(ctx context.Context) []eva.ComponentSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]eva.ComponentSummary, 0, len(s.byName))
	for _, record := range s.byName {
		out = append(out, summarize(record))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *store) Get(ctx context.Context, idOrName string) (*eva.ComponentDetail, error) {
	s.mu.RLock()
	record := s.lookupLocked(idOrName)
	s.mu.RUnlock()

	if record == nil {
		return nil, errors.Newf(errors.CodeComponentNotFound, "component %q not found", idOrName)
	}
	return &eva.ComponentDetail{
		ComponentSummary: summarize(record),
		Rows:             rowsToDTO(record.Table),
	}, nil
}

func (s *store) Delete(ctx context.Context, idOrName string) error {
	s.mu.Lock()
	record := s.lookupLocked(idOrName)
	if record == nil {
		s.mu.Unlock()
		return errors.Newf(errors.CodeComponentNotFound, "component %q not found", idOrName)
	}
	delete(s.byName, record.Name)
	size := len(s.byName)
	s.mu.Unlock()

	s.metrics.SetComponentsStored(size)
	s.logger.Info("component deleted",
		logging.String("component_id", record.ID),
		logging.String("name", record.Name))

	if err := s.publisher.ComponentDeleted(ctx, DeletedEvent{
		ComponentID: record.ID,
		Name:        record.Name,
		DeletedAt:   time.Now().UTC(),
	}); err != nil {
		s.logger.Warn("component deleted event not published", logging.Err(err))
	}
	return nil
}

// lookupLocked resolves a component by ID first, then by name.  Callers must
// hold at least a read lock.
func (s *store) lookupLocked(idOrName string) *Record {
	for _, record := range s.byName {
		if record.ID == idOrName {
			return record
		}
	}
	return s.byName[idOrName]
}

func summarize(r *Record) eva.ComponentSummary {
	return eva.ComponentSummary{
		ID:           r.ID,
		Name:         r.Name,
		DataType:     string(r.DataType),
		FeatureCount: r.Dataset.NumFeatures(),
		SubzoneCount: r.Dataset.NumSubzones(),
		SavedAt:      r.SavedAt,
	}
}

func rowsToDTO(table *domain.ResultTable) []eva.ResultRowDTO {
	rows := make([]eva.ResultRowDTO, len(table.Rows))
	for i, row := range table.Rows {
		scores := make(map[string]eva.AQCell, len(row.Scores))
		for aq, score := range row.Scores {
			scores[string(aq)] = eva.AQCell{Value: score.Value, Applicable: score.Applicable}
		}
		rows[i] = eva.ResultRowDTO{SubzoneID: row.SubzoneID, Scores: scores, EV: row.EV}
	}
	return rows
}
