package component

import (
	"context"
	"sync"
	"testing"

	appassessment "github.com/razinkele/marbefes-eva-app/internal/application/assessment"
	"github.com/razinkele/marbefes-eva-app/internal/testutil"
	"github.com/razinkele/marbefes-eva-app/pkg/errors"
	"github.com/razinkele/marbefes-eva-app/pkg/types/eva"
)

// ============================================================================
// Mock Definitions
// ============================================================================

type mockPublisher struct {
	mu       sync.Mutex
	saved    []SavedEvent
	deleted  []DeletedEvent
	savedErr error
}

func (m *mockPublisher) ComponentSaved(_ context.Context, evt SavedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.savedErr != nil {
		return m.savedErr
	}
	m.saved = append(m.saved, evt)
	return nil
}

func (m *mockPublisher) ComponentDeleted(_ context.Context, evt DeletedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, evt)
	return nil
}

type mockStoreMetrics struct {
	mu           sync.Mutex
	storedSizes  []int
	aggregations int
}

func (m *mockStoreMetrics) SetComponentsStored(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.storedSizes = append(m.storedSizes, n)
}

func (m *mockStoreMetrics) IncAggregations() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.aggregations++
}

// ============================================================================
// Helpers
// ============================================================================

func runAssessment(t *testing.T, req *eva.AssessmentRequest) *appassessment.Outcome {
	t.Helper()
	svc := appassessment.NewService(appassessment.DefaultConfig(), testutil.NewMockLogger(), nil, nil)
	out, err := svc.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("assessment run: %v", err)
	}
	return out
}

func presenceOutcome(t *testing.T) *appassessment.Outcome {
	t.Helper()
	return runAssessment(t, &eva.AssessmentRequest{
		DataType: "qualitative",
		Dataset: eva.DatasetDTO{
			Features: []string{"Zostera marina", "Mytilus edulis"},
			Subzones: []eva.SubzoneRow{
				{SubzoneID: "SZ-01", Values: map[string]float64{"Zostera marina": 1, "Mytilus edulis": 0}},
				{SubzoneID: "SZ-02", Values: map[string]float64{"Zostera marina": 1, "Mytilus edulis": 1}},
			},
		},
	})
}

func assertCode(t *testing.T, err error, code errors.ErrorCode) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", code)
	}
	if got := errors.GetCode(err); got != code {
		t.Fatalf("expected error code %s, got %s (%v)", code, got, err)
	}
}

// ============================================================================
// Tests
// ============================================================================

func TestSaveAndGet(t *testing.T) {
	publisher := &mockPublisher{}
	metrics := &mockStoreMetrics{}
	store := NewStore(testutil.NewMockLogger(), publisher, metrics)
	ctx := context.Background()

	summary, err := store.Save(ctx, "Seagrass beds", presenceOutcome(t), false)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if summary.ID == "" || summary.Name != "Seagrass beds" {
		t.Fatalf("summary = %+v", summary)
	}
	if summary.FeatureCount != 2 || summary.SubzoneCount != 2 {
		t.Fatalf("summary counts = %+v", summary)
	}

	detail, err := store.Get(ctx, "Seagrass beds")
	if err != nil {
		t.Fatalf("Get by name: %v", err)
	}
	if len(detail.Rows) != 2 {
		t.Fatalf("detail rows = %d", len(detail.Rows))
	}
	byID, err := store.Get(ctx, summary.ID)
	if err != nil {
		t.Fatalf("Get by id: %v", err)
	}
	if byID.Name != detail.Name {
		t.Fatal("lookup by id and name disagree")
	}

	if len(publisher.saved) != 1 || publisher.saved[0].Name != "Seagrass beds" {
		t.Fatalf("saved events = %+v", publisher.saved)
	}
	if len(metrics.storedSizes) == 0 || metrics.storedSizes[len(metrics.storedSizes)-1] != 1 {
		t.Fatalf("store size gauge = %v", metrics.storedSizes)
	}
}

func TestSaveValidation(t *testing.T) {
	store := NewStore(nil, nil, nil)
	ctx := context.Background()

	_, err := store.Save(ctx, "", presenceOutcome(t), false)
	assertCode(t, err, errors.CodeComponentNameEmpty)

	_, err = store.Save(ctx, "Birds", nil, false)
	assertCode(t, err, errors.CodeComponentNoResults)
}

func TestSaveConflictAndOverwrite(t *testing.T) {
	store := NewStore(nil, nil, nil)
	ctx := context.Background()

	first, err := store.Save(ctx, "Birds", presenceOutcome(t), false)
	if err != nil {
		t.Fatalf("first save: %v", err)
	}

	_, err = store.Save(ctx, "Birds", presenceOutcome(t), false)
	assertCode(t, err, errors.CodeConflict)

	// Overwrite replaces the snapshot but keeps the component ID stable.
	second, err := store.Save(ctx, "Birds", presenceOutcome(t), true)
	if err != nil {
		t.Fatalf("overwrite save: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("overwrite changed component ID: %s -> %s", first.ID, second.ID)
	}
}

func TestSaveIsSnapshot(t *testing.T) {
	store := NewStore(nil, nil, nil)
	ctx := context.Background()

	outcome := presenceOutcome(t)
	if _, err := store.Save(ctx, "Birds", outcome, false); err != nil {
		t.Fatalf("Save: %v", err)
	}
	wantEV := outcome.Table.Rows[0].EV

	// Mutating the caller's outcome after save must not affect the store.
	outcome.Table.Rows[0].EV = 99
	outcome.Table.Rows[0].SubzoneID = "mutated"

	detail, err := store.Get(ctx, "Birds")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if detail.Rows[0].SubzoneID != "SZ-01" || detail.Rows[0].EV != wantEV {
		t.Fatalf("stored snapshot mutated: %+v", detail.Rows[0])
	}
}

func TestDelete(t *testing.T) {
	publisher := &mockPublisher{}
	metrics := &mockStoreMetrics{}
	store := NewStore(testutil.NewMockLogger(), publisher, metrics)
	ctx := context.Background()

	summary, err := store.Save(ctx, "Fish", presenceOutcome(t), false)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := store.Delete(ctx, summary.ID); err != nil {
		t.Fatalf("Delete by id: %v", err)
	}
	_, err = store.Get(ctx, "Fish")
	assertCode(t, err, errors.CodeComponentNotFound)

	err = store.Delete(ctx, "Fish")
	assertCode(t, err, errors.CodeComponentNotFound)

	if len(publisher.deleted) != 1 || publisher.deleted[0].ComponentID != summary.ID {
		t.Fatalf("deleted events = %+v", publisher.deleted)
	}
	if metrics.storedSizes[len(metrics.storedSizes)-1] != 0 {
		t.Fatalf("store size gauge = %v", metrics.storedSizes)
	}
}

func TestSaveSurvivesPublisherFailure(t *testing.T) {
	publisher := &mockPublisher{savedErr: errors.New(errors.CodeEventPublishError, "broker down")}
	store := NewStore(testutil.NewMockLogger(), publisher, nil)

	if _, err := store.Save(context.Background(), "Birds", presenceOutcome(t), false); err != nil {
		t.Fatalf("Save with failing publisher: %v", err)
	}
}

func TestListOrderedByName(t *testing.T) {
	store := NewStore(nil, nil, nil)
	ctx := context.Background()

	for _, name := range []string{"Plankton", "Birds", "Fish"} {
		if _, err := store.Save(ctx, name, presenceOutcome(t), false); err != nil {
			t.Fatalf("Save %s: %v", name, err)
		}
	}

	list := store.List(ctx)
	if len(list) != 3 {
		t.Fatalf("list length = %d", len(list))
	}
	for i, want := range []string{"Birds", "Fish", "Plankton"} {
		if list[i].Name != want {
			t.Fatalf("list[%d] = %s, want %s", i, list[i].Name, want)
		}
	}
}
