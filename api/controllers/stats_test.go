package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	statsvc "github.com/aurelioventura/healthscan-backend/internal/stats"
	pkgerrors "github.com/aurelioventura/healthscan-backend/pkg/errors"
)

type fakeStatsService struct {
	current    *statsvc.Snapshot
	refreshed  *statsvc.Snapshot
	refreshErr error
	refreshes  int
}

func (f *fakeStatsService) Refresh(ctx context.Context) (*statsvc.Snapshot, error) {
	f.refreshes++
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return f.refreshed, nil
}

func (f *fakeStatsService) Current() *statsvc.Snapshot {
	return f.current
}

func TestGetStatsServesCachedSnapshot(t *testing.T) {
	svc := &fakeStatsService{current: &statsvc.Snapshot{TotalProducts: 4}}
	handler := GetStats(svc, nil)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	w := httptest.NewRecorder()
	handler(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if svc.refreshes != 0 {
		t.Fatalf("cached snapshot must not trigger a refresh, got %d", svc.refreshes)
	}
}

func TestGetStatsComputesOnFirstRequest(t *testing.T) {
	svc := &fakeStatsService{refreshed: &statsvc.Snapshot{TotalProducts: 9}}
	handler := GetStats(svc, nil)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	w := httptest.NewRecorder()
	handler(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if svc.refreshes != 1 {
		t.Fatalf("expected one refresh, got %d", svc.refreshes)
	}
}

func TestGetStatsSurfacesAggregationFailure(t *testing.T) {
	svc := &fakeStatsService{refreshErr: pkgerrors.New(pkgerrors.CodeAggregation, "aggregation exhausted")}
	handler := GetStats(svc, nil)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	w := httptest.NewRecorder()
	handler(w, r)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}
