package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"pricetrack/internal/errors"
	"pricetrack/internal/models"
	"pricetrack/internal/trend"
)

func newDashboardRouter(gateway *fakeGateway) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewDashboardHandler(gateway, trend.NewAnalyzer(trend.DefaultConfig()), nil)
	r := gin.New()
	r.GET("/dashboard", h.Get)
	return r
}

// TestDashboardAnalyzesChronologically verifies the newest-first remote
// listing is reversed before analysis so trends read oldest to newest.
func TestDashboardAnalyzesChronologically(t *testing.T) {
	// Newest first: 14, 12, 10. Chronologically prices rise.
	gateway := &fakeGateway{entries: []models.PriceEntry{
		{ID: 3, ItemName: "Apples", Supplier: "Farm", Price: 14},
		{ID: 2, ItemName: "Apples", Supplier: "Farm", Price: 12},
		{ID: 1, ItemName: "Apples", Supplier: "Farm", Price: 10},
	}}
	r := newDashboardRouter(gateway)

	w := performRequest(r, http.MethodGet, "/dashboard", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var report trend.Report
	if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
		t.Fatalf("failed to decode report: %v", err)
	}
	if len(report.Suppliers) != 1 {
		t.Fatalf("expected 1 supplier, got %d", len(report.Suppliers))
	}
	if report.Suppliers[0].Direction != trend.DirectionRising {
		t.Errorf("expected rising trend, got %s", report.Suppliers[0].Direction)
	}
	if report.Suppliers[0].Average != 12 {
		t.Errorf("expected average 12, got %f", report.Suppliers[0].Average)
	}
}

// TestDashboardRemoteUnavailable verifies remote failures surface as 502.
func TestDashboardRemoteUnavailable(t *testing.T) {
	gateway := &fakeGateway{err: errors.New(errors.ErrRemoteUnavailable, "connection refused")}
	r := newDashboardRouter(gateway)

	w := performRequest(r, http.MethodGet, "/dashboard", "")

	if w.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", w.Code)
	}
}
