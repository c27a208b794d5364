// Package health provides health checking functionality for the medassist API.
package health

import (
	"math"
	"net/http"
	"time"

	"github.com/medassist/medassist-api/interfaces"
)

// Freshness thresholds for the catalog data. The data files reload twice a
// day, so anything older than a full day means the scheduler is stuck.
const (
	staleAfter      = 24 * time.Hour
	deadAfter       = 48 * time.Hour
	slowUpdateAfter = 6 * time.Hour
)

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	dataStore interfaces.DataStore
}

// NewHealthChecker creates a new health checker with injected dependencies
func NewHealthChecker(dataStore interfaces.DataStore) interfaces.HealthChecker {
	return &HealthCheckerImpl{
		dataStore: dataStore,
	}
}

// HealthCheck reports catalog freshness with stricter thresholds than the
// HTTP /health endpoint: stale data is already a 503 here.
func (h *HealthCheckerImpl) HealthCheck() (status string, data map[string]any, httpStatus int) {
	medicineCount := len(h.dataStore.GetMedicines())
	doctorCount := len(h.dataStore.GetDoctors())
	lastUpdate := h.dataStore.GetLastUpdated()
	isUpdating := h.dataStore.IsUpdating()
	dataAge := time.Since(lastUpdate)

	status = classify(medicineCount, dataAge, isUpdating)
	httpStatus = http.StatusOK
	if status != "healthy" {
		httpStatus = http.StatusServiceUnavailable
	}

	data = map[string]any{
		"last_update":    lastUpdate.Format(time.RFC3339),
		"data_age_hours": math.Round(dataAge.Hours()*10) / 10,
		"medicines":      medicineCount,
		"doctors":        doctorCount,
		"is_updating":    isUpdating,
	}

	return status, data, httpStatus
}

func classify(medicineCount int, dataAge time.Duration, isUpdating bool) string {
	switch {
	case medicineCount == 0:
		return "unhealthy"
	case dataAge > deadAfter:
		return "unhealthy"
	case dataAge > staleAfter:
		return "degraded"
	case isUpdating && dataAge > slowUpdateAfter:
		return "degraded"
	default:
		return "healthy"
	}
}

// CalculateNextUpdate returns the next scheduled reload time
func (h *HealthCheckerImpl) CalculateNextUpdate() time.Time {
	now := time.Now()

	sixAM := time.Date(now.Year(), now.Month(), now.Day(), 6, 0, 0, 0, now.Location())
	sixPM := time.Date(now.Year(), now.Month(), now.Day(), 18, 0, 0, 0, now.Location())

	if now.Before(sixAM) {
		return sixAM
	}
	if now.Before(sixPM) {
		return sixPM
	}

	return sixAM.AddDate(0, 0, 1)
}
