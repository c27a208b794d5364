package health

import (
	"net/http"
	"testing"
	"time"

	"github.com/medassist/medassist-api/catalog/entities"
)

// mockDataStore provides scripted data store state for health checks
type mockDataStore struct {
	medicines   []entities.CatalogEntry
	records     map[string]entities.ClinicalRecord
	doctors     []entities.Doctor
	lastUpdated time.Time
	updating    bool
	startTime   time.Time
}

func (m *mockDataStore) GetMedicines() []entities.CatalogEntry             { return m.medicines }
func (m *mockDataStore) GetRecords() map[string]entities.ClinicalRecord   { return m.records }
func (m *mockDataStore) GetDoctors() []entities.Doctor                    { return m.doctors }
func (m *mockDataStore) GetLastUpdated() time.Time                        { return m.lastUpdated }
func (m *mockDataStore) IsUpdating() bool                                 { return m.updating }
func (m *mockDataStore) GetServerStartTime() time.Time                    { return m.startTime }
func (m *mockDataStore) BeginUpdate() bool                                { return true }
func (m *mockDataStore) EndUpdate()                                       {}
func (m *mockDataStore) AddIdentification(entry entities.Identification)  {}
func (m *mockDataStore) GetHistory() []entities.Identification            { return nil }
func (m *mockDataStore) UpdateData(medicines []entities.CatalogEntry,
	records map[string]entities.ClinicalRecord, doctors []entities.Doctor) {
}

func populatedStore(dataAge time.Duration, updating bool) *mockDataStore {
	return &mockDataStore{
		medicines: []entities.CatalogEntry{
			{ID: "MED001", GenericName: "Paracetamol"},
			{ID: "MED002", GenericName: "Aspirin"},
		},
		doctors: []entities.Doctor{
			{ID: 1, Name: "Dr. Michael Chen"},
		},
		lastUpdated: time.Now().Add(-dataAge),
		updating:    updating,
		startTime:   time.Now().Add(-time.Hour),
	}
}

func TestNewHealthChecker(t *testing.T) {
	checker := NewHealthChecker(populatedStore(time.Hour, false))
	if checker == nil {
		t.Fatal("Expected a health checker instance")
	}
}

func TestHealthCheck_Statuses(t *testing.T) {
	tests := []struct {
		name           string
		store          *mockDataStore
		expectedStatus string
		expectedHTTP   int
	}{
		{
			name:           "healthy with fresh data",
			store:          populatedStore(time.Hour, false),
			expectedStatus: "healthy",
			expectedHTTP:   http.StatusOK,
		},
		{
			name:           "unhealthy without medicines",
			store:          &mockDataStore{lastUpdated: time.Now()},
			expectedStatus: "unhealthy",
			expectedHTTP:   http.StatusServiceUnavailable,
		},
		{
			name:           "unhealthy with very stale data",
			store:          populatedStore(49*time.Hour, false),
			expectedStatus: "unhealthy",
			expectedHTTP:   http.StatusServiceUnavailable,
		},
		{
			name:           "degraded with stale data",
			store:          populatedStore(25*time.Hour, false),
			expectedStatus: "degraded",
			expectedHTTP:   http.StatusServiceUnavailable,
		},
		{
			name:           "degraded when a long update is running",
			store:          populatedStore(7*time.Hour, true),
			expectedStatus: "degraded",
			expectedHTTP:   http.StatusServiceUnavailable,
		},
		{
			name:           "healthy during a quick update",
			store:          populatedStore(time.Hour, true),
			expectedStatus: "healthy",
			expectedHTTP:   http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := NewHealthChecker(tt.store)

			status, data, httpStatus := checker.HealthCheck()

			if status != tt.expectedStatus {
				t.Errorf("Expected status %s, got %s", tt.expectedStatus, status)
			}
			if httpStatus != tt.expectedHTTP {
				t.Errorf("Expected HTTP status %d, got %d", tt.expectedHTTP, httpStatus)
			}
			if data == nil {
				t.Fatal("Expected health data in every status")
			}
		})
	}
}

func TestHealthCheck_DataFields(t *testing.T) {
	store := populatedStore(2*time.Hour, false)
	checker := NewHealthChecker(store)

	_, data, _ := checker.HealthCheck()

	if data["medicines"] != 2 {
		t.Errorf("Expected 2 medicines, got %v", data["medicines"])
	}
	if data["doctors"] != 1 {
		t.Errorf("Expected 1 doctor, got %v", data["doctors"])
	}
	if data["is_updating"] != false {
		t.Errorf("Expected is_updating false, got %v", data["is_updating"])
	}

	age, ok := data["data_age_hours"].(float64)
	if !ok {
		t.Fatalf("Expected data_age_hours as float64, got %T", data["data_age_hours"])
	}
	if age < 1.9 || age > 2.1 {
		t.Errorf("Expected data age around 2 hours, got %f", age)
	}

	if _, ok := data["last_update"].(string); !ok {
		t.Errorf("Expected last_update as a string, got %T", data["last_update"])
	}
}

func TestCalculateNextUpdate(t *testing.T) {
	checker := NewHealthChecker(populatedStore(time.Hour, false))

	next := checker.CalculateNextUpdate()
	now := time.Now()

	if !next.After(now) {
		t.Error("Next update should be in the future")
	}
	if next.Hour() != 6 && next.Hour() != 18 {
		t.Errorf("Next update should be at 6:00 or 18:00, got hour %d", next.Hour())
	}
	if next.Sub(now) > 24*time.Hour {
		t.Errorf("Next update should be within 24 hours, got %s", next.Sub(now))
	}
}
