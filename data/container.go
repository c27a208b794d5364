// Package data provides thread-safe data storage and management for the medassist API.
// It includes the DataContainer struct with atomic operations for zero-downtime reloads,
// thread-safe access to the catalog, clinical records and doctor directory, and a
// bounded in-memory identification history.
package data

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/medassist/medassist-api/catalog/entities"
	"github.com/medassist/medassist-api/interfaces"
	"github.com/medassist/medassist-api/logging"
)

// Compile-time check to ensure DataContainer implements DataStore
var _ interfaces.DataStore = (*DataContainer)(nil)

// DefaultHistoryLimit caps the identification history when no explicit
// limit is configured.
const DefaultHistoryLimit = 100

// DataContainer holds all the data with atomic pointers for zero-downtime updates.
// The identification history is the only mutable-in-place state and has its own lock.
type DataContainer struct {
	medicines       atomic.Value // []entities.CatalogEntry
	records         atomic.Value // map[string]entities.ClinicalRecord
	doctors         atomic.Value // []entities.Doctor
	lastUpdated     atomic.Value // time.Time
	updating        atomic.Bool
	serverStartTime atomic.Value // time.Time

	historyMu    sync.Mutex
	history      []entities.Identification
	historyLimit int
}

// NewDataContainer creates a new DataContainer with empty data
func NewDataContainer() *DataContainer {
	return NewDataContainerWithHistoryLimit(DefaultHistoryLimit)
}

// NewDataContainerWithHistoryLimit creates a container with a custom history cap
func NewDataContainerWithHistoryLimit(historyLimit int) *DataContainer {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	dc := &DataContainer{historyLimit: historyLimit}
	dc.medicines.Store(make([]entities.CatalogEntry, 0))
	dc.records.Store(make(map[string]entities.ClinicalRecord))
	dc.doctors.Store(make([]entities.Doctor, 0))
	dc.lastUpdated.Store(time.Time{})
	dc.serverStartTime.Store(time.Time{})
	return dc
}

// Thread-safe getters with type check

// GetMedicines returns the catalog entries in file order
func (dc *DataContainer) GetMedicines() []entities.CatalogEntry {
	if v := dc.medicines.Load(); v != nil {
		if medicines, ok := v.([]entities.CatalogEntry); ok {
			return medicines
		}
	}

	logging.Warn("Medicine catalog is empty or invalid")
	return []entities.CatalogEntry{}
}

// GetRecords returns the clinical record map keyed by entry ID
func (dc *DataContainer) GetRecords() map[string]entities.ClinicalRecord {
	if v := dc.records.Load(); v != nil {
		if records, ok := v.(map[string]entities.ClinicalRecord); ok {
			return records
		}
	}

	logging.Warn("Clinical record map is empty or invalid")
	return make(map[string]entities.ClinicalRecord)
}

// GetDoctors returns the doctor directory
func (dc *DataContainer) GetDoctors() []entities.Doctor {
	if v := dc.doctors.Load(); v != nil {
		if doctors, ok := v.([]entities.Doctor); ok {
			return doctors
		}
	}

	logging.Warn("Doctor directory is empty or invalid")
	return []entities.Doctor{}
}

// GetLastUpdated returns the timestamp of the last data update
func (dc *DataContainer) GetLastUpdated() time.Time {
	if v := dc.lastUpdated.Load(); v != nil {
		if lastUpdated, ok := v.(time.Time); ok {
			return lastUpdated
		}
	}

	logging.Warn("Could not get the last updated value")
	return time.Time{}
}

// IsUpdating returns true if a data update is currently in progress
func (dc *DataContainer) IsUpdating() bool {
	return dc.updating.Load()
}

// SetServerStartTime sets the server start time
func (dc *DataContainer) SetServerStartTime(startTime time.Time) {
	dc.serverStartTime.Store(startTime)
}

// GetServerStartTime returns the server start time
func (dc *DataContainer) GetServerStartTime() time.Time {
	if v := dc.serverStartTime.Load(); v != nil {
		if startTime, ok := v.(time.Time); ok {
			return startTime
		}
	}

	logging.Warn("Could not get the server start time value")
	return time.Time{}
}

// UpdateData atomically updates all reference data in the container.
// The identification history survives reloads untouched.
func (dc *DataContainer) UpdateData(medicines []entities.CatalogEntry,
	records map[string]entities.ClinicalRecord, doctors []entities.Doctor) {

	// Atomic swap (zero downtime replacement)
	dc.medicines.Store(medicines)
	dc.records.Store(records)
	dc.doctors.Store(doctors)
	dc.lastUpdated.Store(time.Now())
}

// BeginUpdate marks the start of a data update operation
// Returns true if update can proceed, false if another update is in progress
func (dc *DataContainer) BeginUpdate() bool {
	return dc.updating.CompareAndSwap(false, true)
}

// EndUpdate marks the end of a data update operation
func (dc *DataContainer) EndUpdate() {
	dc.updating.Store(false)
}

// AddIdentification prepends one identification outcome to the history,
// dropping the oldest entry once the cap is reached.
func (dc *DataContainer) AddIdentification(entry entities.Identification) {
	dc.historyMu.Lock()
	defer dc.historyMu.Unlock()

	dc.history = append(dc.history, entities.Identification{})
	copy(dc.history[1:], dc.history)
	dc.history[0] = entry
	if len(dc.history) > dc.historyLimit {
		dc.history = dc.history[:dc.historyLimit]
	}
}

// GetHistory returns a copy of the identification history, most recent first
func (dc *DataContainer) GetHistory() []entities.Identification {
	dc.historyMu.Lock()
	defer dc.historyMu.Unlock()

	out := make([]entities.Identification, len(dc.history))
	copy(out, dc.history)
	return out
}
