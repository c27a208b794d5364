// Package interfaces defines core abstractions for the medassist API
// to improve testability, maintainability, and separation of concerns.
package interfaces

import (
	"net/http"
	"time"

	"github.com/medassist/medassist-api/catalog/entities"
)

// DataQualityReport provides a summary of data quality issues
type DataQualityReport struct {
	DuplicateIDs            []string
	EntriesWithoutAliases   []string // IDs of catalog entries with no brand aliases
	RecordsWithoutWarnings  int      // Count of clinical records with no warnings listed
	RecordsWithoutDosage    int      // Count of clinical records with an empty dosage table
	DoctorsWithoutSpecialty int      // Count of doctors with no specialties listed
}

// DataStore defines the contract for data storage operations.
// It provides thread-safe access to the medicine catalog, clinical records,
// doctor directory and identification history with atomic operations for
// zero-downtime updates.
type DataStore interface {
	// Data retrieval methods
	GetMedicines() []entities.CatalogEntry
	GetRecords() map[string]entities.ClinicalRecord
	GetDoctors() []entities.Doctor
	GetLastUpdated() time.Time
	IsUpdating() bool
	GetServerStartTime() time.Time

	// Data update methods
	UpdateData(medicines []entities.CatalogEntry, records map[string]entities.ClinicalRecord,
		doctors []entities.Doctor)
	BeginUpdate() bool
	EndUpdate()

	// Identification history, bounded, most recent first
	AddIdentification(entry entities.Identification)
	GetHistory() []entities.Identification
}

// CatalogLoader defines the contract for loading reference data from the
// backing files into structured entities.
type CatalogLoader interface {
	// LoadMedicines returns the catalog entries in file order and the
	// clinical record map keyed by entry ID, exactly one record per entry
	LoadMedicines() ([]entities.CatalogEntry, map[string]entities.ClinicalRecord, error)

	// LoadDoctors returns the doctor directory
	LoadDoctors() ([]entities.Doctor, error)
}

// Scheduler defines the contract for job scheduling and health monitoring.
// It manages automated catalog reloads and system health checks.
type Scheduler interface {
	// Lifecycle management
	Start() error
	Stop()
}

// HTTPHandler defines the contract for HTTP request handlers.
// It provides a consistent interface for all API endpoints.
type HTTPHandler interface {
	// ServeHTTP implements the http.Handler interface
	ServeHTTP(w http.ResponseWriter, r *http.Request)

	// Specific endpoint handlers
	IdentifyMedicine(w http.ResponseWriter, r *http.Request)
	ServeAllMedicines(w http.ResponseWriter, r *http.Request)
	FindMedicineByID(w http.ResponseWriter, r *http.Request)
	FindMedicine(w http.ResponseWriter, r *http.Request)
	FindDoctors(w http.ResponseWriter, r *http.Request)
	ServeHistory(w http.ResponseWriter, r *http.Request)
	SpeakText(w http.ResponseWriter, r *http.Request)
	UnlockAudio(w http.ResponseWriter, r *http.Request)
	// This will stay in all versions
	HealthCheck(w http.ResponseWriter, r *http.Request)
}

// HealthChecker defines the contract for health check functionality.
// It provides system health monitoring and reporting.
type HealthChecker interface {
	// HealthCheck returns current system health status
	HealthCheck() (status string, details map[string]any, httpStatus int)

	// CalculateNextUpdate returns the next scheduled reload time
	CalculateNextUpdate() time.Time
}

// DataValidator defines the contract for data validation operations.
// It ensures data integrity and consistency.
type DataValidator interface {
	// ValidateCatalog checks structural integrity of a loaded catalog:
	// unique IDs, non-empty names and aliases, one record per entry
	ValidateCatalog(medicines []entities.CatalogEntry, records map[string]entities.ClinicalRecord) error

	// ReportDataQuality generates a data quality report with all issues found
	ReportDataQuality(medicines []entities.CatalogEntry, records map[string]entities.ClinicalRecord,
		doctors []entities.Doctor) *DataQualityReport

	// ValidateInput validates user input strings
	ValidateInput(input string) error

	// ValidateEntryID validates catalog entry identifiers
	ValidateEntryID(input string) (string, error)

	// ValidateLanguageTag validates a BCP-47 style language hint
	ValidateLanguageTag(input string) (string, error)
}
