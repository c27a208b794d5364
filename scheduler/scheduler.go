// Package scheduler provides automated catalog reloads and health monitoring
// for the medassist API. It handles cron-based reloads of the YAML data files
// and coordinates refresh operations with the data container using dependency injection.
package scheduler

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/medassist/medassist-api/interfaces"
	"github.com/medassist/medassist-api/logging"
	"github.com/medassist/medassist-api/validation"
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// Scheduler handles catalog reloads and health monitoring using dependency injection
type Scheduler struct {
	dataStore interfaces.DataStore
	loader    interfaces.CatalogLoader
	scheduler *gocron.Scheduler
}

// NewScheduler creates a new scheduler instance with injected dependencies
func NewScheduler(dataStore interfaces.DataStore, loader interfaces.CatalogLoader) *Scheduler {
	return &Scheduler{
		dataStore: dataStore,
		loader:    loader,
		scheduler: gocron.NewScheduler(time.Local),
	}
}

// Start performs the initial load and schedules recurring reloads.
// The initial load is fatal on error so the server never starts without data.
func (s *Scheduler) Start() error {
	if err := s.reloadData(); err != nil {
		logging.Error("Failed to perform initial data load", "error", err)
		return fmt.Errorf("initial data load failed: %w", err)
	}

	// Schedule reloads at 06:00 and 18:00 daily
	_, err := s.scheduler.Every(1).Days().At("06:00;18:00").Do(func() {
		if err := s.reloadData(); err != nil {
			logging.Error("Failed to reload catalog", "error", err)
		}
	})

	if err != nil {
		logging.Error("Failed to schedule reloads", "error", err)
		return fmt.Errorf("failed to schedule reloads: %w", err)
	}

	s.scheduler.StartAsync()

	// Start health monitoring
	s.startHealthMonitoring()

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// reloadData performs a complete catalog reload using injected dependencies.
// A reload that fails validation leaves the previous data in place.
func (s *Scheduler) reloadData() error {
	// Prevent concurrent reloads
	if !s.dataStore.BeginUpdate() {
		logging.Info("Reload already in progress, skipping...")
		return nil
	}
	defer s.dataStore.EndUpdate()

	logging.Info(fmt.Sprintf("Starting catalog reload at: %s", time.Now().Format(time.RFC3339)))
	start := time.Now()

	newMedicines, newRecords, err := s.loader.LoadMedicines()
	if err != nil {
		logging.Error("Failed to load medicine catalog", "error", err)
		return fmt.Errorf("failed to load medicine catalog: %w", err)
	}

	newDoctors, err := s.loader.LoadDoctors()
	if err != nil {
		logging.Error("Failed to load doctor directory", "error", err)
		return fmt.Errorf("failed to load doctor directory: %w", err)
	}

	validator := validation.NewDataValidator()
	if err := validator.ValidateCatalog(newMedicines, newRecords); err != nil {
		logging.Error("Catalog failed validation, keeping previous data", "error", err)
		return fmt.Errorf("catalog validation failed: %w", err)
	}

	report := validator.ReportDataQuality(newMedicines, newRecords, newDoctors)

	if len(report.DuplicateIDs) > 0 {
		logging.Warn("Duplicate entry IDs detected",
			"total", len(report.DuplicateIDs),
			"id_list", report.DuplicateIDs,
		)
	}

	if len(report.EntriesWithoutAliases) > 0 {
		logging.Warn("Catalog entries without brand aliases",
			"count", len(report.EntriesWithoutAliases),
			"id_list", report.EntriesWithoutAliases,
		)
	}

	if report.RecordsWithoutWarnings > 0 {
		logging.Warn("Clinical records without warnings", "count", report.RecordsWithoutWarnings)
	}

	if report.DoctorsWithoutSpecialty > 0 {
		logging.Warn("Doctors without any specialty", "count", report.DoctorsWithoutSpecialty)
	}

	// Atomic update using injected data store
	s.dataStore.UpdateData(newMedicines, newRecords, newDoctors)

	elapsed := time.Since(start)
	logging.Info("Catalog reload completed",
		"duration", elapsed.String(),
		"medicine_count", len(newMedicines),
		"doctor_count", len(newDoctors))

	return nil
}

// startHealthMonitoring monitors the freshness of the catalog data
func (s *Scheduler) startHealthMonitoring() {
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			lastUpdate := s.dataStore.GetLastUpdated()
			if time.Since(lastUpdate) > 25*time.Hour {
				logging.Warn("Catalog hasn't been reloaded in over 25 hours")
			}
		}
	}()
}

// CalculateNextUpdate returns the next scheduled reload time
func CalculateNextUpdate() time.Time {
	now := time.Now()

	sixAM := time.Date(now.Year(), now.Month(), now.Day(), 6, 0, 0, 0, now.Location())
	sixPM := time.Date(now.Year(), now.Month(), now.Day(), 18, 0, 0, 0, now.Location())

	if now.Before(sixAM) {
		return sixAM
	}
	if now.Before(sixPM) {
		return sixPM
	}

	tomorrow := now.AddDate(0, 0, 1)
	return time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 6, 0, 0, 0, tomorrow.Location())
}
