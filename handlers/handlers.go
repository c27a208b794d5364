// Package handlers provides HTTP request handlers for the medassist API endpoints.
// It includes handlers for medicine identification, catalog lookup, doctor search,
// speech synthesis, health checks, and response formatting with proper input
// validation and error handling.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/medassist/medassist-api/catalog/entities"
	"github.com/medassist/medassist-api/logging"
)

// MedicineView joins a catalog entry with its clinical record for API output
type MedicineView struct {
	entities.CatalogEntry
	Record entities.ClinicalRecord `json:"record"`
}

// speakRequest is the body of POST /speak
type speakRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// decodeJSONBody decodes a JSON request body, rejecting unknown fields
// and trailing garbage
func decodeJSONBody(r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if decoder.More() {
		return fmt.Errorf("invalid JSON body: unexpected trailing data")
	}
	return nil
}

// RespondWithJSON writes a JSON response with compression optimization
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
	w.WriteHeader(code)
	w.Write(data)
}

// RespondWithError writes a JSON error response
func RespondWithError(w http.ResponseWriter, code int, message string) {
	errorResponse := map[string]interface{}{
		"error":   http.StatusText(code),
		"message": message,
		"code":    code,
	}
	RespondWithJSON(w, code, errorResponse)
}

// respondWithErrorCode writes a JSON error response carrying a stable
// machine-readable code like "audio_locked"
func respondWithErrorCode(w http.ResponseWriter, httpCode int, errorCode, message string) {
	errorResponse := map[string]interface{}{
		"error":   errorCode,
		"message": message,
		"code":    httpCode,
	}
	RespondWithJSON(w, httpCode, errorResponse)
}

// formatUptimeHuman formats duration into a human-readable string
func formatUptimeHuman(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	var parts []string

	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	parts = append(parts, fmt.Sprintf("%ds", seconds))

	return strings.Join(parts, " ")
}

// calculateNextUpdate calculates the next scheduled catalog reload time
func calculateNextUpdate() time.Time {
	now := time.Now()

	// Reloads run at 6:00 AM and 6:00 PM
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
