// Package handlers provides HTTP request handlers for the medassist API endpoints.
// This file implements the HTTPHandler interface with dependency injection.
package handlers

import (
	"errors"
	"io"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/medassist/medassist-api/catalog/entities"
	"github.com/medassist/medassist-api/identify"
	"github.com/medassist/medassist-api/interfaces"
	"github.com/medassist/medassist-api/logging"
	"github.com/medassist/medassist-api/speech"
)

// maxImageBytes caps how much of an uploaded image is read into memory
const maxImageBytes = 10 << 20

// HTTPHandlerImpl implements the interfaces.HTTPHandler interface
type HTTPHandlerImpl struct {
	dataStore  interfaces.DataStore
	validator  interfaces.DataValidator
	identifier *identify.Identifier
	selector   *speech.Selector
	cloud      *speech.CloudClient
	runtime    *speech.Runtime
}

// NewHTTPHandler creates a new HTTP handler with injected dependencies.
// selector, cloud and runtime may be nil when speech output is disabled;
// the speak endpoint then reports the channel as unavailable.
func NewHTTPHandler(dataStore interfaces.DataStore, validator interfaces.DataValidator,
	identifier *identify.Identifier, selector *speech.Selector, cloud *speech.CloudClient,
	speechRuntime *speech.Runtime) interfaces.HTTPHandler {
	return &HTTPHandlerImpl{
		dataStore:  dataStore,
		validator:  validator,
		identifier: identifier,
		selector:   selector,
		cloud:      cloud,
		runtime:    speechRuntime,
	}
}

// ServeHTTP implements the http.Handler interface
func (h *HTTPHandlerImpl) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// This is a placeholder - the actual routing is handled by chi
	http.Error(w, "Not implemented", http.StatusNotImplemented)
}

// IdentifyMedicine runs the identification pipeline on an uploaded image.
// The image arrives as the "image" field of a multipart form.
func (h *HTTPHandlerImpl) IdentifyMedicine(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("image")
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Missing image upload. Send the photo as the 'image' form field.")
		return
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Could not read the uploaded image")
		return
	}
	if len(image) == 0 {
		RespondWithError(w, http.StatusBadRequest, "Uploaded image is empty")
		return
	}

	result, err := h.identifier.Identify(r.Context(), image)
	if err != nil {
		logging.Error("Identification pipeline failed", "error", err)
		RespondWithError(w, http.StatusBadGateway, "Text extraction failed. Please try again.")
		return
	}

	if !result.Identified {
		RespondWithJSON(w, http.StatusNotFound, result)
		return
	}

	RespondWithJSON(w, http.StatusOK, result)
}

// ServeAllMedicines returns the full catalog joined with clinical records
func (h *HTTPHandlerImpl) ServeAllMedicines(w http.ResponseWriter, r *http.Request) {
	medicines := h.dataStore.GetMedicines()
	records := h.dataStore.GetRecords()

	views := make([]MedicineView, 0, len(medicines))
	for _, entry := range medicines {
		views = append(views, MedicineView{
			CatalogEntry: entry,
			Record:       records[entry.ID],
		})
	}

	RespondWithJSON(w, http.StatusOK, views)
}

// FindMedicineByID finds one medicine by its catalog entry ID
func (h *HTTPHandlerImpl) FindMedicineByID(w http.ResponseWriter, r *http.Request) {
	id, err := h.validator.ValidateEntryID(chi.URLParam(r, "id"))
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	records := h.dataStore.GetRecords()
	record, exists := records[id]
	if !exists {
		RespondWithError(w, http.StatusNotFound, "Medicine not found")
		return
	}

	for _, entry := range h.dataStore.GetMedicines() {
		if entry.ID == id {
			RespondWithJSON(w, http.StatusOK, MedicineView{CatalogEntry: entry, Record: record})
			return
		}
	}

	RespondWithError(w, http.StatusNotFound, "Medicine not found")
}

// FindMedicine searches the catalog by name (case-insensitive substring
// over generic names and brand aliases)
func (h *HTTPHandlerImpl) FindMedicine(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		RespondWithError(w, http.StatusBadRequest, "Missing search term")
		return
	}

	if err := h.validator.ValidateInput(name); err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	needle := strings.ToLower(name)
	medicines := h.dataStore.GetMedicines()
	records := h.dataStore.GetRecords()

	results := make([]MedicineView, 0)
	for _, entry := range medicines {
		if matchesName(entry, needle) {
			results = append(results, MedicineView{CatalogEntry: entry, Record: records[entry.ID]})
		}
	}

	// Always return 200 with results array (empty if no matches)
	RespondWithJSON(w, http.StatusOK, results)
}

func matchesName(entry entities.CatalogEntry, lowerNeedle string) bool {
	if strings.Contains(strings.ToLower(entry.GenericName), lowerNeedle) {
		return true
	}
	for _, alias := range entry.BrandAliases {
		if strings.Contains(strings.ToLower(alias), lowerNeedle) {
			return true
		}
	}
	return false
}

// FindDoctors searches the doctor directory by symptom and city. City must
// match exactly (case-insensitive); the symptom matches as a substring over
// specialties and specialization.
func (h *HTTPHandlerImpl) FindDoctors(w http.ResponseWriter, r *http.Request) {
	symptom := chi.URLParam(r, "symptom")
	city := chi.URLParam(r, "city")

	if err := h.validator.ValidateInput(symptom); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid symptom: "+err.Error())
		return
	}
	if err := h.validator.ValidateInput(city); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid city: "+err.Error())
		return
	}

	lowerSymptom := strings.ToLower(symptom)
	lowerCity := strings.ToLower(city)

	results := make([]entities.Doctor, 0)
	for _, doctor := range h.dataStore.GetDoctors() {
		if strings.ToLower(doctor.City) != lowerCity {
			continue
		}
		if doctorTreats(doctor, lowerSymptom) {
			results = append(results, doctor)
		}
	}

	RespondWithJSON(w, http.StatusOK, results)
}

func doctorTreats(doctor entities.Doctor, lowerSymptom string) bool {
	if strings.Contains(strings.ToLower(doctor.Specialization), lowerSymptom) {
		return true
	}
	for _, specialty := range doctor.Specialties {
		if strings.Contains(strings.ToLower(specialty), lowerSymptom) {
			return true
		}
	}
	return false
}

// ServeHistory returns recent identification outcomes, most recent first
func (h *HTTPHandlerImpl) ServeHistory(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, h.dataStore.GetHistory())
}

// SpeakText synthesizes one utterance through the cloud channel and returns
// the audio bytes. Local synthesis happens on the device, so when the
// selector picks the local channel the endpoint reports it as unavailable.
func (h *HTTPHandlerImpl) SpeakText(w http.ResponseWriter, r *http.Request) {
	var req speakRequest
	if err := decodeJSONBody(r, &req); err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		RespondWithError(w, http.StatusBadRequest, "Text cannot be empty")
		return
	}
	if len(req.Text) > 2000 {
		RespondWithError(w, http.StatusBadRequest, "Text too long: maximum 2000 characters")
		return
	}

	language := req.Language
	if language == "" {
		language = "en-IN"
	}
	language, err := h.validator.ValidateLanguageTag(language)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if h.selector == nil || h.cloud == nil {
		respondWithErrorCode(w, http.StatusServiceUnavailable, "channel_unavailable",
			"Cloud speech synthesis is not configured")
		return
	}

	if h.selector.Choose(r.Context(), language) != speech.ChannelCloud {
		respondWithErrorCode(w, http.StatusServiceUnavailable, "channel_unavailable",
			"Cloud speech is unavailable for this language, use the device engine")
		return
	}

	if !h.runtime.AudioUnlocked() {
		respondWithErrorCode(w, http.StatusConflict, "audio_locked",
			"Audio output is locked. Unlock it first via POST /speak/unlock.")
		return
	}

	audio, contentType, err := h.cloud.Synthesize(r.Context(), req.Text, language)
	if err != nil {
		logging.Error("Cloud synthesis failed", "error", err, "language", language)
		if errors.Is(err, speech.ErrChannelUnavailable) {
			respondWithErrorCode(w, http.StatusBadGateway, "channel_unavailable",
				"Cloud speech synthesis failed")
			return
		}
		RespondWithError(w, http.StatusBadGateway, "Speech synthesis failed")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(audio)
}

// UnlockAudio marks audio output as unlocked for this runtime. Mirrors the
// user-gesture unlock that browsers require before playback.
func (h *HTTPHandlerImpl) UnlockAudio(w http.ResponseWriter, r *http.Request) {
	if h.runtime == nil {
		respondWithErrorCode(w, http.StatusServiceUnavailable, "channel_unavailable",
			"Speech output is not configured")
		return
	}
	h.runtime.UnlockAudio()
	RespondWithJSON(w, http.StatusOK, map[string]bool{"audioUnlocked": true})
}

// HealthCheck returns server health information
func (h *HTTPHandlerImpl) HealthCheck(w http.ResponseWriter, r *http.Request) {
	// Get memory statistics
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	uptime := time.Since(h.dataStore.GetServerStartTime())

	// Get data statistics
	medicines := h.dataStore.GetMedicines()
	doctors := h.dataStore.GetDoctors()
	lastUpdate := h.dataStore.GetLastUpdated()
	isUpdating := h.dataStore.IsUpdating()
	dataAge := time.Since(lastUpdate)

	// Determine health status based on data availability and age
	var healthStatus string
	var httpStatus int
	switch {
	case len(medicines) == 0:
		healthStatus = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	case dataAge > 24*time.Hour:
		healthStatus = "degraded"
		httpStatus = http.StatusOK
	default:
		healthStatus = "healthy"
		httpStatus = http.StatusOK
	}

	audioUnlocked := h.runtime != nil && h.runtime.AudioUnlocked()

	response := HealthResponse{
		Status:        healthStatus,
		LastUpdate:    lastUpdate.Format(time.RFC3339),
		DataAgeHours:  dataAge.Hours(),
		Uptime:        formatUptimeHuman(uptime),
		UptimeSeconds: uptime.Seconds(),
		Data: map[string]interface{}{
			"api_version": "1.0",
			"medicines":   len(medicines),
			"doctors":     len(doctors),
			"is_updating": isUpdating,
			"next_update": calculateNextUpdate().Format(time.RFC3339),
		},
		Speech: map[string]interface{}{
			"audio_unlocked": audioUnlocked,
			"cloud_enabled":  h.cloud != nil,
		},
		System: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc_mb":       int(m.Alloc / 1024 / 1024),
				"total_alloc_mb": int(m.TotalAlloc / 1024 / 1024),
				"sys_mb":         int(m.Sys / 1024 / 1024),
				"num_gc":         m.NumGC,
			},
		},
	}

	RespondWithJSON(w, httpStatus, response)
}

// HealthResponse defines the structure for consistent JSON ordering
type HealthResponse struct {
	Status        string                 `json:"status"`
	LastUpdate    string                 `json:"last_update"`
	DataAgeHours  float64                `json:"data_age_hours"`
	Uptime        string                 `json:"uptime"`
	UptimeSeconds float64                `json:"uptime_seconds"`
	Data          map[string]interface{} `json:"data"`
	Speech        map[string]interface{} `json:"speech"`
	System        map[string]interface{} `json:"system"`
}
