package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/medassist/medassist-api/catalog/entities"
	"github.com/medassist/medassist-api/identify"
	ocrmock "github.com/medassist/medassist-api/ocr/mock"
)

func TestRespondWithJSON(t *testing.T) {
	tests := []struct {
		name         string
		code         int
		payload      any
		expectedJSON string
	}{
		{
			name:         "successful response",
			code:         http.StatusOK,
			payload:      map[string]string{"message": "success"},
			expectedJSON: `{"message":"success"}`,
		},
		{
			name:         "empty payload",
			code:         http.StatusOK,
			payload:      nil,
			expectedJSON: `null`,
		},
		{
			name:         "array payload",
			code:         http.StatusOK,
			payload:      []string{"item1", "item2"},
			expectedJSON: `["item1","item2"]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()

			RespondWithJSON(rr, tt.code, tt.payload)

			if rr.Code != tt.code {
				t.Errorf("Expected status %d, got %d", tt.code, rr.Code)
			}

			if ct := rr.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
				t.Errorf("Expected Content-Type application/json; charset=utf-8, got %s", ct)
			}

			if !strings.Contains(rr.Body.String(), tt.expectedJSON) {
				t.Errorf("Expected body to contain %s, got %s", tt.expectedJSON, rr.Body.String())
			}
		})
	}
}

func TestRespondWithError(t *testing.T) {
	rr := httptest.NewRecorder()

	RespondWithError(rr, http.StatusBadRequest, "Invalid input")

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}

	var response map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal JSON: %v", err)
	}

	if response["message"] != "Invalid input" {
		t.Errorf("Expected message 'Invalid input', got %v", response["message"])
	}
	if response["error"] != "Bad Request" {
		t.Errorf("Expected error 'Bad Request', got %v", response["error"])
	}
	if response["code"] != float64(http.StatusBadRequest) {
		t.Errorf("Expected code 400, got %v", response["code"])
	}
}

func TestDecodeJSONBody(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		expectError bool
	}{
		{"valid body", `{"text":"hello","language":"hi-IN"}`, false},
		{"unknown field", `{"text":"hello","volume":2}`, true},
		{"trailing data", `{"text":"hello"}{"text":"again"}`, true},
		{"not JSON", `hello`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/speak", strings.NewReader(tt.body))

			var dst speakRequest
			err := decodeJSONBody(req, &dst)

			if tt.expectError && err == nil {
				t.Error("Expected a decode error")
			}
			if !tt.expectError && err != nil {
				t.Errorf("Expected no error, got: %v", err)
			}
		})
	}
}

func TestIdentifyMedicine_Success(t *testing.T) {
	engine := &ocrmock.Engine{Text: "Paracetamol 500mg Tablets"}
	handler, _ := newTestHandler(engine)

	req := multipartImageRequest(t, []byte("fake image bytes"))
	rr := httptest.NewRecorder()

	handler.IdentifyMedicine(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var result identify.Result
	if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to unmarshal result: %v", err)
	}

	if !result.Identified {
		t.Error("Expected the medicine to be identified")
	}
	if result.EntryID != "MED001" {
		t.Errorf("Expected entry MED001, got %s", result.EntryID)
	}
	if result.Record == nil || result.Record.MedicineName != "Paracetamol" {
		t.Errorf("Expected the Paracetamol record, got %+v", result.Record)
	}
	if result.Method != identify.MethodOCRTextMatch {
		t.Errorf("Expected method %s, got %s", identify.MethodOCRTextMatch, result.Method)
	}
}

func TestIdentifyMedicine_MissingImage(t *testing.T) {
	handler, _ := newTestHandler(&ocrmock.Engine{})

	req := httptest.NewRequest("POST", "/identify", nil)
	rr := httptest.NewRecorder()

	handler.IdentifyMedicine(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "image") {
		t.Errorf("Expected the error to mention the image field, got %s", rr.Body.String())
	}
}

func TestIdentifyMedicine_EmptyImage(t *testing.T) {
	handler, _ := newTestHandler(&ocrmock.Engine{})

	req := multipartImageRequest(t, nil)
	rr := httptest.NewRecorder()

	handler.IdentifyMedicine(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for an empty upload, got %d", rr.Code)
	}
}

func TestIdentifyMedicine_EngineFailure(t *testing.T) {
	engine := &ocrmock.Engine{Err: errors.New("tesseract crashed")}
	handler, _ := newTestHandler(engine)

	req := multipartImageRequest(t, []byte("fake image bytes"))
	rr := httptest.NewRecorder()

	handler.IdentifyMedicine(rr, req)

	if rr.Code != http.StatusBadGateway {
		t.Errorf("Expected status 502, got %d", rr.Code)
	}
}

func TestIdentifyMedicine_NoMatch(t *testing.T) {
	engine := &ocrmock.Engine{Text: "completely unrelated packaging text"}
	handler, _ := newTestHandler(engine)

	req := multipartImageRequest(t, []byte("fake image bytes"))
	rr := httptest.NewRecorder()

	handler.IdentifyMedicine(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("Expected status 404, got %d", rr.Code)
	}

	var result identify.Result
	if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to unmarshal result: %v", err)
	}

	if result.Identified {
		t.Error("Expected identified to be false")
	}
	if result.Reason != identify.OutcomeNoConfidentMatch {
		t.Errorf("Expected reason %s, got %s", identify.OutcomeNoConfidentMatch, result.Reason)
	}
}

func TestIdentifyMedicine_RecordsHistory(t *testing.T) {
	engine := &ocrmock.Engine{Text: "Paracetamol 500mg"}
	handler, container := newTestHandler(engine)

	req := multipartImageRequest(t, []byte("fake image bytes"))
	rr := httptest.NewRecorder()
	handler.IdentifyMedicine(rr, req)

	history := container.GetHistory()
	if len(history) != 1 {
		t.Fatalf("Expected 1 history entry, got %d", len(history))
	}
	if history[0].EntryID != "MED001" {
		t.Errorf("Expected history entry MED001, got %s", history[0].EntryID)
	}
	if history[0].Outcome != identify.OutcomeIdentified {
		t.Errorf("Expected outcome %s, got %s", identify.OutcomeIdentified, history[0].Outcome)
	}
}

func TestServeAllMedicines(t *testing.T) {
	handler, _ := newTestHandler(&ocrmock.Engine{})

	req := httptest.NewRequest("GET", "/medicines", nil)
	rr := httptest.NewRecorder()

	handler.ServeAllMedicines(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	var views []MedicineView
	if err := json.Unmarshal(rr.Body.Bytes(), &views); err != nil {
		t.Fatalf("Failed to unmarshal JSON: %v", err)
	}

	if len(views) != 2 {
		t.Fatalf("Expected 2 medicines, got %d", len(views))
	}
	for _, view := range views {
		if view.Record.MedicineName == "" {
			t.Errorf("Expected a clinical record joined to entry %s", view.ID)
		}
	}
}

func TestFindMedicineByID(t *testing.T) {
	tests := []struct {
		name         string
		id           string
		expectedCode int
		expectError  string
	}{
		{"existing entry", "MED001", http.StatusOK, ""},
		{"lowercase entry normalized", "med002", http.StatusOK, ""},
		{"unknown entry", "MED999", http.StatusNotFound, "Medicine not found"},
		{"malformed id", "not-an-id!", http.StatusBadRequest, ""},
		{"empty id", "", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _ := newTestHandler(&ocrmock.Engine{})

			req := requestWithParam("/medicine/id/"+tt.id, "id", tt.id)
			rr := httptest.NewRecorder()

			handler.FindMedicineByID(rr, req)

			if rr.Code != tt.expectedCode {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedCode, rr.Code, rr.Body.String())
			}

			if tt.expectError != "" {
				var response map[string]any
				if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
					t.Fatalf("Failed to unmarshal JSON: %v", err)
				}
				if response["message"] != tt.expectError {
					t.Errorf("Expected error %s, got %v", tt.expectError, response["message"])
				}
			}

			if tt.expectedCode == http.StatusOK {
				var view MedicineView
				if err := json.Unmarshal(rr.Body.Bytes(), &view); err != nil {
					t.Fatalf("Failed to unmarshal JSON: %v", err)
				}
				if view.Record.MedicineName == "" {
					t.Error("Expected the clinical record in the response")
				}
			}
		})
	}
}

func TestFindMedicine(t *testing.T) {
	tests := []struct {
		name          string
		term          string
		expectedCode  int
		expectedCount int
	}{
		{"generic name substring", "para", http.StatusOK, 1},
		{"brand alias substring", "crocin", http.StatusOK, 1},
		{"case insensitive", "ASPIRIN", http.StatusOK, 1},
		{"no results", "nonexistent", http.StatusOK, 0},
		{"missing search term", "", http.StatusBadRequest, 0},
		{"dangerous input", "<script>alert(1)</script>", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _ := newTestHandler(&ocrmock.Engine{})

			req := requestWithParam("/medicine/"+tt.term, "name", tt.term)
			rr := httptest.NewRecorder()

			handler.FindMedicine(rr, req)

			if rr.Code != tt.expectedCode {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedCode, rr.Code, rr.Body.String())
			}

			if tt.expectedCode == http.StatusOK {
				var results []MedicineView
				if err := json.Unmarshal(rr.Body.Bytes(), &results); err != nil {
					t.Fatalf("Failed to unmarshal JSON: %v", err)
				}
				if len(results) != tt.expectedCount {
					t.Errorf("Expected %d results, got %d", tt.expectedCount, len(results))
				}
			}
		})
	}
}

func TestFindDoctors(t *testing.T) {
	tests := []struct {
		name          string
		symptom       string
		city          string
		expectedCode  int
		expectedCount int
	}{
		{"symptom and city match", "chest pain", "New York", http.StatusOK, 1},
		{"city is case insensitive", "chest pain", "new york", http.StatusOK, 1},
		{"specialization substring", "cardio", "Chicago", http.StatusOK, 1},
		{"city must match exactly", "chest pain", "York", http.StatusOK, 0},
		{"no doctors in the city", "chest pain", "Miami", http.StatusOK, 0},
		{"unknown symptom", "toothache", "New York", http.StatusOK, 0},
		{"dangerous symptom input", "<script>", "New York", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _ := newTestHandler(&ocrmock.Engine{})

			req := requestWithParams("/doctors", map[string]string{
				"symptom": tt.symptom,
				"city":    tt.city,
			})
			rr := httptest.NewRecorder()

			handler.FindDoctors(rr, req)

			if rr.Code != tt.expectedCode {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedCode, rr.Code, rr.Body.String())
			}

			if tt.expectedCode == http.StatusOK {
				var results []entities.Doctor
				if err := json.Unmarshal(rr.Body.Bytes(), &results); err != nil {
					t.Fatalf("Failed to unmarshal JSON: %v", err)
				}
				if len(results) != tt.expectedCount {
					t.Errorf("Expected %d doctors, got %d", tt.expectedCount, len(results))
				}
			}
		})
	}
}

func TestServeHistory(t *testing.T) {
	handler, container := newTestHandler(&ocrmock.Engine{})

	container.AddIdentification(entities.Identification{
		EntryID: "MED001", MedicineName: "Paracetamol",
		Outcome: identify.OutcomeIdentified, At: time.Now(),
	})
	container.AddIdentification(entities.Identification{
		Outcome: identify.OutcomeNoConfidentMatch, At: time.Now(),
	})

	req := httptest.NewRequest("GET", "/history", nil)
	rr := httptest.NewRecorder()

	handler.ServeHistory(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	var history []entities.Identification
	if err := json.Unmarshal(rr.Body.Bytes(), &history); err != nil {
		t.Fatalf("Failed to unmarshal JSON: %v", err)
	}

	if len(history) != 2 {
		t.Fatalf("Expected 2 history entries, got %d", len(history))
	}
	if history[0].Outcome != identify.OutcomeNoConfidentMatch {
		t.Errorf("Expected the most recent entry first, got %s", history[0].Outcome)
	}
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name           string
		populate       bool
		expectedCode   int
		expectedStatus string
	}{
		{"healthy system", true, http.StatusOK, "healthy"},
		{"unhealthy without data", false, http.StatusServiceUnavailable, "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var handler *HTTPHandlerImpl
			if tt.populate {
				handler, _ = newTestHandler(&ocrmock.Engine{})
			} else {
				handler = newEmptyHandler()
			}

			req := httptest.NewRequest("GET", "/health", nil)
			rr := httptest.NewRecorder()

			handler.HealthCheck(rr, req)

			if rr.Code != tt.expectedCode {
				t.Errorf("Expected status %d, got %d", tt.expectedCode, rr.Code)
			}

			var response map[string]any
			if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
				t.Fatalf("Failed to unmarshal JSON: %v", err)
			}

			if response["status"] != tt.expectedStatus {
				t.Errorf("Expected status %s, got %v", tt.expectedStatus, response["status"])
			}

			requiredFields := []string{"status", "last_update", "data_age_hours", "uptime", "uptime_seconds", "data", "speech", "system"}
			for _, field := range requiredFields {
				if _, ok := response[field]; !ok {
					t.Errorf("Response should contain '%s' field", field)
				}
			}

			if uptime, _ := response["uptime"].(string); uptime == "" {
				t.Error("Expected a human-readable uptime string")
			}

			if dataField, ok := response["data"].(map[string]any); ok {
				for _, key := range []string{"api_version", "medicines", "doctors", "is_updating", "next_update"} {
					if _, ok := dataField[key]; !ok {
						t.Errorf("Data should contain '%s' key", key)
					}
				}
			}

			if speechField, ok := response["speech"].(map[string]any); ok {
				for _, key := range []string{"audio_unlocked", "cloud_enabled"} {
					if _, ok := speechField[key]; !ok {
						t.Errorf("Speech should contain '%s' key", key)
					}
				}
			}
		})
	}
}
