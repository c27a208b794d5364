// Package identify orchestrates the identification pipeline: OCR text
// extraction, token normalization, catalog matching and clinical record
// lookup. The pipeline is in-memory after the OCR step and is deterministic
// for a fixed catalog.
package identify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/medassist/medassist-api/catalog/entities"
	"github.com/medassist/medassist-api/interfaces"
	"github.com/medassist/medassist-api/logging"
	"github.com/medassist/medassist-api/matcher"
	"github.com/medassist/medassist-api/metrics"
	"github.com/medassist/medassist-api/ocr"
)

// Outcome labels for identification results and history entries.
const (
	OutcomeIdentified       = "identified"
	OutcomeNoTextExtracted  = "no_text_extracted"
	OutcomeNoConfidentMatch = "no_confident_match"
	OutcomeRecordMissing    = "record_missing"
)

// MethodOCRTextMatch is the only identification method currently supported.
const MethodOCRTextMatch = "ocr_text_match"

// Result is the outcome of one identification attempt. Identified tells
// which half of the result is populated: on success Record, Confidence and
// MatchScore are set; otherwise Reason carries the failure cause, Message a
// renderable explanation and Suggestions any near-miss candidates.
type Result struct {
	Identified bool   `json:"identified"`
	Method     string `json:"method"`

	// Success fields
	EntryID    string                  `json:"entryId,omitempty"`
	Record     *entities.ClinicalRecord `json:"record,omitempty"`
	Confidence float64                 `json:"confidence,omitempty"`
	MatchScore int                     `json:"matchScore,omitempty"`

	// Failure fields
	Reason      string               `json:"reason,omitempty"`
	Message     string               `json:"message,omitempty"`
	Suggestions []matcher.Suggestion `json:"suggestions,omitempty"`

	// ExtractedText is the raw OCR output, returned for transparency so
	// callers can show what the engine actually read.
	ExtractedText string `json:"extractedText,omitempty"`
}

// Identifier runs the identification pipeline against the current catalog.
type Identifier struct {
	engine ocr.Engine
	store  interfaces.DataStore
}

// NewIdentifier creates an Identifier backed by the given OCR engine and
// data store.
func NewIdentifier(engine ocr.Engine, store interfaces.DataStore) *Identifier {
	return &Identifier{
		engine: engine,
		store:  store,
	}
}

// Identify runs the full pipeline on one image. An OCR engine failure is
// returned as an error; every other outcome, including "nothing matched",
// is a valid Result. The attempt is recorded in the identification history
// either way.
func (i *Identifier) Identify(ctx context.Context, image []byte) (*Result, error) {
	ocrStart := time.Now()
	text, err := i.engine.ExtractText(ctx, image)
	metrics.OCRDuration.Observe(time.Since(ocrStart).Seconds())
	if err != nil {
		return nil, fmt.Errorf("ocr extraction failed: %w", err)
	}

	result := i.identifyFromText(text)
	i.recordAttempt(result)
	return result, nil
}

// IdentifyText runs the pipeline on already-extracted text. Used by tests
// and by callers that bring their own OCR.
func (i *Identifier) IdentifyText(text string) *Result {
	result := i.identifyFromText(text)
	i.recordAttempt(result)
	return result
}

func (i *Identifier) identifyFromText(text string) *Result {
	if strings.TrimSpace(text) == "" {
		return &Result{
			Identified: false,
			Method:     MethodOCRTextMatch,
			Reason:     OutcomeNoTextExtracted,
			Message:    "No text could be extracted from the image. Try a sharper photo with the label facing the camera.",
		}
	}

	matchStart := time.Now()
	tokens := matcher.Normalize(text)
	tokenSet := matcher.NewTokenSet(tokens)
	catalog := i.store.GetMedicines()

	entryID, score := matcher.Match(tokenSet, catalog)
	metrics.MatchDuration.Observe(time.Since(matchStart).Seconds())
	if entryID == "" {
		suggestions := matcher.Suggest(tokens, catalog)
		return &Result{
			Identified:    false,
			Method:        MethodOCRTextMatch,
			Reason:        OutcomeNoConfidentMatch,
			Message:       "The extracted text did not match any known medicine.",
			Suggestions:   suggestions,
			ExtractedText: text,
		}
	}

	records := i.store.GetRecords()
	record, ok := records[entryID]
	if !ok {
		// The loader guarantees one record per entry, so this only
		// happens if the store was populated by some other path.
		logging.Error("Matched entry has no clinical record", "entryId", entryID)
		return &Result{
			Identified:    false,
			Method:        MethodOCRTextMatch,
			Reason:        OutcomeRecordMissing,
			Message:       "The medicine was recognized but its clinical record is unavailable.",
			ExtractedText: text,
		}
	}

	return &Result{
		Identified:    true,
		Method:        MethodOCRTextMatch,
		EntryID:       entryID,
		Record:        &record,
		Confidence:    record.ConfidenceScoreDefault,
		MatchScore:    score,
		ExtractedText: text,
	}
}

func (i *Identifier) recordAttempt(result *Result) {
	entry := entities.Identification{
		Method: result.Method,
		At:     time.Now(),
	}
	if result.Identified {
		entry.EntryID = result.EntryID
		entry.MedicineName = result.Record.MedicineName
		entry.Outcome = OutcomeIdentified
		entry.Confidence = result.Confidence
		entry.MatchScore = result.MatchScore
	} else {
		entry.Outcome = result.Reason
	}
	metrics.IdentificationTotals.WithLabelValues(entry.Outcome).Inc()
	i.store.AddIdentification(entry)
}
