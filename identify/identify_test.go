package identify

import (
	"context"
	"errors"
	"testing"

	"github.com/medassist/medassist-api/catalog/entities"
	"github.com/medassist/medassist-api/data"
	ocrmock "github.com/medassist/medassist-api/ocr/mock"
)

func newTestStore() *data.DataContainer {
	store := data.NewDataContainer()
	medicines := []entities.CatalogEntry{
		{ID: "MED001", GenericName: "Paracetamol", BrandAliases: []string{"crocin", "tylenol"}},
		{ID: "MED002", GenericName: "Aspirin", BrandAliases: []string{"bayer", "disprin"}},
	}
	records := map[string]entities.ClinicalRecord{
		"MED001": {
			MedicineName:           "Paracetamol",
			BrandName:              "Crocin / Tylenol",
			ConfidenceScoreDefault: 0.95,
		},
		"MED002": {
			MedicineName:           "Aspirin",
			BrandName:              "Bayer / Disprin",
			ConfidenceScoreDefault: 0.95,
		},
	}
	store.UpdateData(medicines, records, nil)
	return store
}

func TestIdentify_Success(t *testing.T) {
	store := newTestStore()
	engine := &ocrmock.Engine{Text: "CROCIN Advance\nParacetamol 500mg"}
	identifier := NewIdentifier(engine, store)

	result, err := identifier.Identify(context.Background(), []byte("fake-image"))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if !result.Identified {
		t.Fatalf("Expected identification, got reason %s", result.Reason)
	}
	if result.EntryID != "MED001" {
		t.Errorf("Expected MED001, got %s", result.EntryID)
	}
	if result.Method != MethodOCRTextMatch {
		t.Errorf("Expected method %s, got %s", MethodOCRTextMatch, result.Method)
	}
	if result.Record == nil || result.Record.MedicineName != "Paracetamol" {
		t.Errorf("Expected Paracetamol record, got %+v", result.Record)
	}
	if result.Confidence != 0.95 {
		t.Errorf("Expected confidence 0.95, got %f", result.Confidence)
	}
	if result.MatchScore <= 0 {
		t.Errorf("Expected positive match score, got %d", result.MatchScore)
	}
	if result.ExtractedText == "" {
		t.Error("Expected extracted text to be echoed back")
	}
	if engine.Calls() != 1 {
		t.Errorf("Expected 1 OCR call, got %d", engine.Calls())
	}
}

func TestIdentify_EngineError(t *testing.T) {
	store := newTestStore()
	engineErr := errors.New("tesseract unavailable")
	engine := &ocrmock.Engine{Err: engineErr}
	identifier := NewIdentifier(engine, store)

	result, err := identifier.Identify(context.Background(), []byte("fake-image"))
	if err == nil {
		t.Fatal("Expected error from failing engine")
	}
	if !errors.Is(err, engineErr) {
		t.Errorf("Expected wrapped engine error, got: %v", err)
	}
	if result != nil {
		t.Errorf("Expected nil result on engine failure, got %+v", result)
	}
	if len(store.GetHistory()) != 0 {
		t.Error("Expected no history entry for an engine failure")
	}
}

func TestIdentify_NoTextExtracted(t *testing.T) {
	store := newTestStore()
	engine := &ocrmock.Engine{Text: "   \n\t "}
	identifier := NewIdentifier(engine, store)

	result, err := identifier.Identify(context.Background(), []byte("fake-image"))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if result.Identified {
		t.Fatal("Expected no identification for empty text")
	}
	if result.Reason != OutcomeNoTextExtracted {
		t.Errorf("Expected reason %s, got %s", OutcomeNoTextExtracted, result.Reason)
	}
	if result.Message == "" {
		t.Error("Expected a user-facing message")
	}
}

func TestIdentifyText_NoConfidentMatch(t *testing.T) {
	store := newTestStore()
	identifier := NewIdentifier(&ocrmock.Engine{}, store)

	result := identifier.IdentifyText("completely unrelated packaging text")

	if result.Identified {
		t.Fatal("Expected no identification for unrelated text")
	}
	if result.Reason != OutcomeNoConfidentMatch {
		t.Errorf("Expected reason %s, got %s", OutcomeNoConfidentMatch, result.Reason)
	}
	if result.ExtractedText == "" {
		t.Error("Expected extracted text to be echoed back")
	}
}

func TestIdentifyText_Suggestions(t *testing.T) {
	store := newTestStore()
	identifier := NewIdentifier(&ocrmock.Engine{}, store)

	// Close misspelling: no exact token overlap, but phonetically close.
	result := identifier.IdentifyText("paracetamoll tablets")

	if result.Identified {
		t.Fatal("Expected no identification for a misspelling")
	}
	if len(result.Suggestions) == 0 {
		t.Fatal("Expected suggestions for a close misspelling")
	}
	if result.Suggestions[0].EntryID != "MED001" {
		t.Errorf("Expected MED001 suggested, got %s", result.Suggestions[0].EntryID)
	}
}

func TestIdentifyText_RecordMissing(t *testing.T) {
	store := data.NewDataContainer()
	store.UpdateData(
		[]entities.CatalogEntry{{ID: "MED001", GenericName: "Paracetamol"}},
		map[string]entities.ClinicalRecord{},
		nil,
	)
	identifier := NewIdentifier(&ocrmock.Engine{}, store)

	result := identifier.IdentifyText("paracetamol")

	if result.Identified {
		t.Fatal("Expected no identification when the record is missing")
	}
	if result.Reason != OutcomeRecordMissing {
		t.Errorf("Expected reason %s, got %s", OutcomeRecordMissing, result.Reason)
	}
}

func TestIdentify_HistoryRecorded(t *testing.T) {
	store := newTestStore()
	identifier := NewIdentifier(&ocrmock.Engine{}, store)

	identifier.IdentifyText("crocin paracetamol")
	identifier.IdentifyText("nothing matches here")

	history := store.GetHistory()
	if len(history) != 2 {
		t.Fatalf("Expected 2 history entries, got %d", len(history))
	}

	// History is newest first.
	if history[0].Outcome != OutcomeNoConfidentMatch {
		t.Errorf("Expected newest entry outcome %s, got %s", OutcomeNoConfidentMatch, history[0].Outcome)
	}
	if history[1].Outcome != OutcomeIdentified {
		t.Errorf("Expected older entry outcome %s, got %s", OutcomeIdentified, history[1].Outcome)
	}
	if history[1].EntryID != "MED001" {
		t.Errorf("Expected EntryID MED001, got %s", history[1].EntryID)
	}
	if history[1].MedicineName != "Paracetamol" {
		t.Errorf("Expected medicine name Paracetamol, got %s", history[1].MedicineName)
	}
	if history[1].At.IsZero() {
		t.Error("Expected a timestamp on the history entry")
	}
}

func TestIdentify_ContextCancelled(t *testing.T) {
	store := newTestStore()
	engine := &ocrmock.Engine{Text: "crocin"}
	identifier := NewIdentifier(engine, store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := identifier.Identify(ctx, []byte("fake-image")); err == nil {
		t.Error("Expected error for cancelled context")
	}
}
