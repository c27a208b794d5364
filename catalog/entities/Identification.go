package entities

import "time"

// Identification is one completed identification attempt, kept in the bounded
// in-memory history. Outcome is "identified" for successes, otherwise the
// not-found reason ("no_text_extracted", "no_confident_match",
// "record_missing").
type Identification struct {
	EntryID      string    `json:"entryId,omitempty"`
	MedicineName string    `json:"medicineName,omitempty"`
	Outcome      string    `json:"outcome"`
	Confidence   float64   `json:"confidence"`
	MatchScore   int       `json:"matchScore"`
	Method       string    `json:"method"`
	At           time.Time `json:"at"`
}
