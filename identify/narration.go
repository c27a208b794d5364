package identify

import (
	"fmt"
	"strings"

	"github.com/medassist/medassist-api/catalog/entities"
)

// NarrationText builds the ordered utterance list announcing an identified
// medicine. Empty parts are skipped so the sequence only contains sentences
// worth speaking.
func NarrationText(record *entities.ClinicalRecord) []string {
	if record == nil {
		return nil
	}

	parts := make([]string, 0, 9)
	parts = append(parts, fmt.Sprintf("Medicine identified: %s.", record.MedicineName))
	parts = append(parts, "Identified using OCR text matching from medicine packaging.")

	if record.BrandName != "" {
		parts = append(parts, fmt.Sprintf("Brand: %s.", record.BrandName))
	}
	if len(record.Indications) > 0 {
		uses := record.Indications
		if len(uses) > 2 {
			uses = uses[:2]
		}
		parts = append(parts, fmt.Sprintf("This medicine is used for %s.", strings.Join(uses, " and ")))
	}
	if dose, ok := record.DosageByAge["adults"]; ok && dose != "" {
		parts = append(parts, fmt.Sprintf("Adult dosage: %s.", dose))
	}
	if record.WhenToUse.Timing != "" {
		parts = append(parts, fmt.Sprintf("Take it %s.", strings.ToLower(record.WhenToUse.Timing)))
	}
	if record.WhenToUse.MaximumDailyDose != "" {
		parts = append(parts, fmt.Sprintf("Maximum daily dose: %s.", record.WhenToUse.MaximumDailyDose))
	}
	if len(record.CommonSideEffects) > 0 {
		effects := record.CommonSideEffects
		if len(effects) > 3 {
			effects = effects[:3]
		}
		parts = append(parts, fmt.Sprintf("Common side effects include %s.", strings.Join(effects, ", ")))
	}
	if len(record.Warnings) > 0 {
		parts = append(parts, ensureSentence("Warning: "+record.Warnings[0]))
	}
	if record.AIRecommendation != "" {
		parts = append(parts, ensureSentence(record.AIRecommendation))
	}
	return parts
}

// NarrationFailureText builds the utterance announcing a failed attempt.
func NarrationFailureText(result *Result) []string {
	if result == nil || result.Identified {
		return nil
	}
	parts := []string{ensureSentence(result.Message)}
	if len(result.Suggestions) > 0 {
		names := make([]string, 0, len(result.Suggestions))
		for _, s := range result.Suggestions {
			names = append(names, s.GenericName)
		}
		parts = append(parts, fmt.Sprintf("Did you mean %s?", strings.Join(names, ", ")))
	}
	return parts
}

func ensureSentence(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	if strings.HasSuffix(s, ".") || strings.HasSuffix(s, "?") || strings.HasSuffix(s, "!") {
		return s
	}
	return s + "."
}
