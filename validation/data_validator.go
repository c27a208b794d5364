// Package validation provides data validation functionality for the medassist API.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/medassist/medassist-api/catalog/entities"
	"github.com/medassist/medassist-api/interfaces"
	"github.com/medassist/medassist-api/logging"
)

// Pre-compiled regex patterns for performance optimization
// Compiled once at package initialization and reused for all validations
var (
	// Input validation: alphanumeric + safe punctuation
	inputRegex = regexp.MustCompile(`^[a-zA-Z0-9\s\-\.\+']+$`)

	// Entry IDs are uppercase letters followed by digits, like MED001
	entryIDRegex = regexp.MustCompile(`^[A-Z]{2,10}[0-9]{1,6}$`)

	// BCP-47 primary subtag with optional region, like "hi" or "hi-IN"
	languageTagRegex = regexp.MustCompile(`^[a-zA-Z]{2,3}(-[a-zA-Z]{2})?$`)

	// Dangerous patterns as strings (faster than regex for simple substring matching)
	// strings.Contains is 5-10x faster than regex for these patterns
	dangerousPatterns = []string{
		"<script", "</script>", "javascript:", "vbscript:", "onload=", "onerror=",
		"onclick=", "onmouseover=", "onfocus=", "onblur=", "onchange=", "onsubmit=",
		"eval(", "expression(", "url(", "import ", "@import", "binding(", "behavior(",
		// SQL injection patterns
		"' or ", "\" or ", "union select", "drop table", "delete from", "insert into",
		"update set", "--", "/*", "*/", "xp_", "sp_", "exec(", "execute(",
		// Command injection patterns
		"; ", "| ", "& ", "`", "$(", "${", // Command injection
		// Path traversal patterns
		"../", "..\\", "%2e%2e", "file://", // Path traversal
		// LDAP injection patterns
		"*)(", "*|(", "*)%", // LDAP injection
		// NoSQL injection patterns
		"{$ne:", "{$gt:", "{$where:", "{$or:", "{$regex:", "{$expr:", // NoSQL injection
	}
)

// DataValidatorImpl implements the interfaces.DataValidator interface
type DataValidatorImpl struct{}

// NewDataValidator creates a new data validator
func NewDataValidator() interfaces.DataValidator {
	return &DataValidatorImpl{}
}

// ValidateCatalog checks structural integrity of a loaded catalog
func (v *DataValidatorImpl) ValidateCatalog(medicines []entities.CatalogEntry, records map[string]entities.ClinicalRecord) error {
	if len(medicines) == 0 {
		return fmt.Errorf("no catalog entries found")
	}

	idMap := make(map[string]bool)
	for _, entry := range medicines {
		if strings.TrimSpace(entry.ID) == "" {
			return fmt.Errorf("catalog entry with empty id")
		}
		if idMap[entry.ID] {
			return fmt.Errorf("duplicate catalog entry id found: %s", entry.ID)
		}
		idMap[entry.ID] = true

		if strings.TrimSpace(entry.GenericName) == "" {
			return fmt.Errorf("empty generic name for entry %s", entry.ID)
		}
		if len(entry.GenericName) > 200 {
			return fmt.Errorf("generic name too long for entry %s: %d characters", entry.ID, len(entry.GenericName))
		}
		for _, alias := range entry.BrandAliases {
			if strings.TrimSpace(alias) == "" {
				return fmt.Errorf("empty brand alias for entry %s", entry.ID)
			}
			if len(alias) > 200 {
				return fmt.Errorf("brand alias too long for entry %s: %d characters", entry.ID, len(alias))
			}
		}

		// Every entry must carry its clinical record
		if _, ok := records[entry.ID]; !ok {
			return fmt.Errorf("missing clinical record for entry %s", entry.ID)
		}
	}

	// Records without a matching entry are unreachable data
	for id := range records {
		if !idMap[id] {
			logging.Warn("Clinical record without catalog entry", "entryId", id)
		}
	}

	return nil
}

// ReportDataQuality generates a data quality report with all issues found
func (v *DataValidatorImpl) ReportDataQuality(
	medicines []entities.CatalogEntry,
	records map[string]entities.ClinicalRecord,
	doctors []entities.Doctor,
) *interfaces.DataQualityReport {
	report := &interfaces.DataQualityReport{
		DuplicateIDs:          []string{},
		EntriesWithoutAliases: []string{},
	}

	// Check 1: Find all duplicate entry IDs
	idMap := make(map[string]bool)
	for _, entry := range medicines {
		if idMap[entry.ID] {
			report.DuplicateIDs = append(report.DuplicateIDs, entry.ID)
		}
		idMap[entry.ID] = true
	}

	// Check 2: Entries that can only match on the generic name
	for _, entry := range medicines {
		if len(entry.BrandAliases) == 0 {
			report.EntriesWithoutAliases = append(report.EntriesWithoutAliases, entry.ID)
		}
	}

	// Check 3: Records missing advisory content
	for _, record := range records {
		if len(record.Warnings) == 0 {
			report.RecordsWithoutWarnings++
		}
		if len(record.DosageByAge) == 0 {
			report.RecordsWithoutDosage++
		}
	}

	// Check 4: Doctors that symptom search can never find
	for _, doctor := range doctors {
		if len(doctor.Specialties) == 0 && strings.TrimSpace(doctor.Specialization) == "" {
			report.DoctorsWithoutSpecialty++
		}
	}

	return report
}

// ValidateInput validates user input strings with enhanced security
func (v *DataValidatorImpl) ValidateInput(input string) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("input cannot be empty")
	}

	if len(input) < 3 {
		return fmt.Errorf("input too short: minimum 3 characters")
	}

	if len(input) > 50 {
		return fmt.Errorf("input too long: maximum 50 characters")
	}

	// Word count validation to prevent DoS attacks with many short words
	words := strings.Fields(input)
	if len(words) > 6 {
		return fmt.Errorf("search query too complex: maximum 6 words allowed")
	}

	// Check for potentially dangerous patterns using string matching (5-10x faster than regex)
	lowerInput := strings.ToLower(input)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lowerInput, pattern) {
			return fmt.Errorf("input contains potentially dangerous content")
		}
	}

	// Allow only alphanumeric characters, spaces, and safe punctuation
	if !inputRegex.MatchString(input) {
		return fmt.Errorf("input contains invalid characters. Only letters, numbers, spaces, hyphens, apostrophes, periods and plus sign are allowed")
	}

	// Additional checks for repeated characters (potential DoS)
	if v.hasExcessiveRepetition(input) {
		return fmt.Errorf("input contains excessive character repetition")
	}

	return nil
}

// ValidateEntryID validates catalog entry identifiers like MED001.
// Matching is case-insensitive; the normalized uppercase form is returned.
func (v *DataValidatorImpl) ValidateEntryID(input string) (string, error) {
	trimmedInput := strings.TrimSpace(input)
	if trimmedInput == "" {
		return "", fmt.Errorf("input cannot be empty")
	}

	// Reject if original input contained whitespace (spaces, tabs, etc.)
	if len(input) != len(trimmedInput) {
		return "", fmt.Errorf("entry id contains invalid characters")
	}

	id := strings.ToUpper(trimmedInput)
	if !entryIDRegex.MatchString(id) {
		return "", fmt.Errorf("entry id must be letters followed by digits, like MED001")
	}

	return id, nil
}

// ValidateLanguageTag validates a BCP-47 style language hint like "hi-IN".
// The normalized form (lowercase language, uppercase region) is returned.
func (v *DataValidatorImpl) ValidateLanguageTag(input string) (string, error) {
	trimmedInput := strings.TrimSpace(input)
	if trimmedInput == "" {
		return "", fmt.Errorf("language tag cannot be empty")
	}

	if !languageTagRegex.MatchString(trimmedInput) {
		return "", fmt.Errorf("language tag must look like 'en' or 'en-IN', got: %s", trimmedInput)
	}

	parts := strings.SplitN(trimmedInput, "-", 2)
	tag := strings.ToLower(parts[0])
	if len(parts) == 2 {
		tag += "-" + strings.ToUpper(parts[1])
	}
	return tag, nil
}

// hasExcessiveRepetition checks for potential DoS patterns with excessive character repetition
func (v *DataValidatorImpl) hasExcessiveRepetition(input string) bool {
	// Check for the same character repeated more than 10 times consecutively
	for i := 0; i < len(input)-10; i++ {
		allSame := true
		for j := 1; j <= 10; j++ {
			if input[i] != input[i+j] {
				allSame = false
				break
			}
		}
		if allSame {
			return true
		}
	}
	return false
}
