// Package catalog loads the static reference data: the medicine catalog with
// its clinical records, and the doctor directory. Both are plain YAML files
// read once at startup and on each scheduled reload, keeping the matcher
// logic decoupled from data maintenance.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/medassist/medassist-api/catalog/entities"
)

// defaultConfidence is used when a record does not state its own default
// confidence score.
const defaultConfidence = 0.5

// medicineDoc is the on-disk shape of one catalog entry: the matchable entry
// fields plus the full clinical record.
type medicineDoc struct {
	ID           string                   `yaml:"id"`
	GenericName  string                   `yaml:"genericName"`
	BrandAliases []string                 `yaml:"brandAliases"`
	Record       *entities.ClinicalRecord `yaml:"record"`
}

type catalogFile struct {
	Medicines []medicineDoc `yaml:"medicines"`
}

type doctorsFile struct {
	Doctors []entities.Doctor `yaml:"doctors"`
}

// FileLoader reads catalog data from YAML files on disk.
type FileLoader struct {
	catalogPath string
	doctorsPath string
}

// NewFileLoader creates a loader for the given file paths.
func NewFileLoader(catalogPath, doctorsPath string) *FileLoader {
	return &FileLoader{
		catalogPath: catalogPath,
		doctorsPath: doctorsPath,
	}
}

// LoadMedicines parses the catalog file and returns the ordered entries plus
// the clinical record map keyed by entry ID.
//
// The 1:1 entry/record invariant is enforced here, at load time: an entry
// without a record block is a malformed catalog and fails the load outright
// rather than surfacing later as a runtime "not found".
func (l *FileLoader) LoadMedicines() ([]entities.CatalogEntry, map[string]entities.ClinicalRecord, error) {
	raw, err := os.ReadFile(filepath.Clean(l.catalogPath))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read catalog file %s: %w", l.catalogPath, err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, nil, fmt.Errorf("failed to parse catalog file %s: %w", l.catalogPath, err)
	}
	if len(file.Medicines) == 0 {
		return nil, nil, fmt.Errorf("catalog file %s contains no medicines", l.catalogPath)
	}

	entries := make([]entities.CatalogEntry, 0, len(file.Medicines))
	records := make(map[string]entities.ClinicalRecord, len(file.Medicines))

	for i, doc := range file.Medicines {
		id := strings.TrimSpace(doc.ID)
		if id == "" {
			return nil, nil, fmt.Errorf("catalog entry %d has an empty id", i)
		}
		if _, dup := records[id]; dup {
			return nil, nil, fmt.Errorf("duplicate catalog id %s", id)
		}
		if strings.TrimSpace(doc.GenericName) == "" {
			return nil, nil, fmt.Errorf("catalog entry %s has an empty generic name", id)
		}
		for _, alias := range doc.BrandAliases {
			if strings.TrimSpace(alias) == "" {
				return nil, nil, fmt.Errorf("catalog entry %s has an empty brand alias", id)
			}
		}
		if doc.Record == nil {
			return nil, nil, fmt.Errorf("catalog entry %s has no clinical record", id)
		}

		record := *doc.Record
		record.MedicineName = doc.GenericName
		if record.ConfidenceScoreDefault <= 0 {
			record.ConfidenceScoreDefault = defaultConfidence
		}

		entries = append(entries, entities.CatalogEntry{
			ID:           id,
			GenericName:  doc.GenericName,
			BrandAliases: doc.BrandAliases,
		})
		records[id] = record
	}

	return entries, records, nil
}

// LoadDoctors parses the doctor directory file. An empty directory is valid;
// a missing file is not.
func (l *FileLoader) LoadDoctors() ([]entities.Doctor, error) {
	raw, err := os.ReadFile(filepath.Clean(l.doctorsPath))
	if err != nil {
		return nil, fmt.Errorf("failed to read doctors file %s: %w", l.doctorsPath, err)
	}

	var file doctorsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse doctors file %s: %w", l.doctorsPath, err)
	}

	for i, d := range file.Doctors {
		if strings.TrimSpace(d.Name) == "" {
			return nil, fmt.Errorf("doctor entry %d has an empty name", i)
		}
		if strings.TrimSpace(d.City) == "" {
			return nil, fmt.Errorf("doctor %s has an empty city", d.Name)
		}
	}

	return file.Doctors, nil
}
