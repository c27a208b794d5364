package entities

// CatalogEntry is one identifiable drug: the canonical generic name plus the
// brand names it is marketed under. Entries are loaded once at startup and
// never mutated afterwards.
type CatalogEntry struct {
	ID           string   `yaml:"id" json:"id"`
	GenericName  string   `yaml:"genericName" json:"genericName"`
	BrandAliases []string `yaml:"brandAliases" json:"brandAliases"`
}

// WhenToUse groups the usage guidance of a clinical record.
type WhenToUse struct {
	Timing              string `yaml:"timing" json:"timing,omitempty"`
	Frequency           string `yaml:"frequency" json:"frequency,omitempty"`
	MaximumDailyDose    string `yaml:"maximumDailyDose" json:"maximumDailyDose,omitempty"`
	WithFood            string `yaml:"withFood" json:"withFood,omitempty"`
	Duration            string `yaml:"duration" json:"duration,omitempty"`
	SpecialInstructions string `yaml:"specialInstructions" json:"specialInstructions,omitempty"`
}

// ClinicalRecord is the full informational payload for one catalog entry.
// Every CatalogEntry has exactly one ClinicalRecord; individual fields may be
// empty and render as "unknown" rather than failing.
type ClinicalRecord struct {
	MedicineName           string            `yaml:"-" json:"medicineName"`
	BrandName              string            `yaml:"brandName" json:"brandName,omitempty"`
	Dosage                 string            `yaml:"dosage" json:"dosage,omitempty"`
	MedicineType           string            `yaml:"medicineType" json:"medicineType,omitempty"`
	Indications            []string          `yaml:"indications" json:"indications,omitempty"`
	HowItWorks             string            `yaml:"howItWorks" json:"howItWorks,omitempty"`
	CommonSideEffects      []string          `yaml:"commonSideEffects" json:"commonSideEffects,omitempty"`
	SeriousSideEffects     []string          `yaml:"seriousSideEffects" json:"seriousSideEffects,omitempty"`
	DosageByAge            map[string]string `yaml:"dosageByAge" json:"dosageByAge,omitempty"`
	WhenToUse              WhenToUse         `yaml:"whenToUse" json:"whenToUse"`
	Warnings               []string          `yaml:"warnings" json:"warnings,omitempty"`
	AIRecommendation       string            `yaml:"aiRecommendation" json:"aiRecommendation,omitempty"`
	ConfidenceScoreDefault float64           `yaml:"confidenceScoreDefault" json:"confidenceScoreDefault"`
	Manufacturer           string            `yaml:"manufacturer" json:"manufacturer,omitempty"`
}
