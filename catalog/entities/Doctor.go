package entities

// Doctor is one directory listing, searchable by symptom and city.
type Doctor struct {
	ID              int      `yaml:"id" json:"id"`
	Name            string   `yaml:"name" json:"name"`
	Specialization  string   `yaml:"specialization" json:"specialization"`
	Rating          float64  `yaml:"rating" json:"rating"`
	Reviews         int      `yaml:"reviews" json:"reviews"`
	ExperienceYears int      `yaml:"experienceYears" json:"experienceYears"`
	City            string   `yaml:"city" json:"city"`
	Clinic          string   `yaml:"clinic" json:"clinic"`
	Phone           string   `yaml:"phone" json:"phone"`
	Specialties     []string `yaml:"specialties" json:"specialties"`
}
