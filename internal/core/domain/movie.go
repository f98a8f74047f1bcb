package domain

import "time"

// Classification is the categorical age rating attached to a movie.
type Classification string

const (
	ClassATP    Classification = "ATP"
	ClassPlus7  Classification = "+7"
	ClassPlus13 Classification = "+13"
	ClassPlus16 Classification = "+16"
	ClassPlus18 Classification = "+18"
)

// classificationAges maps each classification to its numeric age threshold.
var classificationAges = map[Classification]int{
	ClassATP:    0,
	ClassPlus7:  7,
	ClassPlus13: 13,
	ClassPlus16: 16,
	ClassPlus18: 18,
}

// ParseClassification maps a raw string onto a Classification.
func ParseClassification(s string) (Classification, bool) {
	if _, ok := classificationAges[Classification(s)]; ok {
		return Classification(s), true
	}
	return "", false
}

// Valid reports whether the classification belongs to the closed set.
func (c Classification) Valid() bool {
	_, ok := classificationAges[c]
	return ok
}

// AgeRestriction returns the numeric age threshold implied by the
// classification. Unknown classifications map to 0.
func (c Classification) AgeRestriction() int {
	return classificationAges[c]
}

// ChildAgeCeiling is the highest age restriction visible to a child profile.
const ChildAgeCeiling = 7

// Movie is a catalog entry. Classification and AgeRestriction are kept
// consistent on every write: AgeRestriction is always derived from
// Classification, never set independently.
type Movie struct {
	ID                 string         `json:"id"`
	Title              string         `json:"title"`
	Genre              []string       `json:"genre"`
	Director           string         `json:"director,omitempty"`
	Cast               []string       `json:"cast"`
	ReleaseYear        int            `json:"release_year"`
	Duration           int            `json:"duration,omitempty"`
	Rating             float64        `json:"rating"`
	Classification     Classification `json:"classification"`
	AgeRestriction     int            `json:"age_restriction"`
	Synopsis           string         `json:"synopsis,omitempty"`
	PosterURL          string         `json:"poster_url,omitempty"`
	TrailerURL         string         `json:"trailer_url,omitempty"`
	StreamURL          string         `json:"stream_url,omitempty"`
	DownloadURL        string         `json:"download_url,omitempty"`
	Language           string         `json:"language"`
	Subtitles          []string       `json:"subtitles"`
	AvailableLanguages []string       `json:"available_languages"`
	AddedBy            string         `json:"added_by,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}
