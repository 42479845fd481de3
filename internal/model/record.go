package model

import "strings"

// Field names a mergeable attribute of a business record.
type Field string

// Mergeable fields tracked in BusinessRecord.Provenance.
const (
	FieldName        Field = "name"
	FieldCategory    Field = "category"
	FieldAddress     Field = "address"
	FieldArea        Field = "area"
	FieldEmirate     Field = "emirate"
	FieldPhone       Field = "phone"
	FieldEmail       Field = "email"
	FieldWebsite     Field = "website"
	FieldDescription Field = "description"
	FieldRating      Field = "rating"
	FieldReviewCount Field = "review_count"
	FieldCoordinates Field = "coordinates"
	FieldHours       Field = "hours"
)

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// ContactPerson is a named individual found for a business.
type ContactPerson struct {
	Name  string `json:"name" yaml:"name"`
	Title string `json:"title,omitempty" yaml:"title"`
	Email string `json:"email,omitempty" yaml:"email"`
	Phone string `json:"phone,omitempty" yaml:"phone"`
}

// RawRecord is one listing as reported by a single source. Every field is
// optional; empty strings, nil pointers and empty slices mean absent.
type RawRecord struct {
	Source     string  `json:"source"`
	Confidence float64 `json:"confidence"`

	Name        string       `json:"name,omitempty" yaml:"name"`
	Category    string       `json:"category,omitempty" yaml:"category"`
	Address     string       `json:"address,omitempty" yaml:"address"`
	Area        string       `json:"area,omitempty" yaml:"area"`
	Emirate     string       `json:"emirate,omitempty" yaml:"emirate"`
	Phone       string       `json:"phone,omitempty" yaml:"phone"`
	Email       string       `json:"email,omitempty" yaml:"email"`
	Website     string       `json:"website,omitempty" yaml:"website"`
	Description string       `json:"description,omitempty" yaml:"description"`
	Rating      *float64     `json:"rating,omitempty" yaml:"rating"`
	ReviewCount *int         `json:"review_count,omitempty" yaml:"review_count"`
	Coordinates *Coordinates `json:"coordinates,omitempty" yaml:"coordinates"`
	Hours       []string     `json:"hours,omitempty" yaml:"hours"`

	AdditionalEmails []string        `json:"additional_emails,omitempty" yaml:"additional_emails"`
	SocialProfiles   []string        `json:"social_profiles,omitempty" yaml:"social_profiles"`
	ContactPersons   []ContactPerson `json:"contact_persons,omitempty" yaml:"contact_persons"`
}

// Provenance records which source last set a field and with what weight.
type Provenance struct {
	Source string  `json:"source"`
	Weight float64 `json:"weight"`
}

// BusinessRecord is the canonical, merged view of one real-world business
// within a single run.
type BusinessRecord struct {
	ID string `json:"id"`

	Name        string       `json:"name"`
	Category    string       `json:"category,omitempty"`
	Address     string       `json:"address,omitempty"`
	Area        string       `json:"area,omitempty"`
	Emirate     string       `json:"emirate,omitempty"`
	Phone       string       `json:"phone,omitempty"`
	Email       string       `json:"email,omitempty"`
	Website     string       `json:"website,omitempty"`
	Description string       `json:"description,omitempty"`
	Rating      *float64     `json:"rating,omitempty"`
	ReviewCount *int         `json:"review_count,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	Hours       []string     `json:"hours,omitempty"`

	AdditionalEmails []string        `json:"additional_emails,omitempty"`
	SocialProfiles   []string        `json:"social_profiles,omitempty"`
	ContactPersons   []ContactPerson `json:"contact_persons,omitempty"`

	Provenance  map[Field]Provenance `json:"provenance"`
	DataSources []string             `json:"data_sources"`

	QualityScore int        `json:"quality_score"`
	LeadScore    *LeadScore `json:"lead_score,omitempty"`

	WebsiteAnalysis *WebsiteAnalysis `json:"website_analysis,omitempty"`
	Classification  *Classification  `json:"classification,omitempty"`
}

// LeadTotal returns the lead score total, or -1 when the record has not been
// lead scored.
func (r *BusinessRecord) LeadTotal() int {
	if r.LeadScore == nil {
		return -1
	}
	return r.LeadScore.Total
}

// HasFullAddress reports whether the record carries a structured address
// with both area and emirate.
func (r *BusinessRecord) HasFullAddress() bool {
	return strings.TrimSpace(r.Address) != "" &&
		strings.TrimSpace(r.Area) != "" &&
		strings.TrimSpace(r.Emirate) != ""
}

// Clone returns a deep copy so enrichers can work on a record without
// touching the caller's value.
func (r BusinessRecord) Clone() BusinessRecord {
	c := r
	if r.Rating != nil {
		v := *r.Rating
		c.Rating = &v
	}
	if r.ReviewCount != nil {
		v := *r.ReviewCount
		c.ReviewCount = &v
	}
	if r.Coordinates != nil {
		v := *r.Coordinates
		c.Coordinates = &v
	}
	c.Hours = cloneStrings(r.Hours)
	c.AdditionalEmails = cloneStrings(r.AdditionalEmails)
	c.SocialProfiles = cloneStrings(r.SocialProfiles)
	if r.ContactPersons != nil {
		c.ContactPersons = append([]ContactPerson(nil), r.ContactPersons...)
	}
	if r.Provenance != nil {
		c.Provenance = make(map[Field]Provenance, len(r.Provenance))
		for k, v := range r.Provenance {
			c.Provenance[k] = v
		}
	}
	c.DataSources = cloneStrings(r.DataSources)
	if r.LeadScore != nil {
		ls := r.LeadScore.clone()
		c.LeadScore = &ls
	}
	if r.WebsiteAnalysis != nil {
		w := r.WebsiteAnalysis.clone()
		c.WebsiteAnalysis = &w
	}
	if r.Classification != nil {
		v := *r.Classification
		c.Classification = &v
	}
	return c
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}
