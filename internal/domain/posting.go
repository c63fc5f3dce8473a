package domain

import "time"

type EmploymentType string

const (
	EmploymentRemote   EmploymentType = "remote"
	EmploymentOffice   EmploymentType = "office"
	EmploymentHybrid   EmploymentType = "hybrid"
	EmploymentFullTime EmploymentType = "full_time"
	EmploymentPartTime EmploymentType = "part_time"
	EmploymentFlexible EmploymentType = "flexible"
)

func (e EmploymentType) Valid() bool {
	switch e {
	case EmploymentRemote, EmploymentOffice, EmploymentHybrid,
		EmploymentFullTime, EmploymentPartTime, EmploymentFlexible:
		return true
	}
	return false
}

// Posting is one stored internship/job opportunity.
type Posting struct {
	ID                 int64           `db:"id" json:"id"`
	WebsiteID          int64           `db:"website_id" json:"website_id"`
	ExternalID         *string         `db:"external_id" json:"external_id,omitempty"`
	URL                string          `db:"url" json:"url"`
	Title              string          `db:"title" json:"title"`
	Company            string          `db:"company" json:"company"`
	Position           string          `db:"position" json:"position"`
	Salary             *string         `db:"salary" json:"salary,omitempty"`
	City               *string         `db:"city" json:"city,omitempty"`
	EmploymentType     *EmploymentType `db:"employment_type" json:"employment_type,omitempty"`
	Description        string          `db:"description" json:"description"`
	Keywords           *string         `db:"keywords" json:"keywords,omitempty"`
	SelectionStartDate *time.Time      `db:"selection_start_date" json:"selection_start_date,omitempty"`
	SelectionEndDate   *time.Time      `db:"selection_end_date" json:"selection_end_date,omitempty"`
	Duration           *string         `db:"duration" json:"duration,omitempty"`
	IsArchived         bool            `db:"is_archived" json:"is_archived"`
	ContentHash        string          `db:"content_hash" json:"content_hash"`
	CreatedAt          time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time       `db:"updated_at" json:"updated_at"`
}

// Fields is what a source adapter produced for one posting. A nil pointer
// means the source did not provide the value; it never overwrites stored data.
type Fields struct {
	ExternalID         *string         `json:"external_id,omitempty"`
	URL                string          `json:"url"`
	Title              *string         `json:"title,omitempty"`
	Company            *string         `json:"company,omitempty"`
	Position           *string         `json:"position,omitempty"`
	Salary             *string         `json:"salary,omitempty"`
	City               *string         `json:"city,omitempty"`
	EmploymentType     *EmploymentType `json:"employment_type,omitempty"`
	Description        *string         `json:"description,omitempty"`
	Keywords           *string         `json:"keywords,omitempty"`
	SelectionStartDate *time.Time      `json:"selection_start_date,omitempty"`
	SelectionEndDate   *time.Time      `json:"selection_end_date,omitempty"`
	Duration           *string         `json:"duration,omitempty"`
	IsArchived         *bool           `json:"is_archived,omitempty"`
}

// ContentHash returns the content identity of the incoming fields, treating
// missing values as empty strings.
func (f Fields) ContentHash() string {
	return ContentIdentity(deref(f.Title), deref(f.Company), deref(f.Position), deref(f.Description))
}

func (f Fields) HasExternalID() bool {
	return f.ExternalID != nil && *f.ExternalID != ""
}

type IncomingKind int

const (
	IncomingNew IncomingKind = iota
	IncomingPersisted
)

// Incoming is either a fresh field set or a posting the adapter decided not
// to refetch because it is still fresh.
type Incoming struct {
	Kind    IncomingKind
	Fields  Fields
	Posting *Posting

	// Website overrides the adapter's own website, e.g. one website per host
	// for generic URLs. Nil means the adapter's website.
	Website *Website
}

func NewIncoming(f Fields) Incoming {
	return Incoming{Kind: IncomingNew, Fields: f}
}

func AlreadyPersisted(p *Posting) Incoming {
	return Incoming{Kind: IncomingPersisted, Posting: p}
}

type Website struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	URL       string    `db:"url" json:"url"`
	IsSpecial bool      `db:"is_special" json:"is_special"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// SearchQuery is a saved recurring search.
type SearchQuery struct {
	ID           int64      `db:"id"`
	City         string     `db:"city"`
	Keywords     string     `db:"keywords"`
	MaxPages     int        `db:"max_pages"`
	LastExecuted *time.Time `db:"last_executed"`
	CreatedAt    time.Time  `db:"created_at"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
