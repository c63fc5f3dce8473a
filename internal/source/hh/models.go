package hh

// SearchResponse is the /vacancies search payload.
type SearchResponse struct {
	Items   []Vacancy `json:"items"`
	Found   int       `json:"found"`
	Pages   int       `json:"pages"`
	PerPage int       `json:"per_page"`
	Page    int       `json:"page"`
}

// Vacancy is shared by the search summary and the detail payload. Detail
// responses fill Description, KeySkills and ProfessionalRoles.
type Vacancy struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	AlternateURL      string    `json:"alternate_url"`
	Description       string    `json:"description"`
	Employer          *Employer `json:"employer"`
	Area              *Named    `json:"area"`
	Salary            *Salary   `json:"salary"`
	Schedule          *IDName   `json:"schedule"`
	KeySkills         []Named   `json:"key_skills"`
	ProfessionalRoles []Named   `json:"professional_roles"`
	PublishedAt       string    `json:"published_at"`
	Snippet           *Snippet  `json:"snippet"`
}

type Employer struct {
	Name string `json:"name"`
}

type Named struct {
	Name string `json:"name"`
}

type IDName struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Salary struct {
	From     *float64 `json:"from"`
	To       *float64 `json:"to"`
	Currency string   `json:"currency"`
}

type Snippet struct {
	Requirement    *string `json:"requirement"`
	Responsibility *string `json:"responsibility"`
}
