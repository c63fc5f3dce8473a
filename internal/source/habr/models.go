package habr

// ListResponse is the frontend vacancies list payload.
type ListResponse struct {
	List []Vacancy `json:"list"`
	Meta Meta      `json:"meta"`
}

type Meta struct {
	TotalResults int `json:"totalResults"`
	TotalPages   int `json:"totalPages"`
	CurrentPage  int `json:"currentPage"`
	PerPage      int `json:"perPage"`
}

type Vacancy struct {
	ID            int64    `json:"id"`
	Href          string   `json:"href"`
	Title         string   `json:"title"`
	Company       *Titled  `json:"company"`
	Salary        *Salary  `json:"salary"`
	Locations     []Titled `json:"locations"`
	RemoteWork    bool     `json:"remoteWork"`
	Employment    string   `json:"employment"`
	Skills        []Titled `json:"skills"`
	Divisions     []Titled `json:"divisions"`
	PublishedDate *Date    `json:"publishedDate"`
}

type Titled struct {
	Title string `json:"title"`
}

type Salary struct {
	From      *float64 `json:"from"`
	To        *float64 `json:"to"`
	Currency  string   `json:"currency"`
	Formatted string   `json:"formatted"`
}

type Date struct {
	Date string `json:"date"`
}
