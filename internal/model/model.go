package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

type Author struct {
	Name string `json:"name" validate:"required"`
	Bio  string `json:"bio,omitempty"`
}

// Authors is stored as a jsonb column.
type Authors []Author

func (a Authors) Value() (driver.Value, error) {
	return json.Marshal(a)
}

func (a *Authors) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	case nil:
		*a = nil
		return nil
	}
	return errors.Errorf("authors: cannot scan %T", src)
}

// Genres is stored as a jsonb column.
type Genres []string

func (g Genres) Value() (driver.Value, error) {
	return json.Marshal(g)
}

func (g *Genres) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, g)
	case string:
		return json.Unmarshal([]byte(v), g)
	case nil:
		*g = nil
		return nil
	}
	return errors.Errorf("genres: cannot scan %T", src)
}

type Book struct {
	ID            string    `json:"id" db:"id"`
	CreatedBy     string    `json:"createdBy" db:"created_by"`
	Title         string    `json:"title" db:"title"`
	Authors       Authors   `json:"authors" db:"authors"`
	Genre         Genres    `json:"genre" db:"genre"`
	Description   string    `json:"description,omitempty" db:"description"`
	PublishedDate time.Time `json:"publishedDate" db:"published_date"`
	Rating        *float64  `json:"rating,omitempty" db:"rating"`
	CoverURL      string    `json:"coverUrl,omitempty" db:"cover_url"`
	Pages         *int      `json:"pages,omitempty" db:"pages"`
	ISBN          string    `json:"isbn,omitempty" db:"isbn"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

type CreateBookRequest struct {
	Title         string   `json:"title" validate:"required"`
	Authors       Authors  `json:"authors" validate:"required,min=1,dive"`
	Genre         Genres   `json:"genre" validate:"required,min=1"`
	Description   string   `json:"description"`
	PublishedDate *Date    `json:"publishedDate"`
	Rating        *float64 `json:"rating" validate:"omitempty,gte=0,lte=5"`
	CoverURL      string   `json:"coverUrl"`
	Pages         *int     `json:"pages" validate:"omitempty,gte=1"`
	ISBN          string   `json:"isbn"`
}

// UpdateBookRequest carries the whitelisted mutable fields. Absent fields
// leave the stored value untouched; unknown fields are dropped on decode.
type UpdateBookRequest struct {
	Title         *string  `json:"title" validate:"omitempty,min=1"`
	Authors       Authors  `json:"authors" validate:"omitempty,min=1,dive"`
	Genre         Genres   `json:"genre" validate:"omitempty,min=1"`
	Description   *string  `json:"description"`
	PublishedDate *Date    `json:"publishedDate"`
	Rating        *float64 `json:"rating" validate:"omitempty,gte=0,lte=5"`
	CoverURL      *string  `json:"coverUrl"`
	Pages         *int     `json:"pages" validate:"omitempty,gte=1"`
	ISBN          *string  `json:"isbn"`
}

// Date accepts both date-only and RFC3339 payloads.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t, err := ParseDate(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Time)
}

func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, errors.Errorf("invalid date %q", s)
	}
	return t, nil
}

type SortKey string

const (
	SortByPublishedDate SortKey = "publishedDate"
	SortByRating        SortKey = "rating"
	SortByTitle         SortKey = "title"
)

// BookFilter is the parsed form of the listing query parameters. Zero values
// impose no constraint.
type BookFilter struct {
	Query     string
	Genres    []string
	Authors   []string
	SortBy    SortKey
	StartDate *time.Time
	EndDate   *time.Time
}

const DefaultPageSize = 12

type Page struct {
	Number int
	Size   int
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Normalize clamps out-of-range values to their defaults.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > 100 {
		p.Size = 100
	}
	return p
}

type Meta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
}

// NewMeta derives the pagination metadata: totalPages = ceil(total/pageSize),
// zero when nothing matched.
func NewMeta(total int, page Page) Meta {
	totalPages := 0
	if total > 0 {
		totalPages = (total + page.Size - 1) / page.Size
	}
	return Meta{
		Total:      total,
		Page:       page.Number,
		PageSize:   page.Size,
		TotalPages: totalPages,
	}
}

type ListBooks struct {
	Data []Book `json:"data"`
	Meta Meta   `json:"meta"`
}

type User struct {
	ID           string    `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"-" db:"created_at"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type BookEvent struct {
	Action string    `json:"action"`
	BookID string    `json:"bookId"`
	UserID string    `json:"userId"`
	At     time.Time `json:"at"`
}

const (
	BookCreated = "created"
	BookUpdated = "updated"
	BookDeleted = "deleted"
)
