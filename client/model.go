package client

import "time"

// Wire types mirror the service's JSON surface.

type Author struct {
	Name string `json:"name"`
	Bio  string `json:"bio,omitempty"`
}

type Book struct {
	ID            string    `json:"id"`
	CreatedBy     string    `json:"createdBy"`
	Title         string    `json:"title"`
	Authors       []Author  `json:"authors"`
	Genre         []string  `json:"genre"`
	Description   string    `json:"description,omitempty"`
	PublishedDate time.Time `json:"publishedDate"`
	Rating        *float64  `json:"rating,omitempty"`
	CoverURL      string    `json:"coverUrl,omitempty"`
	Pages         *int      `json:"pages,omitempty"`
	ISBN          string    `json:"isbn,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type Meta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
}

type ListBooks struct {
	Data []Book `json:"data"`
	Meta Meta   `json:"meta"`
}

type BookInput struct {
	Title         string     `json:"title,omitempty"`
	Authors       []Author   `json:"authors,omitempty"`
	Genre         []string   `json:"genre,omitempty"`
	Description   string     `json:"description,omitempty"`
	PublishedDate *time.Time `json:"publishedDate,omitempty"`
	Rating        *float64   `json:"rating,omitempty"`
	CoverURL      string     `json:"coverUrl,omitempty"`
	Pages         *int       `json:"pages,omitempty"`
	ISBN          string     `json:"isbn,omitempty"`
}

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}
