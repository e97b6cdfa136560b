package client

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

const DefaultPageSize = 12

type SortKey string

const (
	SortByPublishedDate SortKey = "publishedDate"
	SortByRating        SortKey = "rating"
	SortByTitle         SortKey = "title"
)

// FilterState is the client-held listing state. Updates are by value: each
// With* method returns a new state, and every change to a dimension other
// than page or page size snaps the page back to 1.
type FilterState struct {
	Query     string
	Genres    []string
	Authors   []string
	SortBy    SortKey
	Page      int
	PageSize  int
	StartDate *time.Time
	EndDate   *time.Time
}

func NewFilterState() FilterState {
	return FilterState{
		Page:     1,
		PageSize: DefaultPageSize,
	}
}

func (f FilterState) WithQuery(query string) FilterState {
	f.Query = query
	f.Page = 1
	return f
}

func (f FilterState) WithGenres(genres ...string) FilterState {
	f.Genres = genres
	f.Page = 1
	return f
}

func (f FilterState) WithAuthors(authors ...string) FilterState {
	f.Authors = authors
	f.Page = 1
	return f
}

func (f FilterState) WithSortBy(key SortKey) FilterState {
	f.SortBy = key
	f.Page = 1
	return f
}

func (f FilterState) WithDateRange(start, end *time.Time) FilterState {
	f.StartDate = start
	f.EndDate = end
	f.Page = 1
	return f
}

func (f FilterState) WithPage(page int) FilterState {
	if page < 1 {
		page = 1
	}
	f.Page = page
	return f
}

func (f FilterState) WithPageSize(size int) FilterState {
	if size < 1 {
		size = DefaultPageSize
	}
	f.PageSize = size
	return f
}

// Values serializes the state into the listing endpoint's query parameters;
// empty dimensions are omitted.
func (f FilterState) Values() url.Values {
	v := url.Values{}
	if f.Query != "" {
		v.Set("query", f.Query)
	}
	if len(f.Genres) > 0 {
		v.Set("genres", strings.Join(f.Genres, ","))
	}
	if len(f.Authors) > 0 {
		v.Set("authors", strings.Join(f.Authors, ","))
	}
	if f.SortBy != "" {
		v.Set("sortBy", string(f.SortBy))
	}
	if f.StartDate != nil {
		v.Set("startDate", f.StartDate.Format(time.RFC3339))
	}
	if f.EndDate != nil {
		v.Set("endDate", f.EndDate.Format(time.RFC3339))
	}
	if f.Page > 0 {
		v.Set("page", strconv.Itoa(f.Page))
	}
	if f.PageSize > 0 {
		v.Set("pageSize", strconv.Itoa(f.PageSize))
	}
	return v
}
