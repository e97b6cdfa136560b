package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bookhub/bookhub-service/internal/model"
)

func TestApplyBookFilter(t *testing.T) {
	t.Parallel()

	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		filter   model.BookFilter
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "no filters",
			filter:   model.BookFilter{},
			wantSQL:  "SELECT count(*) FROM books",
			wantArgs: nil,
		},
		{
			name:   "free text matches title, description and author names",
			filter: model.BookFilter{Query: "dune"},
			wantSQL: "SELECT count(*) FROM books WHERE (title ILIKE $1 OR description ILIKE $2 " +
				"OR exists (select 1 from jsonb_array_elements(authors) a where a->>'name' ilike $3))",
			wantArgs: []any{"%dune%", "%dune%", "%dune%"},
		},
		{
			name:   "like metacharacters match literally",
			filter: model.BookFilter{Query: "100%_done"},
			wantSQL: "SELECT count(*) FROM books WHERE (title ILIKE $1 OR description ILIKE $2 " +
				"OR exists (select 1 from jsonb_array_elements(authors) a where a->>'name' ilike $3))",
			wantArgs: []any{`%100\%\_done%`, `%100\%\_done%`, `%100\%\_done%`},
		},
		{
			name:   "genres intersect case-insensitively",
			filter: model.BookFilter{Genres: []string{"Fiction", "HORROR"}},
			wantSQL: "SELECT count(*) FROM books WHERE " +
				"exists (select 1 from jsonb_array_elements_text(genre) g where lower(g) = any($1))",
			wantArgs: []any{[]string{"fiction", "horror"}},
		},
		{
			name:   "author set",
			filter: model.BookFilter{Authors: []string{"Frank Herbert"}},
			wantSQL: "SELECT count(*) FROM books WHERE " +
				"exists (select 1 from jsonb_array_elements(authors) a where lower(a->>'name') = any($1))",
			wantArgs: []any{[]string{"frank herbert"}},
		},
		{
			name:     "date range",
			filter:   model.BookFilter{StartDate: &start, EndDate: &end},
			wantSQL:  "SELECT count(*) FROM books WHERE published_date >= $1 AND published_date <= $2",
			wantArgs: []any{start, end},
		},
		{
			name:   "all dimensions AND together",
			filter: model.BookFilter{Query: "q", Genres: []string{"g"}, StartDate: &start},
			wantSQL: "SELECT count(*) FROM books WHERE (title ILIKE $1 OR description ILIKE $2 " +
				"OR exists (select 1 from jsonb_array_elements(authors) a where a->>'name' ilike $3)) AND " +
				"exists (select 1 from jsonb_array_elements_text(genre) g where lower(g) = any($4)) AND " +
				"published_date >= $5",
			wantArgs: []any{"%q%", "%q%", "%q%", []string{"g"}, start},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			query, args, err := applyBookFilter(qb.Select("count(*)").From(booksTableName), tt.filter).ToSql()
			require.NoError(t, err)
			require.Equal(t, tt.wantSQL, query)
			require.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestOrderBy(t *testing.T) {
	t.Parallel()

	require.Equal(t, "published_date desc", orderBy(""))
	require.Equal(t, "published_date desc", orderBy(model.SortByPublishedDate))
	require.Equal(t, "rating desc nulls last", orderBy(model.SortByRating))
	require.Equal(t, "title asc", orderBy(model.SortByTitle))
}

func TestListQueryPagination(t *testing.T) {
	t.Parallel()

	page := model.Page{Number: 3, Size: 12}.Normalize()
	query, _, err := applyBookFilter(qb.Select(bookColumns).From(booksTableName), model.BookFilter{}).
		OrderBy(orderBy(model.SortByTitle)).
		Limit(uint64(page.Size)).
		Offset(uint64(page.Offset())).
		ToSql()
	require.NoError(t, err)
	require.Contains(t, query, "ORDER BY title asc LIMIT 12 OFFSET 24")
}
