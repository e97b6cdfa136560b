package client_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bookhub/bookhub-service/client"
)

func TestFilterState_PageReset(t *testing.T) {
	t.Parallel()

	base := client.NewFilterState().WithPage(7)
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		apply    func(client.FilterState) client.FilterState
		wantPage int
	}{
		{"query resets page", func(f client.FilterState) client.FilterState { return f.WithQuery("dune") }, 1},
		{"genres reset page", func(f client.FilterState) client.FilterState { return f.WithGenres("sci-fi") }, 1},
		{"authors reset page", func(f client.FilterState) client.FilterState { return f.WithAuthors("Herbert") }, 1},
		{"sort resets page", func(f client.FilterState) client.FilterState { return f.WithSortBy(client.SortByRating) }, 1},
		{"date range resets page", func(f client.FilterState) client.FilterState { return f.WithDateRange(&start, nil) }, 1},
		{"page size keeps page", func(f client.FilterState) client.FilterState { return f.WithPageSize(24) }, 7},
		{"page moves page", func(f client.FilterState) client.FilterState { return f.WithPage(3) }, 3},
		{"page below one clamps", func(f client.FilterState) client.FilterState { return f.WithPage(0) }, 1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.wantPage, tt.apply(base).Page)
		})
	}
}

func TestFilterState_Immutable(t *testing.T) {
	t.Parallel()

	base := client.NewFilterState()
	derived := base.WithQuery("dune").WithGenres("sci-fi").WithPage(2)

	require.Empty(t, base.Query)
	require.Empty(t, base.Genres)
	require.Equal(t, 1, base.Page)
	require.Equal(t, "dune", derived.Query)
	require.Equal(t, 2, derived.Page)
}

func TestFilterState_Values(t *testing.T) {
	t.Parallel()

	t.Run("defaults carry only pagination", func(t *testing.T) {
		t.Parallel()
		v := client.NewFilterState().Values()
		require.Equal(t, "page=1&pageSize=12", v.Encode())
	})

	t.Run("full state", func(t *testing.T) {
		t.Parallel()
		start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2021, 6, 30, 0, 0, 0, 0, time.UTC)

		v := client.NewFilterState().
			WithQuery("dune").
			WithGenres("sci-fi", "classic").
			WithAuthors("Frank Herbert").
			WithSortBy(client.SortByTitle).
			WithDateRange(&start, &end).
			WithPage(2).
			WithPageSize(24).
			Values()

		require.Equal(t, "dune", v.Get("query"))
		require.Equal(t, "sci-fi,classic", v.Get("genres"))
		require.Equal(t, "Frank Herbert", v.Get("authors"))
		require.Equal(t, "title", v.Get("sortBy"))
		require.Equal(t, "2020-01-01T00:00:00Z", v.Get("startDate"))
		require.Equal(t, "2021-06-30T00:00:00Z", v.Get("endDate"))
		require.Equal(t, "2", v.Get("page"))
		require.Equal(t, "24", v.Get("pageSize"))
	})
}
