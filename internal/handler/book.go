package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/bookhub/bookhub-service/internal/errs"
	"github.com/bookhub/bookhub-service/internal/model"
	"github.com/bookhub/bookhub-service/pkg/auth"
)

func (h *Handler) ListBooks(c echo.Context) error {
	ctx := c.Request().Context()

	filter := model.BookFilter{
		Query:   c.QueryParam("query"),
		Genres:  splitCSV(c.QueryParam("genres")),
		Authors: splitCSV(c.QueryParam("authors")),
		SortBy:  model.SortKey(c.QueryParam("sortBy")),
	}
	if raw := c.QueryParam("startDate"); raw != "" {
		t, err := model.ParseDate(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "startDate is invalid")
		}
		filter.StartDate = &t
	}
	if raw := c.QueryParam("endDate"); raw != "" {
		t, err := model.ParseDate(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "endDate is invalid")
		}
		filter.EndDate = &t
	}

	// numeric params fall back to their defaults rather than erroring
	page := model.Page{
		Number: atoiDefault(c.QueryParam("page"), 1),
		Size:   atoiDefault(c.QueryParam("pageSize"), model.DefaultPageSize),
	}

	books, err := h.books.ListBooks(ctx, filter, page)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, books)
}

func (h *Handler) GetBook(c echo.Context) error {
	id, err := bookID(c)
	if err != nil {
		return httpError(err)
	}
	book, err := h.books.GetBook(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, book)
}

func (h *Handler) CreateBook(c echo.Context) error {
	var req model.CreateBookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return httpError(err)
	}

	userID := auth.UserID(c.Request().Context())
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthenticated")
	}

	book, err := h.books.CreateBook(c.Request().Context(), userID, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, book)
}

func (h *Handler) UpdateBook(c echo.Context) error {
	id, err := bookID(c)
	if err != nil {
		return httpError(err)
	}
	var req model.UpdateBookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return httpError(err)
	}

	userID := auth.UserID(c.Request().Context())
	book, err := h.books.UpdateBook(c.Request().Context(), userID, id, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, book)
}

func (h *Handler) DeleteBook(c echo.Context) error {
	id, err := bookID(c)
	if err != nil {
		return httpError(err)
	}
	userID := auth.UserID(c.Request().Context())
	if err := h.books.DeleteBook(c.Request().Context(), userID, id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// bookID rejects structurally invalid ids before they reach the store; ids
// are uuids, anything else is a client error, not a lookup miss.
func bookID(c echo.Context) (string, error) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", errs.NewValidationError(errs.FieldError{Field: "id", Message: "id must be a valid uuid"})
	}
	return id, nil
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func atoiDefault(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
