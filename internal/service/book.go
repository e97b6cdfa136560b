package service

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/bookhub/bookhub-service/internal/errs"
	"github.com/bookhub/bookhub-service/internal/model"
)

// ListBooks is the listing pipeline: fail fast when the store is down, clamp
// pagination, run the filtered count and page fetch, derive the metadata.
func (s *Service) ListBooks(ctx context.Context, filter model.BookFilter, page model.Page) (model.ListBooks, error) {
	if err := s.repo.Ping(ctx); err != nil {
		return model.ListBooks{}, err
	}
	page = page.Normalize()

	books, total, err := s.repo.ListBooks(ctx, filter, page)
	if err != nil {
		return model.ListBooks{}, err
	}
	if books == nil {
		books = []model.Book{}
	}
	return model.ListBooks{
		Data: books,
		Meta: model.NewMeta(total, page),
	}, nil
}

func (s *Service) GetBook(ctx context.Context, id string) (model.Book, error) {
	return s.repo.GetBook(ctx, id)
}

func (s *Service) CreateBook(ctx context.Context, userID string, req model.CreateBookRequest) (model.Book, error) {
	authors, err := normalizeAuthors(req.Authors)
	if err != nil {
		return model.Book{}, err
	}
	genres, err := normalizeGenres(req.Genre)
	if err != nil {
		return model.Book{}, err
	}

	publishedDate := time.Now().UTC()
	if req.PublishedDate != nil {
		publishedDate = req.PublishedDate.Time
	}

	book := model.Book{
		CreatedBy:     userID,
		Title:         strings.TrimSpace(req.Title),
		Authors:       authors,
		Genre:         genres,
		Description:   strings.TrimSpace(req.Description),
		PublishedDate: publishedDate,
		Rating:        req.Rating,
		CoverURL:      strings.TrimSpace(req.CoverURL),
		Pages:         req.Pages,
		ISBN:          strings.TrimSpace(req.ISBN),
	}

	created, err := s.repo.CreateBook(ctx, book)
	if err != nil {
		return model.Book{}, err
	}
	s.publish(model.BookCreated, created.ID, userID)
	return created, nil
}

func (s *Service) UpdateBook(ctx context.Context, userID, id string, req model.UpdateBookRequest) (model.Book, error) {
	book, err := s.ownedBook(ctx, userID, id)
	if err != nil {
		return model.Book{}, err
	}

	if req.Title != nil {
		book.Title = strings.TrimSpace(*req.Title)
	}
	if req.Authors != nil {
		book.Authors = req.Authors
	}
	if req.Genre != nil {
		book.Genre = req.Genre
	}
	if req.Description != nil {
		book.Description = strings.TrimSpace(*req.Description)
	}
	if req.PublishedDate != nil {
		book.PublishedDate = req.PublishedDate.Time
	}
	if req.Rating != nil {
		book.Rating = req.Rating
	}
	if req.CoverURL != nil {
		book.CoverURL = strings.TrimSpace(*req.CoverURL)
	}
	if req.Pages != nil {
		book.Pages = req.Pages
	}
	if req.ISBN != nil {
		book.ISBN = strings.TrimSpace(*req.ISBN)
	}

	// re-validate the merged record at the storage boundary
	if book.Title == "" {
		return model.Book{}, errs.NewValidationError(errs.FieldError{Field: "title", Message: "title is required"})
	}
	if book.Authors, err = normalizeAuthors(book.Authors); err != nil {
		return model.Book{}, err
	}
	if book.Genre, err = normalizeGenres(book.Genre); err != nil {
		return model.Book{}, err
	}

	updated, err := s.repo.UpdateBook(ctx, book)
	if err != nil {
		return model.Book{}, err
	}
	s.publish(model.BookUpdated, updated.ID, userID)
	return updated, nil
}

func (s *Service) DeleteBook(ctx context.Context, userID, id string) error {
	if _, err := s.ownedBook(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.DeleteBook(ctx, id); err != nil {
		return err
	}
	s.publish(model.BookDeleted, id, userID)
	return nil
}

// ownedBook is the single ownership gate: the caller may mutate the record
// only when the token's user id matches created_by.
func (s *Service) ownedBook(ctx context.Context, userID, id string) (model.Book, error) {
	book, err := s.repo.GetBook(ctx, id)
	if err != nil {
		return model.Book{}, err
	}
	if book.CreatedBy != userID {
		return model.Book{}, errors.Wrapf(errs.ErrForbidden, "book %s", id)
	}
	return book, nil
}

func (s *Service) publish(action, bookID, userID string) {
	if err := s.events.Publish(model.BookEvent{
		Action: action,
		BookID: bookID,
		UserID: userID,
		At:     time.Now().UTC(),
	}); err != nil {
		s.log.Warn("publish book event", zap.String("action", action), zap.Error(err))
	}
}
