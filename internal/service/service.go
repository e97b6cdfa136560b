package service

import (
	"strings"

	"go.uber.org/zap"

	"github.com/bookhub/bookhub-service/internal/errs"
	"github.com/bookhub/bookhub-service/internal/model"
	"github.com/bookhub/bookhub-service/internal/repository"
	"github.com/bookhub/bookhub-service/pkg/auth"
)

type Service struct {
	log    *zap.Logger
	repo   repository.Repository
	auth   auth.Config
	events Publisher
}

func NewService(repo repository.Repository, authCfg auth.Config, events Publisher, log *zap.Logger) *Service {
	return &Service{
		log:    log,
		repo:   repo,
		auth:   authCfg,
		events: events,
	}
}

// normalizeAuthors trims names and rejects authors without one. The API only
// accepts the structured {name, bio?} shape.
func normalizeAuthors(in model.Authors) (model.Authors, error) {
	out := make(model.Authors, 0, len(in))
	for _, a := range in {
		a.Name = strings.TrimSpace(a.Name)
		if a.Name == "" {
			return nil, errs.NewValidationError(errs.FieldError{
				Field:   "authors",
				Message: "all authors must have a name",
			})
		}
		out = append(out, a)
	}
	return out, nil
}

// normalizeGenres drops empty entries; a book must keep at least one genre.
func normalizeGenres(in model.Genres) (model.Genres, error) {
	out := make(model.Genres, 0, len(in))
	for _, g := range in {
		g = strings.TrimSpace(g)
		if g != "" {
			out = append(out, g)
		}
	}
	if len(out) == 0 {
		return nil, errs.NewValidationError(errs.FieldError{
			Field:   "genre",
			Message: "book must have at least one genre",
		})
	}
	return out, nil
}
