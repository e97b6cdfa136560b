package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/bookhub/bookhub-service/internal/errs"
	"github.com/bookhub/bookhub-service/internal/model"
)

type Repository interface {
	ListBooks(ctx context.Context, filter model.BookFilter, page model.Page) ([]model.Book, int, error)
	GetBook(ctx context.Context, id string) (model.Book, error)
	CreateBook(ctx context.Context, book model.Book) (model.Book, error)
	UpdateBook(ctx context.Context, book model.Book) (model.Book, error)
	DeleteBook(ctx context.Context, id string) error

	CreateUser(ctx context.Context, user model.User) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)

	Ping(ctx context.Context) error
}

type repository struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewRepository(db *sqlx.DB, log *zap.Logger) (*repository, error) {
	return &repository{
		db:  db,
		log: log.Named("repo"),
	}, nil
}

const (
	booksTableName = `books`
	usersTableName = `users`

	pingTimeout = 2 * time.Second
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Ping is the fail-fast liveness check the listing endpoint runs before
// touching the store.
func (r *repository) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := r.db.PingContext(pingCtx); err != nil {
		r.log.Warn("ping", zap.Error(err))
		return errors.Wrap(errs.ErrUnavailable, err.Error())
	}
	return nil
}
