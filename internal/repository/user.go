package repository

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/bookhub/bookhub-service/internal/errs"
	"github.com/bookhub/bookhub-service/internal/model"
)

const userColumns = `id, username, email, password_hash, created_at`

func (r *repository) CreateUser(ctx context.Context, user model.User) (model.User, error) {
	query, args, err := qb.Insert(usersTableName).
		Columns("id", "username", "email", "password_hash").
		Values(uuid.NewString(), user.Username, user.Email, user.PasswordHash).
		Suffix("returning " + userColumns).
		ToSql()
	if err != nil {
		return model.User{}, err
	}

	var created model.User
	if err := r.db.GetContext(ctx, &created, query, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			switch pgErr.ConstraintName {
			case "users_email_key":
				return model.User{}, errs.ErrEmailTaken
			case "users_username_key":
				return model.User{}, errs.ErrUsernameTaken
			}
		}
		r.log.Error("CreateUser", zap.String("q", query), zap.Error(err))
		return model.User{}, err
	}
	return created, nil
}

func (r *repository) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	query, args, err := qb.Select(userColumns).
		From(usersTableName).
		Where(sq.Eq{"email": email}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.User{}, err
	}

	var user model.User
	if err := r.db.GetContext(ctx, &user, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, errs.ErrNotFound
		}
		return model.User{}, err
	}
	return user, nil
}
