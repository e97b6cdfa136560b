package repository

import (
	"context"
	"database/sql"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bookhub/bookhub-service/internal/errs"
	"github.com/bookhub/bookhub-service/internal/model"
)

const bookColumns = `id, created_by, title, authors, genre, description, published_date, rating, cover_url, pages, isbn, created_at, updated_at`

// likeEscaper keeps user text literal inside ILIKE patterns.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// applyBookFilter translates the parsed filter into SQL predicates. Every
// provided dimension is ANDed; absent dimensions add nothing.
func applyBookFilter(q sq.SelectBuilder, f model.BookFilter) sq.SelectBuilder {
	if f.Query != "" {
		pat := "%" + likeEscaper.Replace(f.Query) + "%"
		q = q.Where(sq.Or{
			sq.ILike{"title": pat},
			sq.ILike{"description": pat},
			sq.Expr("exists (select 1 from jsonb_array_elements(authors) a where a->>'name' ilike ?)", pat),
		})
	}
	if len(f.Genres) > 0 {
		q = q.Where(sq.Expr(
			"exists (select 1 from jsonb_array_elements_text(genre) g where lower(g) = any(?))",
			lowerAll(f.Genres)))
	}
	if len(f.Authors) > 0 {
		q = q.Where(sq.Expr(
			"exists (select 1 from jsonb_array_elements(authors) a where lower(a->>'name') = any(?))",
			lowerAll(f.Authors)))
	}
	if f.StartDate != nil {
		q = q.Where(sq.GtOrEq{"published_date": *f.StartDate})
	}
	if f.EndDate != nil {
		q = q.Where(sq.LtOrEq{"published_date": *f.EndDate})
	}
	return q
}

func orderBy(key model.SortKey) string {
	switch key {
	case model.SortByRating:
		return "rating desc nulls last"
	case model.SortByTitle:
		return "title asc"
	default:
		return "published_date desc"
	}
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

// ListBooks runs the filtered count and the filtered page fetch concurrently;
// the two reads are independent.
func (r *repository) ListBooks(ctx context.Context, filter model.BookFilter, page model.Page) ([]model.Book, int, error) {
	listQuery, listArgs, err := applyBookFilter(qb.Select(bookColumns).From(booksTableName), filter).
		OrderBy(orderBy(filter.SortBy)).
		Limit(uint64(page.Size)).
		Offset(uint64(page.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, err
	}
	countQuery, countArgs, err := applyBookFilter(qb.Select("count(*)").From(booksTableName), filter).ToSql()
	if err != nil {
		return nil, 0, err
	}
	r.log.Debug("ListBooks", zap.String("query", listQuery), zap.Any("args", listArgs))

	var (
		books []model.Book
		total int
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.db.SelectContext(gCtx, &books, listQuery, listArgs...)
	})
	g.Go(func() error {
		return r.db.QueryRowContext(gCtx, countQuery, countArgs...).Scan(&total)
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

func (r *repository) GetBook(ctx context.Context, id string) (model.Book, error) {
	query, args, err := qb.Select(bookColumns).
		From(booksTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	var book model.Book
	if err := r.db.GetContext(ctx, &book, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Book{}, errs.ErrNotFound
		}
		return model.Book{}, err
	}
	return book, nil
}

func (r *repository) CreateBook(ctx context.Context, book model.Book) (model.Book, error) {
	query, args, err := qb.Insert(booksTableName).
		Columns("id", "created_by", "title", "authors", "genre", "description", "published_date", "rating", "cover_url", "pages", "isbn").
		Values(uuid.NewString(), book.CreatedBy, book.Title, book.Authors, book.Genre, book.Description, book.PublishedDate, book.Rating, book.CoverURL, book.Pages, book.ISBN).
		Suffix("returning " + bookColumns).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	var created model.Book
	if err := r.db.GetContext(ctx, &created, query, args...); err != nil {
		r.log.Error("CreateBook", zap.String("q", query), zap.Error(err))
		return model.Book{}, err
	}
	return created, nil
}

func (r *repository) UpdateBook(ctx context.Context, book model.Book) (model.Book, error) {
	query, args, err := qb.Update(booksTableName).
		Set("title", book.Title).
		Set("authors", book.Authors).
		Set("genre", book.Genre).
		Set("description", book.Description).
		Set("published_date", book.PublishedDate).
		Set("rating", book.Rating).
		Set("cover_url", book.CoverURL).
		Set("pages", book.Pages).
		Set("isbn", book.ISBN).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": book.ID}).
		Suffix("returning " + bookColumns).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	var updated model.Book
	if err := r.db.GetContext(ctx, &updated, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Book{}, errs.ErrNotFound
		}
		return model.Book{}, err
	}
	return updated, nil
}

// DeleteBook treats an already-removed row as success: the ownership check
// has run by the time we get here, and a vanished row is still gone.
func (r *repository) DeleteBook(ctx context.Context, id string) error {
	query, args, err := qb.Delete(booksTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}
