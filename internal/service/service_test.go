package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bookhub/bookhub-service/internal/errs"
	"github.com/bookhub/bookhub-service/internal/model"
	"github.com/bookhub/bookhub-service/internal/service"
	"github.com/bookhub/bookhub-service/pkg/auth"
)

type fakeRepo struct {
	pingErr error

	books     map[string]model.Book
	users     map[string]model.User
	listTotal int

	lastFilter model.BookFilter
	lastPage   model.Page
	deletedID  string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		books: map[string]model.Book{},
		users: map[string]model.User{},
	}
}

func (f *fakeRepo) Ping(context.Context) error { return f.pingErr }

func (f *fakeRepo) ListBooks(_ context.Context, filter model.BookFilter, page model.Page) ([]model.Book, int, error) {
	f.lastFilter = filter
	f.lastPage = page
	return nil, f.listTotal, nil
}

func (f *fakeRepo) GetBook(_ context.Context, id string) (model.Book, error) {
	book, ok := f.books[id]
	if !ok {
		return model.Book{}, errs.ErrNotFound
	}
	return book, nil
}

func (f *fakeRepo) CreateBook(_ context.Context, book model.Book) (model.Book, error) {
	book.ID = "b-new"
	book.CreatedAt = time.Now()
	book.UpdatedAt = book.CreatedAt
	f.books[book.ID] = book
	return book, nil
}

func (f *fakeRepo) UpdateBook(_ context.Context, book model.Book) (model.Book, error) {
	if _, ok := f.books[book.ID]; !ok {
		return model.Book{}, errs.ErrNotFound
	}
	f.books[book.ID] = book
	return book, nil
}

func (f *fakeRepo) DeleteBook(_ context.Context, id string) error {
	f.deletedID = id
	delete(f.books, id)
	return nil
}

func (f *fakeRepo) CreateUser(_ context.Context, user model.User) (model.User, error) {
	for _, u := range f.users {
		if u.Email == user.Email {
			return model.User{}, errs.ErrEmailTaken
		}
		if u.Username == user.Username {
			return model.User{}, errs.ErrUsernameTaken
		}
	}
	user.ID = "u-new"
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeRepo) GetUserByEmail(_ context.Context, email string) (model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, errs.ErrNotFound
}

type spyPublisher struct {
	events []any
}

func (s *spyPublisher) Publish(v any) error {
	s.events = append(s.events, v)
	return nil
}

var testAuthCfg = auth.Config{Secret: "test-secret", TTL: time.Hour}

func newTestService(repo *fakeRepo) (*service.Service, *spyPublisher) {
	events := &spyPublisher{}
	return service.NewService(repo, testAuthCfg, events, zap.NewExample().Named("test")), events
}

func TestService_ListBooks(t *testing.T) {
	t.Parallel()

	t.Run("clamps pagination and derives meta", func(t *testing.T) {
		t.Parallel()
		repo := newFakeRepo()
		repo.listTotal = 25
		svc, _ := newTestService(repo)

		out, err := svc.ListBooks(context.Background(), model.BookFilter{}, model.Page{Number: -3, Size: 0})
		require.NoError(t, err)
		require.Equal(t, model.Page{Number: 1, Size: model.DefaultPageSize}, repo.lastPage)
		require.Equal(t, model.Meta{Total: 25, Page: 1, PageSize: 12, TotalPages: 3}, out.Meta)
		require.NotNil(t, out.Data)
		require.Empty(t, out.Data)
	})

	t.Run("no match means zero total pages", func(t *testing.T) {
		t.Parallel()
		repo := newFakeRepo()
		svc, _ := newTestService(repo)

		out, err := svc.ListBooks(context.Background(), model.BookFilter{Genres: []string{"no-such-genre"}}, model.Page{Number: 1, Size: 12})
		require.NoError(t, err)
		require.Equal(t, 0, out.Meta.Total)
		require.Equal(t, 0, out.Meta.TotalPages)
		require.Equal(t, []string{"no-such-genre"}, repo.lastFilter.Genres)
	})

	t.Run("fails fast when the store is down", func(t *testing.T) {
		t.Parallel()
		repo := newFakeRepo()
		repo.pingErr = errs.ErrUnavailable
		svc, _ := newTestService(repo)

		_, err := svc.ListBooks(context.Background(), model.BookFilter{}, model.Page{Number: 1, Size: 12})
		require.ErrorIs(t, err, errs.ErrUnavailable)
	})
}

func TestService_CreateBook(t *testing.T) {
	t.Parallel()

	t.Run("normalizes and publishes", func(t *testing.T) {
		t.Parallel()
		repo := newFakeRepo()
		svc, events := newTestService(repo)

		created, err := svc.CreateBook(context.Background(), "u1", model.CreateBookRequest{
			Title:   "  T  ",
			Authors: model.Authors{{Name: " A "}},
			Genre:   model.Genres{"Fiction", "  ", ""},
		})
		require.NoError(t, err)
		require.Equal(t, "u1", created.CreatedBy)
		require.Equal(t, "T", created.Title)
		require.Equal(t, model.Authors{{Name: "A"}}, created.Authors)
		require.Equal(t, model.Genres{"Fiction"}, created.Genre)
		require.False(t, created.PublishedDate.IsZero())

		require.Len(t, events.events, 1)
		event := events.events[0].(model.BookEvent)
		require.Equal(t, model.BookCreated, event.Action)
		require.Equal(t, "b-new", event.BookID)
	})

	t.Run("author without a name", func(t *testing.T) {
		t.Parallel()
		repo := newFakeRepo()
		svc, events := newTestService(repo)

		_, err := svc.CreateBook(context.Background(), "u1", model.CreateBookRequest{
			Title:   "T",
			Authors: model.Authors{{Name: "   "}},
			Genre:   model.Genres{"Fiction"},
		})
		var vErr *errs.ValidationError
		require.ErrorAs(t, err, &vErr)
		require.Equal(t, "authors", vErr.Fields[0].Field)
		require.Empty(t, events.events)
	})

	t.Run("all genres blank", func(t *testing.T) {
		t.Parallel()
		repo := newFakeRepo()
		svc, _ := newTestService(repo)

		_, err := svc.CreateBook(context.Background(), "u1", model.CreateBookRequest{
			Title:   "T",
			Authors: model.Authors{{Name: "A"}},
			Genre:   model.Genres{" ", ""},
		})
		var vErr *errs.ValidationError
		require.ErrorAs(t, err, &vErr)
		require.Equal(t, "genre", vErr.Fields[0].Field)
	})
}

func TestService_UpdateBook(t *testing.T) {
	t.Parallel()

	seed := func(repo *fakeRepo) {
		repo.books["b1"] = model.Book{
			ID:        "b1",
			CreatedBy: "u1",
			Title:     "Old",
			Authors:   model.Authors{{Name: "A"}},
			Genre:     model.Genres{"Fiction"},
			Rating:    nil,
		}
	}

	t.Run("merges only provided fields", func(t *testing.T) {
		t.Parallel()
		repo := newFakeRepo()
		seed(repo)
		svc, events := newTestService(repo)

		title := "New"
		rating := 4.5
		updated, err := svc.UpdateBook(context.Background(), "u1", "b1", model.UpdateBookRequest{
			Title:  &title,
			Rating: &rating,
		})
		require.NoError(t, err)
		require.Equal(t, "New", updated.Title)
		require.Equal(t, &rating, updated.Rating)
		require.Equal(t, model.Authors{{Name: "A"}}, updated.Authors)
		require.Equal(t, model.Genres{"Fiction"}, updated.Genre)
		require.Len(t, events.events, 1)
	})

	t.Run("other user is forbidden", func(t *testing.T) {
		t.Parallel()
		repo := newFakeRepo()
		seed(repo)
		svc, events := newTestService(repo)

		title := "Hijacked"
		_, err := svc.UpdateBook(context.Background(), "u2", "b1", model.UpdateBookRequest{Title: &title})
		require.ErrorIs(t, err, errs.ErrForbidden)
		require.Empty(t, events.events)
		require.Equal(t, "Old", repo.books["b1"].Title)
	})

	t.Run("cannot blank the title", func(t *testing.T) {
		t.Parallel()
		repo := newFakeRepo()
		seed(repo)
		svc, _ := newTestService(repo)

		title := "   "
		_, err := svc.UpdateBook(context.Background(), "u1", "b1", model.UpdateBookRequest{Title: &title})
		var vErr *errs.ValidationError
		require.ErrorAs(t, err, &vErr)
		require.Equal(t, "title", vErr.Fields[0].Field)
	})

	t.Run("missing book", func(t *testing.T) {
		t.Parallel()
		repo := newFakeRepo()
		svc, _ := newTestService(repo)

		title := "New"
		_, err := svc.UpdateBook(context.Background(), "u1", "gone", model.UpdateBookRequest{Title: &title})
		require.ErrorIs(t, err, errs.ErrNotFound)
	})
}

func TestService_DeleteBook(t *testing.T) {
	t.Parallel()

	t.Run("owner deletes", func(t *testing.T) {
		t.Parallel()
		repo := newFakeRepo()
		repo.books["b1"] = model.Book{ID: "b1", CreatedBy: "u1"}
		svc, events := newTestService(repo)

		require.NoError(t, svc.DeleteBook(context.Background(), "u1", "b1"))
		require.Equal(t, "b1", repo.deletedID)
		require.Len(t, events.events, 1)
	})

	t.Run("other user is forbidden", func(t *testing.T) {
		t.Parallel()
		repo := newFakeRepo()
		repo.books["b1"] = model.Book{ID: "b1", CreatedBy: "u1"}
		svc, _ := newTestService(repo)

		require.ErrorIs(t, svc.DeleteBook(context.Background(), "u2", "b1"), errs.ErrForbidden)
		require.Contains(t, repo.books, "b1")
	})
}

func TestService_RegisterLogin(t *testing.T) {
	t.Parallel()

	t.Run("register issues a token bound to the new user", func(t *testing.T) {
		t.Parallel()
		repo := newFakeRepo()
		svc, _ := newTestService(repo)

		resp, err := svc.Register(context.Background(), model.RegisterRequest{
			Username: "reader",
			Email:    "reader@example.com",
			Password: "s3cret-pass",
		})
		require.NoError(t, err)
		require.Equal(t, "u-new", resp.User.ID)
		require.NotEqual(t, "s3cret-pass", resp.User.PasswordHash)

		claims, err := auth.ParseToken(testAuthCfg, resp.Token)
		require.NoError(t, err)
		require.Equal(t, "u-new", claims.UserID)
	})

	t.Run("second registration with the same email", func(t *testing.T) {
		t.Parallel()
		repo := newFakeRepo()
		svc, _ := newTestService(repo)

		_, err := svc.Register(context.Background(), model.RegisterRequest{
			Username: "reader", Email: "reader@example.com", Password: "s3cret-pass",
		})
		require.NoError(t, err)

		_, err = svc.Register(context.Background(), model.RegisterRequest{
			Username: "other", Email: "reader@example.com", Password: "s3cret-pass",
		})
		require.ErrorIs(t, err, errs.ErrEmailTaken)
	})

	t.Run("wrong password and unknown email collapse together", func(t *testing.T) {
		t.Parallel()
		repo := newFakeRepo()
		svc, _ := newTestService(repo)

		_, err := svc.Register(context.Background(), model.RegisterRequest{
			Username: "reader", Email: "reader@example.com", Password: "s3cret-pass",
		})
		require.NoError(t, err)

		_, err = svc.Login(context.Background(), model.LoginRequest{Email: "reader@example.com", Password: "wrong"})
		require.ErrorIs(t, err, errs.ErrInvalidCredentials)

		_, err = svc.Login(context.Background(), model.LoginRequest{Email: "ghost@example.com", Password: "whatever"})
		require.ErrorIs(t, err, errs.ErrInvalidCredentials)
	})

	t.Run("login round-trip", func(t *testing.T) {
		t.Parallel()
		repo := newFakeRepo()
		svc, _ := newTestService(repo)

		_, err := svc.Register(context.Background(), model.RegisterRequest{
			Username: "reader", Email: "reader@example.com", Password: "s3cret-pass",
		})
		require.NoError(t, err)

		resp, err := svc.Login(context.Background(), model.LoginRequest{Email: "reader@example.com", Password: "s3cret-pass"})
		require.NoError(t, err)
		require.NotEmpty(t, resp.Token)
		require.Equal(t, "reader", resp.User.Username)
	})
}
