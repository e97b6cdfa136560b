package handler

import (
	"context"

	"github.com/bookhub/bookhub-service/internal/model"
)

//go:generate mockgen -source=service.go -destination=mocks/mock.go -package=service_mocks

type BookService interface {
	ListBooks(ctx context.Context, filter model.BookFilter, page model.Page) (model.ListBooks, error)
	GetBook(ctx context.Context, id string) (model.Book, error)
	CreateBook(ctx context.Context, userID string, req model.CreateBookRequest) (model.Book, error)
	UpdateBook(ctx context.Context, userID, id string, req model.UpdateBookRequest) (model.Book, error)
	DeleteBook(ctx context.Context, userID, id string) error
}

type AuthService interface {
	Register(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error)
	Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error)
}
