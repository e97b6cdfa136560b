package service

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/bookhub/bookhub-service/internal/errs"
	"github.com/bookhub/bookhub-service/internal/model"
	"github.com/bookhub/bookhub-service/pkg/auth"
)

func (s *Service) Register(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error) {
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return model.AuthResponse{}, errors.Wrap(err, "hash password")
	}

	user, err := s.repo.CreateUser(ctx, model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	})
	if err != nil {
		return model.AuthResponse{}, err
	}

	token, err := auth.GenerateToken(s.auth, user.ID)
	if err != nil {
		return model.AuthResponse{}, errors.Wrap(err, "sign token")
	}
	return model.AuthResponse{User: user, Token: token}, nil
}

// Login never tells the caller whether the email exists; both failure paths
// collapse into ErrInvalidCredentials. The distinction survives only at
// debug log level.
func (s *Service) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			s.log.Debug("login: no such email", zap.String("email", req.Email))
			return model.AuthResponse{}, errs.ErrInvalidCredentials
		}
		return model.AuthResponse{}, err
	}

	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		s.log.Debug("login: password mismatch", zap.String("email", req.Email))
		return model.AuthResponse{}, errs.ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(s.auth, user.ID)
	if err != nil {
		return model.AuthResponse{}, errors.Wrap(err, "sign token")
	}
	return model.AuthResponse{User: user, Token: token}, nil
}
