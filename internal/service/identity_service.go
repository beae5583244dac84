package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/Leganyst/space-booking/internal/apperror"
	"github.com/Leganyst/space-booking/internal/auth"
	"github.com/Leganyst/space-booking/internal/model"
	"github.com/Leganyst/space-booking/internal/repository"
)

// IdentityService реализует регистрацию и вход по логину и паролю.
type IdentityService struct {
	userRepo   repository.UserRepository
	tokens     *auth.TokenIssuer
	bcryptCost int
}

func NewIdentityService(userRepo repository.UserRepository, tokens *auth.TokenIssuer, bcryptCost int) *IdentityService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &IdentityService{userRepo: userRepo, tokens: tokens, bcryptCost: bcryptCost}
}

// Register создаёт пользователя с ролью user.
func (s *IdentityService) Register(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperror.BadRequest("username and password are required")
	}
	if utf8.RuneCountInString(username) > model.MaxUsernameLen {
		return nil, apperror.BadRequest(fmt.Sprintf("username must be at most %d characters", model.MaxUsernameLen))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, apperror.BadRequest("password is too long")
		}
		return nil, apperror.Internal(err)
	}

	u := &model.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         model.RoleUser,
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, mapRepoErr(err)
	}
	return u, nil
}

// Login проверяет пароль и выдаёт токен доступа.
// Неизвестный пользователь и неверный пароль неразличимы для клиента.
func (s *IdentityService) Login(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", apperror.BadRequest("username and password are required")
	}

	u, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", mapRepoErr(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token, _, err := s.tokens.Issue(u)
	if err != nil {
		return "", apperror.Internal(err)
	}
	return token, nil
}

// PromoteAdmin выдаёт роль admin. Через API не доступно, только из CLI.
func (s *IdentityService) PromoteAdmin(ctx context.Context, username string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperror.BadRequest("username is required")
	}
	u, err := s.userRepo.SetRole(ctx, username, model.RoleAdmin)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return u, nil
}
