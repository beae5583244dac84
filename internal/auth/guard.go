package auth

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Leganyst/space-booking/internal/apperror"
	"github.com/Leganyst/space-booking/internal/model"
)

// Capability: что требуется от вызывающего, чтобы выполнить операцию.
// Объявляется рядом с маршрутом, по тексту пути ничего не выводится.
type Capability uint8

const (
	Public Capability = iota
	AnyAuthenticated
	AdminOnly
)

func (c Capability) String() string {
	switch c {
	case Public:
		return "public"
	case AnyAuthenticated:
		return "authenticated"
	case AdminOnly:
		return "admin"
	default:
		return "unknown"
	}
}

var (
	ErrMissingCredential   = apperror.New(apperror.KindAuth, "missing_credential", "authorization header is required")
	ErrMalformedCredential = apperror.New(apperror.KindAuth, "malformed_credential", "authorization header must be 'Bearer <token>'")
	ErrInvalidCredential   = apperror.New(apperror.KindAuth, "invalid_credential", "invalid or expired token")
	ErrForbidden           = apperror.New(apperror.KindPermission, "forbidden", "administrator role required")
)

// Identity: проверенный вызывающий.
type Identity struct {
	UserID   uuid.UUID
	Username string
	Role     model.Role
}

func (id Identity) IsAdmin() bool { return id.Role.IsAdmin() }

type Guard struct {
	tokens *TokenIssuer
}

func NewGuard(tokens *TokenIssuer) *Guard {
	return &Guard{tokens: tokens}
}

// Authorize разбирает заголовок Authorization и проверяет токен.
func (g *Guard) Authorize(header string) (*Identity, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil, ErrMissingCredential
	}

	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || token == "" || strings.Contains(token, " ") || !strings.EqualFold(scheme, "Bearer") {
		return nil, ErrMalformedCredential
	}

	claims, err := g.tokens.Parse(token)
	if err != nil {
		return nil, ErrInvalidCredential.Wrap(err)
	}
	role := model.Role(claims.Role)
	if !role.Valid() {
		return nil, ErrInvalidCredential.Wrap(fmt.Errorf("unknown role %q", claims.Role))
	}
	// Parse уже проверил, что id является UUID.
	userID, _ := uuid.Parse(claims.UserID)

	return &Identity{
		UserID:   userID,
		Username: claims.Username,
		Role:     role,
	}, nil
}

// Permit проверяет, хватает ли identity для capability.
// identity == nil означает анонимного вызывающего.
func Permit(identity *Identity, c Capability) error {
	switch c {
	case Public:
		return nil
	case AnyAuthenticated:
		if identity == nil {
			return ErrMissingCredential
		}
		return nil
	case AdminOnly:
		if identity == nil {
			return ErrMissingCredential
		}
		if !identity.IsAdmin() {
			return ErrForbidden
		}
		return nil
	default:
		return ErrForbidden
	}
}
