package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"crmcore/internal/domain"
	"crmcore/internal/pkg/apperror"
	jwtsvc "crmcore/internal/pkg/jwt"
)

var ErrInvalidCredentials = apperror.New(apperror.KindCapabilityDenied, "invalid email or password")

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type Service struct {
	users UserRepository
	jwt   *jwtsvc.Service
}

func NewService(users UserRepository, jwt *jwtsvc.Service) *Service {
	return &Service{users: users, jwt: jwt}
}

// Login verifies credentials and issues a token carrying the capability tags
// for the user's role.
func (s *Service) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, apperror.Wrap(apperror.KindStoreUnavailable, "store error", err)
	}
	if user == nil {
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(user.ID, string(user.Role), domain.CapabilitiesFor(user.Role))
	if err != nil {
		return "", nil, apperror.Wrap(apperror.KindInternal, "token generation failed", err)
	}
	return token, user, nil
}
