// Package services содержит логику регистрации, входа пользователей
// и администраторов, а также проверки токенов доступа.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/apperr"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/jwt"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/password"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
	"github.com/magabrotheeeer/subscription-tracker/internal/storage/repository"
)

// MinPasswordLength минимальная длина пароля при регистрации.
const MinPasswordLength = 6

// Сообщения об ошибках, которые видит клиент.
const (
	MsgFieldsRequired       = "all fields are required"
	MsgPasswordTooShort     = "password must be at least 6 characters long"
	MsgPasswordTooLong      = "password must be at most 72 bytes long"
	MsgEmailTaken           = "user with this email already exists"
	MsgInvalidCredentials   = "invalid email or password"
	MsgAccountDeactivated   = "account is deactivated"
	MsgInvalidAdminCreds    = "invalid admin credentials"
	MsgAdminDeactivated     = "admin account is deactivated"
	MsgInvalidToken         = "invalid or expired token"
	MsgWrongPrincipalKind   = "token is not valid for this resource"
	dummyPasswordForTimings = "dummy-password-for-timing"
)

// UserRepository контракт хранилища пользователей.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// AdminRepository контракт хранилища администраторов.
type AdminRepository interface {
	CreateAdmin(ctx context.Context, admin models.Admin) (*models.Admin, error)
	GetAdminByEmail(ctx context.Context, email string) (*models.Admin, error)
}

// PasswordHasher хеширует и сравнивает пароли.
type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Compare(ctx context.Context, hash, password string) error
}

// AuthService отвечает за регистрацию, вход и проверку токенов.
type AuthService struct {
	users    UserRepository
	admins   AdminRepository
	hasher   PasswordHasher
	jwtMaker jwt.Maker
	log      *slog.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService создаёт AuthService.
func NewAuthService(users UserRepository, admins AdminRepository, hasher PasswordHasher,
	jwtMaker jwt.Maker, log *slog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		admins:   admins,
		hasher:   hasher,
		jwtMaker: jwtMaker,
		log:      log,
	}
}

// Register создаёт активного пользователя и выдаёт ему токен.
func (s *AuthService) Register(ctx context.Context, email, rawPassword, firstName, lastName string) (*models.AuthResult, error) {
	const op = "services.auth.Register"

	email = strings.TrimSpace(email)
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if email == "" || rawPassword == "" || firstName == "" || lastName == "" {
		return nil, apperr.Validation(MsgFieldsRequired)
	}
	if len([]rune(rawPassword)) < MinPasswordLength {
		return nil, apperr.Validation(MsgPasswordTooShort)
	}
	if len(rawPassword) > password.MaxBytes {
		return nil, apperr.Validation(MsgPasswordTooLong)
	}

	_, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, apperr.Conflict(MsgEmailTaken)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hashed, err := s.hasher.Hash(ctx, rawPassword)
	if errors.Is(err, password.ErrTooLong) {
		return nil, apperr.Validation(MsgPasswordTooLong)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.users.CreateUser(ctx, models.User{
		Email:        email,
		PasswordHash: hashed,
		FirstName:    firstName,
		LastName:     lastName,
	})
	if errors.Is(err, repository.ErrAlreadyExists) {
		return nil, apperr.Conflict(MsgEmailTaken)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.jwtMaker.GenerateToken(models.Principal{ID: user.ID, Email: user.Email, Kind: models.KindUser})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user registered", slog.String("user_id", user.ID))
	return &models.AuthResult{Token: token, User: *user}, nil
}

// Login проверяет учётные данные пользователя. Сообщение об отключённом
// аккаунте возвращается только при верном пароле.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (*models.AuthResult, error) {
	const op = "services.auth.Login"
	if strings.TrimSpace(email) == "" || rawPassword == "" {
		return nil, apperr.Validation("email and password are required")
	}
	// bcrypt учитывает только первые MaxBytes байт
	if len(rawPassword) > password.MaxBytes {
		s.burnCompare(ctx, rawPassword)
		return nil, apperr.Auth(MsgInvalidCredentials)
	}

	user, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, repository.ErrNotFound) {
		s.burnCompare(ctx, rawPassword)
		return nil, apperr.Auth(MsgInvalidCredentials)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = s.hasher.Compare(ctx, user.PasswordHash, rawPassword); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return nil, apperr.Auth(MsgInvalidCredentials)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !user.IsActive {
		return nil, apperr.Auth(MsgAccountDeactivated)
	}

	token, err := s.jwtMaker.GenerateToken(models.Principal{ID: user.ID, Email: user.Email, Kind: models.KindUser})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.AuthResult{Token: token, User: *user}, nil
}

// AdminLogin проверяет учётные данные администратора.
func (s *AuthService) AdminLogin(ctx context.Context, email, rawPassword string) (*models.AdminAuthResult, error) {
	const op = "services.auth.AdminLogin"
	if strings.TrimSpace(email) == "" || rawPassword == "" {
		return nil, apperr.Validation("email and password are required")
	}
	if len(rawPassword) > password.MaxBytes {
		s.burnCompare(ctx, rawPassword)
		return nil, apperr.Auth(MsgInvalidAdminCreds)
	}

	admin, err := s.admins.GetAdminByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, repository.ErrNotFound) {
		s.burnCompare(ctx, rawPassword)
		return nil, apperr.Auth(MsgInvalidAdminCreds)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = s.hasher.Compare(ctx, admin.PasswordHash, rawPassword); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return nil, apperr.Auth(MsgInvalidAdminCreds)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !admin.IsActive {
		return nil, apperr.Auth(MsgAdminDeactivated)
	}

	token, err := s.jwtMaker.GenerateToken(models.Principal{ID: admin.ID, Email: admin.Email, Kind: models.KindAdmin})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("admin logged in", slog.String("admin_id", admin.ID))
	return &models.AdminAuthResult{Token: token, Admin: *admin}, nil
}

// ValidateToken проверяет токен и требует, чтобы вид субъекта совпадал с kind.
func (s *AuthService) ValidateToken(_ context.Context, token string, kind models.PrincipalKind) (models.Principal, error) {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return models.Principal{}, apperr.AuthWrap(MsgInvalidToken, err)
	}
	p := claims.Principal()
	if p.Kind != kind {
		return models.Principal{}, apperr.Auth(MsgWrongPrincipalKind)
	}
	return p, nil
}

// EnsureAdmin создаёт администратора, если записи с таким email ещё нет.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, rawPassword, name string) (bool, error) {
	const op = "services.auth.EnsureAdmin"

	_, err := s.admins.GetAdminByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	hashed, err := s.hasher.Hash(ctx, rawPassword)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	_, err = s.admins.CreateAdmin(ctx, models.Admin{Email: email, PasswordHash: hashed, Name: name})
	if errors.Is(err, repository.ErrAlreadyExists) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("default admin created", slog.String("email", email))
	return true, nil
}

// burnCompare выполняет одно сравнение с фиктивным хешем, чтобы время ответа
// не зависело от существования учётной записи.
func (s *AuthService) burnCompare(ctx context.Context, rawPassword string) {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash(ctx, dummyPasswordForTimings)
		if err != nil {
			s.log.Warn("failed to prepare dummy hash", sl.Err(err))
			return
		}
		s.dummyHash = h
	})
	if s.dummyHash == "" {
		return
	}
	_ = s.hasher.Compare(ctx, s.dummyHash, rawPassword)
}
