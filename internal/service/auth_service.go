package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"careercompass/internal/auth"
	apperrors "careercompass/internal/errors"
	"careercompass/internal/model"
	"careercompass/internal/repository"
)

const (
	bcryptCost = 10
	// bcrypt ignores everything past this many bytes
	maxPasswordBytes = 72
)

// AuthResult is a freshly issued session token and the account it belongs to.
type AuthResult struct {
	Token string
	User  *model.User
}

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, email, password, name string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	LoginWithGoogle(ctx context.Context, credential string) (*AuthResult, error)
	Logout(ctx context.Context, claims *auth.Claims) error
	Me(ctx context.Context, userID uuid.UUID) (*model.User, error)
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
	revoked    auth.RevocationStore
	verifier   auth.IdentityVerifier
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService, revoked auth.RevocationStore, verifier auth.IdentityVerifier) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		revoked:    revoked,
		verifier:   verifier,
	}
}

// Register creates a new password account and signs it in.
func (s *authService) Register(ctx context.Context, email, password, name string) (*AuthResult, error) {
	email = NormalizeEmail(email)

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, apperrors.ErrUserAlreadyExists
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &apperrors.ServerError{Op: "check user existence", Err: err}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, apperrors.NewValidationError("password must be at most %d bytes", maxPasswordBytes)
	}
	if err != nil {
		return nil, &apperrors.ServerError{Op: "hash password", Err: err}
	}

	user := &model.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hashedPassword),
		Name:         displayName(name, email),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// lost a race against a concurrent registration
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrUserAlreadyExists
		}
		return nil, &apperrors.ServerError{Op: "create user", Err: err}
	}

	return s.issue(user)
}

// Login authenticates a password account.
func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, &apperrors.ServerError{Op: "find user", Err: err}
	}

	if !user.HasPassword() {
		return nil, apperrors.ErrPasswordNotSet
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.ErrWrongPassword
	}

	return s.issue(user)
}

// LoginWithGoogle signs in with a Google ID token. An account with the same
// email is linked to the Google subject; otherwise a new account is created.
func (s *authService) LoginWithGoogle(ctx context.Context, credential string) (*AuthResult, error) {
	identity, err := s.verifier.Verify(ctx, credential)
	if err != nil {
		return nil, apperrors.ErrInvalidCredential
	}

	user, err := s.userRepo.FindByEmail(ctx, identity.Email)
	switch {
	case err == nil:
		if user.GoogleID == nil {
			if err := s.userRepo.LinkGoogleID(ctx, user.ID, identity.Subject); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, &apperrors.ServerError{Op: "link google account", Err: err}
			}
			subject := identity.Subject
			user.GoogleID = &subject
		}
		return s.issue(user)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, &apperrors.ServerError{Op: "find user", Err: err}
	}

	subject := identity.Subject
	user = &model.User{
		ID:       uuid.New(),
		Email:    identity.Email,
		Name:     displayName(identity.Name, identity.Email),
		GoogleID: &subject,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &apperrors.ServerError{Op: "create user", Err: err}
		}
		// created concurrently by another sign-in
		user, err = s.userRepo.FindByEmail(ctx, identity.Email)
		if err != nil {
			return nil, &apperrors.ServerError{Op: "find user", Err: err}
		}
	}

	return s.issue(user)
}

// Logout revokes the presented token for the rest of its lifetime.
func (s *authService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ID == "" {
		return apperrors.ErrInvalidToken
	}
	if err := s.revoked.Revoke(ctx, claims.ID, claims.Remaining(s.jwtService.Now())); err != nil {
		return &apperrors.ServerError{Op: "revoke token", Err: err}
	}
	return nil
}

// Me returns the caller's account including the roadmap.
func (s *authService) Me(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, &apperrors.ServerError{Op: "find user", Err: err}
	}
	return user, nil
}

func (s *authService) issue(user *model.User) (*AuthResult, error) {
	token, err := s.jwtService.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, &apperrors.ServerError{Op: "generate token", Err: err}
	}
	return &AuthResult{Token: token, User: user}, nil
}

// NormalizeEmail is the form every email is stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// displayName falls back to the local part of the email.
func displayName(name, email string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return email
}
