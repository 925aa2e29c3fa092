package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"careercompass/internal/auth"
	"careercompass/internal/cache"
	apperrors "careercompass/internal/errors"
	"careercompass/internal/model"
)

func newAuthService(repo *MockUserRepository, store *MockRevocationStore, verifier *MockVerifier) (AuthService, *auth.JWTService) {
	jwtService := auth.NewJWTService("test-secret", time.Hour)
	return NewAuthService(repo, jwtService, store, verifier), jwtService
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		password      string
		nameField     string
		setupMock     func(*MockUserRepository)
		expectedName  string
		expectedError error
	}{
		{
			name:      "successful registration",
			email:     "Test@Example.com",
			password:  "password123",
			nameField: "Test User",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			expectedName: "Test User",
		},
		{
			name:     "name defaults to email local part",
			email:    "student@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "student@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			expectedName: "student",
		},
		{
			name:     "user already exists",
			email:    "existing@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "existing@example.com").Return(&model.User{Email: "existing@example.com"}, nil)
			},
			expectedError: apperrors.ErrUserAlreadyExists,
		},
		{
			name:     "concurrent duplicate insert",
			email:    "race@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "race@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(gorm.ErrDuplicatedKey)
			},
			expectedError: apperrors.ErrUserAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)
			service, jwtService := newAuthService(mockRepo, new(MockRevocationStore), new(MockVerifier))

			result, err := service.Register(context.Background(), tt.email, tt.password, tt.nameField)

			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
				assert.Nil(t, result)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedName, result.User.Name)
				assert.NotEqual(t, tt.password, result.User.PasswordHash)
				assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(result.User.PasswordHash), []byte(tt.password)))

				claims, err := jwtService.ValidateToken(result.Token)
				require.NoError(t, err)
				assert.Equal(t, result.User.ID.String(), claims.Subject)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Register_StoreFailure(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByEmail", mock.Anything, "a@example.com").Return(nil, errors.New("connection refused"))
	service, _ := newAuthService(mockRepo, new(MockRevocationStore), new(MockVerifier))

	_, err := service.Register(context.Background(), "a@example.com", "pw", "")

	var serverErr *apperrors.ServerError
	assert.ErrorAs(t, err, &serverErr)
}

func TestAuthService_Register_PasswordTooLong(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByEmail", mock.Anything, "long@example.com").Return(nil, gorm.ErrRecordNotFound)
	service, _ := newAuthService(mockRepo, new(MockRevocationStore), new(MockVerifier))

	result, err := service.Register(context.Background(), "long@example.com", strings.Repeat("a", 80), "")

	var validationErr *apperrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Nil(t, result)
	assert.Equal(t, http.StatusBadRequest, apperrors.MapErrorToHTTP(err).StatusCode)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_Login(t *testing.T) {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcryptCost)
	userID := uuid.New()

	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "successful login",
			email:    "test@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.User{
					ID:           userID,
					Email:        "test@example.com",
					PasswordHash: string(hashedPassword),
				}, nil)
			},
		},
		{
			name:     "unknown user",
			email:    "notfound@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "notfound@example.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrUserNotFound,
		},
		{
			name:     "wrong password",
			email:    "test@example.com",
			password: "nope",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.User{
					ID:           userID,
					Email:        "test@example.com",
					PasswordHash: string(hashedPassword),
				}, nil)
			},
			expectedError: apperrors.ErrWrongPassword,
		},
		{
			name:     "google-only account",
			email:    "google@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "google@example.com").Return(&model.User{ID: userID, Email: "google@example.com"}, nil)
			},
			expectedError: apperrors.ErrPasswordNotSet,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)
			service, _ := newAuthService(mockRepo, new(MockRevocationStore), new(MockVerifier))

			result, err := service.Login(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
				assert.Nil(t, result)
				assert.NotContains(t, err.Error(), string(hashedPassword))
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, result.Token)
				assert.Equal(t, userID, result.User.ID)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestUser_PasswordHashNeverSerialized(t *testing.T) {
	user := model.User{ID: uuid.New(), Email: "a@example.com", PasswordHash: "$2a$10$secret"}

	data, err := json.Marshal(user)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")
	assert.NotContains(t, string(data), "password")
}

func TestAuthService_LoginWithGoogle(t *testing.T) {
	identity := &auth.ExternalIdentity{Subject: "google-sub", Email: "g@example.com", Name: "Gee"}

	t.Run("creates new account", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		verifier := new(MockVerifier)
		verifier.On("Verify", mock.Anything, "cred").Return(identity, nil)
		mockRepo.On("FindByEmail", mock.Anything, "g@example.com").Return(nil, gorm.ErrRecordNotFound)
		mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			return u.GoogleID != nil && *u.GoogleID == "google-sub" && u.Name == "Gee" && !u.HasPassword()
		})).Return(nil)
		service, _ := newAuthService(mockRepo, new(MockRevocationStore), verifier)

		result, err := service.LoginWithGoogle(context.Background(), "cred")

		require.NoError(t, err)
		assert.NotEmpty(t, result.Token)
		assert.Equal(t, "g@example.com", result.User.Email)
		mockRepo.AssertExpectations(t)
	})

	t.Run("links existing account", func(t *testing.T) {
		existing := &model.User{ID: uuid.New(), Email: "g@example.com", Name: "Existing", PasswordHash: "hash"}
		mockRepo := new(MockUserRepository)
		verifier := new(MockVerifier)
		verifier.On("Verify", mock.Anything, "cred").Return(identity, nil)
		mockRepo.On("FindByEmail", mock.Anything, "g@example.com").Return(existing, nil)
		mockRepo.On("LinkGoogleID", mock.Anything, existing.ID, "google-sub").Return(nil)
		service, _ := newAuthService(mockRepo, new(MockRevocationStore), verifier)

		result, err := service.LoginWithGoogle(context.Background(), "cred")

		require.NoError(t, err)
		assert.Equal(t, existing.ID, result.User.ID)
		require.NotNil(t, result.User.GoogleID)
		assert.Equal(t, "google-sub", *result.User.GoogleID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("already linked account", func(t *testing.T) {
		sub := "google-sub"
		existing := &model.User{ID: uuid.New(), Email: "g@example.com", GoogleID: &sub}
		mockRepo := new(MockUserRepository)
		verifier := new(MockVerifier)
		verifier.On("Verify", mock.Anything, "cred").Return(identity, nil)
		mockRepo.On("FindByEmail", mock.Anything, "g@example.com").Return(existing, nil)
		service, _ := newAuthService(mockRepo, new(MockRevocationStore), verifier)

		_, err := service.LoginWithGoogle(context.Background(), "cred")

		require.NoError(t, err)
		mockRepo.AssertNotCalled(t, "LinkGoogleID", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejected credential", func(t *testing.T) {
		verifier := new(MockVerifier)
		verifier.On("Verify", mock.Anything, "bad").Return(nil, errors.New("wrong audience"))
		service, _ := newAuthService(new(MockUserRepository), new(MockRevocationStore), verifier)

		result, err := service.LoginWithGoogle(context.Background(), "bad")

		assert.Equal(t, apperrors.ErrInvalidCredential, err)
		assert.Nil(t, result)
	})
}

func TestAuthService_Logout(t *testing.T) {
	store := new(MockRevocationStore)
	service, jwtService := newAuthService(new(MockUserRepository), store, new(MockVerifier))
	token, err := jwtService.GenerateToken(uuid.New(), "a@example.com")
	require.NoError(t, err)
	claims, err := jwtService.ValidateToken(token)
	require.NoError(t, err)

	store.On("Revoke", mock.Anything, claims.ID, mock.MatchedBy(func(ttl time.Duration) bool {
		return ttl > 59*time.Minute && ttl <= time.Hour
	})).Return(nil)

	require.NoError(t, service.Logout(context.Background(), claims))
	store.AssertExpectations(t)

	assert.Equal(t, apperrors.ErrInvalidToken, service.Logout(context.Background(), &auth.Claims{}))
}

func TestAuthService_Logout_RevocationNotRecorded(t *testing.T) {
	// nothing listens on port 1
	redis := cache.New("127.0.0.1:1", "", 0, "test:")
	defer redis.Close()
	jwtService := auth.NewJWTService("test-secret", time.Hour)
	tokenStore := auth.NewTokenStore(redis)
	service := NewAuthService(new(MockUserRepository), jwtService, tokenStore, new(MockVerifier))

	token, err := jwtService.GenerateToken(uuid.New(), "a@example.com")
	require.NoError(t, err)
	claims, err := jwtService.ValidateToken(token)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err = service.Logout(ctx, claims)

	var serverErr *apperrors.ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, http.StatusInternalServerError, apperrors.MapErrorToHTTP(err).StatusCode)
}

func TestAuthService_Me(t *testing.T) {
	userID := uuid.New()
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByID", mock.Anything, userID).Return(&model.User{ID: userID, Name: "Me"}, nil)
	mockRepo.On("FindByID", mock.Anything, mock.Anything).Return(nil, gorm.ErrRecordNotFound)
	service, _ := newAuthService(mockRepo, new(MockRevocationStore), new(MockVerifier))

	user, err := service.Me(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "Me", user.Name)

	_, err = service.Me(context.Background(), uuid.New())
	assert.Equal(t, apperrors.ErrUserNotFound, err)
}
