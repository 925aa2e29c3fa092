package handler

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"careercompass/internal/auth"
	"careercompass/internal/model"
	"careercompass/internal/service"
)

// MockAuthService is a mock implementation of AuthService.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, email, password, name string) (*service.AuthResult, error) {
	args := m.Called(ctx, email, password, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuthResult), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*service.AuthResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuthResult), args.Error(1)
}

func (m *MockAuthService) LoginWithGoogle(ctx context.Context, credential string) (*service.AuthResult, error) {
	args := m.Called(ctx, credential)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuthResult), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	args := m.Called(ctx, claims)
	return args.Error(0)
}

func (m *MockAuthService) Me(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// MockCareerService is a mock implementation of CareerService.
type MockCareerService struct {
	mock.Mock
}

func (m *MockCareerService) Consult(ctx context.Context, userID uuid.UUID, profile model.CareerProfile) ([]model.DomainSuggestion, error) {
	args := m.Called(ctx, userID, profile)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DomainSuggestion), args.Error(1)
}

func (m *MockCareerService) GenerateRoadmap(ctx context.Context, userID uuid.UUID, domain, currentSkills string) (*model.Roadmap, error) {
	args := m.Called(ctx, userID, domain, currentSkills)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Roadmap), args.Error(1)
}

func (m *MockCareerService) GetRoadmap(ctx context.Context, userID uuid.UUID) (*service.RoadmapView, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RoadmapView), args.Error(1)
}

func (m *MockCareerService) SetMonthCompleted(ctx context.Context, userID uuid.UUID, month int, completed bool, revision *int) (*model.Roadmap, error) {
	args := m.Called(ctx, userID, month, completed, revision)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Roadmap), args.Error(1)
}

type testServer struct {
	e      *echo.Echo
	jwt    *auth.JWTService
	auth   *MockAuthService
	career *MockCareerService
}

func newTestServer() *testServer {
	s := &testServer{
		e:      echo.New(),
		jwt:    auth.NewJWTService("test-secret", time.Hour),
		auth:   new(MockAuthService),
		career: new(MockCareerService),
	}
	s.e.Validator = NewValidator()
	s.e.HTTPErrorHandler = ErrorHandler(s.e)

	authHandler := NewAuthHandler(s.auth)
	userHandler := NewUserHandler(s.auth)
	aiHandler := NewAIHandler(s.career)
	gate := auth.NewGate(s.jwt, nil).Middleware()

	api := s.e.Group("/api")
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/google", authHandler.Google)
	api.GET("/auth/me", userHandler.Me, gate)
	api.POST("/auth/logout", authHandler.Logout, gate)

	ai := api.Group("/ai", gate)
	ai.POST("/deep-consult", aiHandler.DeepConsult)
	ai.POST("/generate-roadmap", aiHandler.GenerateRoadmap)
	ai.GET("/roadmap", aiHandler.GetRoadmap)
	ai.PATCH("/roadmap/months/:month", aiHandler.ToggleMonth)
	return s
}

func (s *testServer) token(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token, err := s.jwt.GenerateToken(userID, "student@example.com")
	require.NoError(t, err)
	return token
}

func (s *testServer) do(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}
