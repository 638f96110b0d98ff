package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"bookverse/internal/api/auth"
	"bookverse/internal/domain"
	apperror "bookverse/internal/errors"
	"bookverse/internal/pkg/logger"
	"bookverse/internal/pkg/middleware"
)

// MockUserService é uma implementação mock da interface auth.UserService.
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, registration domain.UserRegistration) (domain.AuthResponse, error) {
	args := m.Called(ctx, registration)
	return args.Get(0).(domain.AuthResponse), args.Error(1)
}

func (m *MockUserService) Login(ctx context.Context, email string, password string) (domain.AuthResponse, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(domain.AuthResponse), args.Error(1)
}

// stubAuthenticator devolve sempre o mesmo resultado, para testar o middleware.
type stubAuthenticator struct {
	user domain.User
	err  error
}

func (s stubAuthenticator) Authenticate(_ context.Context, _ string) (domain.User, error) {
	return s.user, s.err
}

func newHandler(svc *MockUserService) *auth.Handler {
	return auth.NewHandler(svc, logger.NewLogger("fatal"))
}

// TestRegisterHandler_Success testa o POST /auth/register com sucesso (200).
func TestRegisterHandler_Success(t *testing.T) {
	mockSvc := new(MockUserService)
	h := newHandler(mockSvc)

	mockSvc.On("Register", mock.Anything, domain.UserRegistration{
		Email: "leitor@bookverse.com", Password: "senha123", Name: "Leitor",
	}).Return(domain.AuthResponse{
		AccessToken: "jwt-emitido",
		TokenType:   "bearer",
		User:        domain.User{ID: "u1", Email: "leitor@bookverse.com", Role: domain.RoleUser},
	}, nil)

	body := `{"email":"leitor@bookverse.com","password":"senha123","name":"Leitor"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.RegisterHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp domain.AuthResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "jwt-emitido", resp.AccessToken)
	assert.Equal(t, "leitor@bookverse.com", resp.User.Email)
}

// TestRegisterHandler_DuplicateEmail testa que email duplicado vira 400.
func TestRegisterHandler_DuplicateEmail(t *testing.T) {
	mockSvc := new(MockUserService)
	h := newHandler(mockSvc)

	mockSvc.On("Register", mock.Anything, mock.Anything).
		Return(domain.AuthResponse{}, apperror.NewConflictError("Email already registered"))

	body := `{"email":"leitor@bookverse.com","password":"senha123","name":"Leitor"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.RegisterHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var errResp domain.ErrorResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, "Email already registered", errResp.Message)
}

// TestRegisterHandler_InvalidJSON testa o payload malformado (400).
func TestRegisterHandler_InvalidJSON(t *testing.T) {
	mockSvc := new(MockUserService)
	h := newHandler(mockSvc)

	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader("{nao-e-json"))
	rec := httptest.NewRecorder()

	h.RegisterHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockSvc.AssertNotCalled(t, "Register")
}

// TestLoginHandler_InvalidCredentials testa credenciais inválidas (401).
func TestLoginHandler_InvalidCredentials(t *testing.T) {
	mockSvc := new(MockUserService)
	h := newHandler(mockSvc)

	mockSvc.On("Login", mock.Anything, "leitor@bookverse.com", "senha-errada").
		Return(domain.AuthResponse{}, apperror.NewUnauthorizedError("Invalid email or password"))

	body := `{"email":"leitor@bookverse.com","password":"senha-errada"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.LoginHandler(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// TestMeHandler testa o GET /auth/me atrás do auth middleware:
// com usuário resolvido responde 200, sem token responde 401.
func TestMeHandler(t *testing.T) {
	mockSvc := new(MockUserService)
	h := newHandler(mockSvc)

	// Autenticado
	ok := middleware.NewAuthMiddleware(stubAuthenticator{
		user: domain.User{ID: "u1", Email: "leitor@bookverse.com", Role: domain.RoleUser},
	})(h.MeHandler)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	rec := httptest.NewRecorder()
	ok(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var user domain.User
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, "u1", user.ID)

	// Sem token
	unauthenticated := middleware.NewAuthMiddleware(stubAuthenticator{
		err: apperror.NewUnauthorizedError("Token de autorização ausente ou malformado."),
	})(h.MeHandler)

	req = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	rec = httptest.NewRecorder()
	unauthenticated(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
