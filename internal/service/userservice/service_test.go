package userservice_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"bookverse/internal/domain"
	apperror "bookverse/internal/errors"
	"bookverse/internal/pkg/logger"
	"bookverse/internal/pkg/password"
	"bookverse/internal/pkg/token"
	"bookverse/internal/service/userservice"
)

// MockUserRepository é uma implementação mock da interface domain.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Save(ctx context.Context, user domain.User) (domain.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) AdminExists(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func newService(repo *MockUserRepository) *userservice.UserService {
	tokenSvc := token.NewService("segredo-de-teste", 24*time.Hour)
	return userservice.NewService(repo, tokenSvc, logger.NewLogger("fatal"))
}

// TestRegister_Success testa o registro com payload completo.
func TestRegister_Success(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := newService(mockRepo)

	mockRepo.On("ExistsByEmail", mock.Anything, "leitor@bookverse.com").Return(false, nil)
	mockRepo.On("Save", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		// O serviço deve persistir o hash, nunca a senha em texto puro
		return u.Email == "leitor@bookverse.com" &&
			u.Role == domain.RoleUser &&
			u.PasswordHash != "senha123" &&
			password.Verify("senha123", u.PasswordHash)
	})).Return(domain.User{ID: "u1", Email: "leitor@bookverse.com", Name: "Leitor", Role: domain.RoleUser}, nil)

	resp, err := svc.Register(context.Background(), domain.UserRegistration{
		Email:    "leitor@bookverse.com",
		Password: "senha123",
		Name:     "Leitor",
	})

	assert.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, "leitor@bookverse.com", resp.User.Email)
	mockRepo.AssertExpectations(t)
}

// TestRegister_DuplicateEmail testa o registro de email já existente (400).
func TestRegister_DuplicateEmail(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := newService(mockRepo)

	mockRepo.On("ExistsByEmail", mock.Anything, "leitor@bookverse.com").Return(true, nil)

	_, err := svc.Register(context.Background(), domain.UserRegistration{
		Email:    "leitor@bookverse.com",
		Password: "senha123",
		Name:     "Leitor",
	})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ConflictError{}, err)
	assert.Contains(t, err.Error(), "Email already registered")
	mockRepo.AssertNotCalled(t, "Save")
}

// TestRegister_RaceLostToConcurrentInsert testa a corrida: a pré-checagem
// passa, mas o Save perde para uma inserção concorrente e o conflito do DB
// chega ao chamador.
func TestRegister_RaceLostToConcurrentInsert(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := newService(mockRepo)

	mockRepo.On("ExistsByEmail", mock.Anything, "leitor@bookverse.com").Return(false, nil)
	mockRepo.On("Save", mock.Anything, mock.Anything).
		Return(domain.User{}, apperror.NewConflictError("Email already registered"))

	_, err := svc.Register(context.Background(), domain.UserRegistration{
		Email:    "leitor@bookverse.com",
		Password: "senha123",
		Name:     "Leitor",
	})

	assert.IsType(t, &apperror.ConflictError{}, err)
}

// TestRegister_InvalidRole testa a rejeição de role fora do conjunto fechado.
func TestRegister_InvalidRole(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := newService(mockRepo)

	_, err := svc.Register(context.Background(), domain.UserRegistration{
		Email:    "leitor@bookverse.com",
		Password: "senha123",
		Name:     "Leitor",
		Role:     "superuser",
	})

	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "ExistsByEmail")
}

// TestRegister_MissingFields testa a validação de campos obrigatórios.
func TestRegister_MissingFields(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := newService(mockRepo)

	_, err := svc.Register(context.Background(), domain.UserRegistration{Email: "a@b.com"})
	assert.IsType(t, &apperror.ValidationError{}, err)
}

// TestLogin_Success testa o login com credenciais corretas.
func TestLogin_Success(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := newService(mockRepo)

	hash, _ := password.Hash("senha123")
	mockRepo.On("FindByEmail", mock.Anything, "leitor@bookverse.com").
		Return(domain.User{ID: "u1", Email: "leitor@bookverse.com", Role: domain.RoleUser, PasswordHash: hash}, nil)

	resp, err := svc.Login(context.Background(), "leitor@bookverse.com", "senha123")

	assert.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "u1", resp.User.ID)
}

// TestLogin_WrongPassword testa o login com senha incorreta (401).
func TestLogin_WrongPassword(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := newService(mockRepo)

	hash, _ := password.Hash("senha123")
	mockRepo.On("FindByEmail", mock.Anything, "leitor@bookverse.com").
		Return(domain.User{Email: "leitor@bookverse.com", PasswordHash: hash}, nil)

	_, err := svc.Login(context.Background(), "leitor@bookverse.com", "senha-errada")

	assert.IsType(t, &apperror.UnauthorizedError{}, err)
}

// TestLogin_UnknownEmail testa que email desconhecido vira 401, não 404.
func TestLogin_UnknownEmail(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := newService(mockRepo)

	mockRepo.On("FindByEmail", mock.Anything, "fantasma@bookverse.com").
		Return(domain.User{}, apperror.NewNotFoundError("não encontrado"))

	_, err := svc.Login(context.Background(), "fantasma@bookverse.com", "qualquer")

	assert.IsType(t, &apperror.UnauthorizedError{}, err)
}

// TestLogin_RepoError testa que falha de infraestrutura propaga como veio.
func TestLogin_RepoError(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := newService(mockRepo)

	mockRepo.On("FindByEmail", mock.Anything, "leitor@bookverse.com").
		Return(domain.User{}, apperror.NewDBError("conexão perdida", errors.New("timeout")))

	_, err := svc.Login(context.Background(), "leitor@bookverse.com", "senha123")

	assert.IsType(t, &apperror.InternalError{}, err)
}

// TestAuthenticate_Success testa a cadeia completa: Bearer -> subject -> usuário.
func TestAuthenticate_Success(t *testing.T) {
	mockRepo := new(MockUserRepository)
	tokenSvc := token.NewService("segredo-de-teste", time.Hour)
	svc := userservice.NewService(mockRepo, tokenSvc, logger.NewLogger("fatal"))

	tokenString, err := tokenSvc.GenerateToken("leitor@bookverse.com")
	assert.NoError(t, err)

	mockRepo.On("FindByEmail", mock.Anything, "leitor@bookverse.com").
		Return(domain.User{ID: "u1", Email: "leitor@bookverse.com", Role: domain.RoleUser}, nil)

	user, err := svc.Authenticate(context.Background(), "Bearer "+tokenString)

	assert.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
}

// TestAuthenticate_MissingOrMalformedHeader testa header ausente/malformado (401).
func TestAuthenticate_MissingOrMalformedHeader(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := newService(mockRepo)

	for _, raw := range []string{"", "Basic abc123", "Bearer"} {
		_, err := svc.Authenticate(context.Background(), raw)
		assert.IsType(t, &apperror.UnauthorizedError{}, err, "header %q deveria falhar com 401", raw)
	}
}

// TestAuthenticate_InvalidToken testa token inválido/expirado (401).
func TestAuthenticate_InvalidToken(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := newService(mockRepo)

	_, err := svc.Authenticate(context.Background(), "Bearer nao-e-um-jwt")
	assert.IsType(t, &apperror.UnauthorizedError{}, err)
}

// TestAuthenticate_SubjectGone testa o token válido cujo usuário sumiu do banco.
func TestAuthenticate_SubjectGone(t *testing.T) {
	mockRepo := new(MockUserRepository)
	tokenSvc := token.NewService("segredo-de-teste", time.Hour)
	svc := userservice.NewService(mockRepo, tokenSvc, logger.NewLogger("fatal"))

	tokenString, _ := tokenSvc.GenerateToken("removido@bookverse.com")
	mockRepo.On("FindByEmail", mock.Anything, "removido@bookverse.com").
		Return(domain.User{}, apperror.NewNotFoundError("não encontrado"))

	_, err := svc.Authenticate(context.Background(), "Bearer "+tokenString)
	assert.IsType(t, &apperror.UnauthorizedError{}, err)
}

// TestRequireRole testa a distinção 403 para usuário autenticado sem a role.
func TestRequireRole(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := newService(mockRepo)

	admin := domain.User{Role: domain.RoleAdmin}
	regular := domain.User{Role: domain.RoleUser}

	assert.NoError(t, svc.RequireRole(admin, domain.RoleAdmin))

	err := svc.RequireRole(regular, domain.RoleAdmin)
	assert.IsType(t, &apperror.ForbiddenError{}, err)
}
