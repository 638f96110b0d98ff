package userservice

import (
	"context"
	"strings"

	"bookverse/internal/domain"
	apperror "bookverse/internal/errors"
	"bookverse/internal/pkg/logger"
	"bookverse/internal/pkg/password"
)

// TokenService é o contrato da camada de token (internal/pkg/token).
type TokenService interface {
	GenerateToken(subject string) (string, error)
	ValidateToken(tokenString string) (string, error)
}

// UserService implementa o registro, o login e o guard de controle de acesso
// (autenticação de bearer token + exigência de role).
type UserService struct {
	UserRepo domain.UserRepository
	TokenSvc TokenService
	Logger   logger.Logger
}

// NewService cria uma nova instância do UserService, injetando o Repositório,
// o serviço de token e o logger.
func NewService(repo domain.UserRepository, tokenSvc TokenService, log logger.Logger) *UserService {
	return &UserService{
		UserRepo: repo,
		TokenSvc: tokenSvc,
		Logger:   log,
	}
}

// Register registra um novo usuário: valida o payload, hasheia a senha,
// persiste e emite o token de acesso.
func (s *UserService) Register(ctx context.Context, registration domain.UserRegistration) (domain.AuthResponse, error) {
	// 1. Validação básica
	if registration.Email == "" || registration.Password == "" || registration.Name == "" {
		return domain.AuthResponse{}, apperror.NewValidationError("Email, senha e nome são obrigatórios.")
	}

	role := domain.RoleUser
	if registration.Role != "" {
		role = domain.UserRole(registration.Role)
		if !role.IsValid() {
			return domain.AuthResponse{}, apperror.NewValidationError("Role inválida: use 'user' ou 'admin'.")
		}
	}

	// 2. Pré-checagem de unicidade (caminho rápido; a constraint do DB decide)
	exists, err := s.UserRepo.ExistsByEmail(ctx, registration.Email)
	if err != nil {
		return domain.AuthResponse{}, err
	}
	if exists {
		return domain.AuthResponse{}, apperror.NewConflictError("Email already registered")
	}

	// 3. Hashing da senha
	passwordHash, err := password.Hash(registration.Password)
	if err != nil {
		return domain.AuthResponse{}, apperror.NewInternalError("Falha ao gerar hash da senha.", err)
	}

	// 4. Persistência (Save retorna ConflictError em corrida de registro)
	user, err := s.UserRepo.Save(ctx, domain.User{
		Email:        registration.Email,
		Name:         registration.Name,
		Role:         role,
		PasswordHash: passwordHash,
	})
	if err != nil {
		return domain.AuthResponse{}, err
	}

	// 5. Emissão do token com o email como subject
	tokenString, err := s.TokenSvc.GenerateToken(user.Email)
	if err != nil {
		return domain.AuthResponse{}, apperror.NewInternalError("Falha ao gerar token de autenticação.", err)
	}

	s.Logger.Info("Novo usuário registrado.", map[string]interface{}{"user_id": user.ID, "role": string(user.Role)})

	return domain.AuthResponse{
		AccessToken: tokenString,
		TokenType:   "bearer",
		User:        user,
	}, nil
}

// Login autentica um usuário por email e senha e emite um JWT.
func (s *UserService) Login(ctx context.Context, email string, plainPassword string) (domain.AuthResponse, error) {
	if email == "" || plainPassword == "" {
		return domain.AuthResponse{}, apperror.NewUnauthorizedError("Invalid email or password")
	}

	user, err := s.UserRepo.FindByEmail(ctx, email)
	if err != nil {
		// Email desconhecido vira 401 genérico para não dar dicas a invasores
		if _, ok := err.(*apperror.NotFoundError); ok {
			return domain.AuthResponse{}, apperror.NewUnauthorizedError("Invalid email or password")
		}
		return domain.AuthResponse{}, err
	}

	if !password.Verify(plainPassword, user.PasswordHash) {
		return domain.AuthResponse{}, apperror.NewUnauthorizedError("Invalid email or password")
	}

	tokenString, err := s.TokenSvc.GenerateToken(user.Email)
	if err != nil {
		return domain.AuthResponse{}, apperror.NewInternalError("Falha ao gerar token de autenticação.", err)
	}

	return domain.AuthResponse{
		AccessToken: tokenString,
		TokenType:   "bearer",
		User:        user,
	}, nil
}

// Authenticate resolve o valor bruto do header Authorization em um usuário:
// extrai o token do prefixo "Bearer ", valida assinatura/expiração e busca o
// subject no repositório. Todas as falhas viram UnauthorizedError (401) —
// inclusive subject que não existe mais no banco.
func (s *UserService) Authenticate(ctx context.Context, rawBearer string) (domain.User, error) {
	if rawBearer == "" || !strings.HasPrefix(rawBearer, "Bearer ") {
		return domain.User{}, apperror.NewUnauthorizedError("Token de autorização ausente ou malformado.")
	}

	tokenString := strings.TrimPrefix(rawBearer, "Bearer ")

	subject, err := s.TokenSvc.ValidateToken(tokenString)
	if err != nil {
		return domain.User{}, apperror.NewUnauthorizedError("Token inválido ou expirado.")
	}

	user, err := s.UserRepo.FindByEmail(ctx, subject)
	if err != nil {
		if _, ok := err.(*apperror.NotFoundError); ok {
			return domain.User{}, apperror.NewUnauthorizedError("Usuário do token não existe mais.")
		}
		return domain.User{}, err
	}

	return user, nil
}

// RequireRole exige que o usuário autenticado tenha a role informada.
// Separado do Authenticate de propósito: "autenticado sem permissão" (403)
// é um resultado diferente de "não autenticado" (401).
func (s *UserService) RequireRole(user domain.User, role domain.UserRole) error {
	if user.Role != role {
		return apperror.NewForbiddenError("Admin access required")
	}
	return nil
}
