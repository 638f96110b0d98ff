package domain

import (
	"context"
	"time"
)

// User representa a entidade do usuário no sistema.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         UserRole  `json:"role"`
	PasswordHash string    `json:"-"` // Oculta o hash da senha no JSON de resposta
	CreatedAt    time.Time `json:"created_at"`
}

// UserRole é um tipo string para representar o papel do usuário no sistema.
// O conjunto é fechado: apenas "user" e "admin" são aceitos.
type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
)

// IsValid verifica se a role pertence ao conjunto fechado de roles suportadas.
func (r UserRole) IsValid() bool {
	return r == RoleAdmin || r == RoleUser
}

// UserRegistration representa o payload de entrada para o registro.
type UserRegistration struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role,omitempty"`
}

// AuthResponse é a resposta de sucesso do registro e do login:
// o token de acesso acompanhado do usuário autenticado.
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

// UserRepository define o contrato de persistência para a entidade User.
// A unicidade do email é garantida pela própria camada de persistência
// (constraint UNIQUE), não apenas pela pré-checagem do serviço.
type UserRepository interface {
	Save(ctx context.Context, user User) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	AdminExists(ctx context.Context) (bool, error)
}
