package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"bookverse/internal/domain"
	apperror "bookverse/internal/errors"
)

// ContextKey é o tipo das chaves de contexto deste pacote. Usamos um tipo
// próprio para garantir que não haja conflito com chaves string de terceiros.
type ContextKey int

const (
	// CurrentUserKey guarda o domain.User autenticado no contexto da requisição.
	CurrentUserKey ContextKey = iota
)

// Authenticator define o contrato que o middleware espera da camada de
// serviço: resolver o valor bruto do header Authorization em um usuário.
// A cadeia completa (extrair token, validar assinatura/expiração, resolver
// o subject no banco) vive no serviço; o middleware só traduz falhas em 401.
type Authenticator interface {
	Authenticate(ctx context.Context, rawBearer string) (domain.User, error)
}

// NewAuthMiddleware cria o middleware que autentica a requisição e anexa o
// usuário resolvido ao contexto. Qualquer falha de autenticação vira 401,
// inclusive em rotas que também exigiriam role de admin.
func NewAuthMiddleware(auth Authenticator) func(next http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {

			user, err := auth.Authenticate(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				writeError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), CurrentUserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
	}
}

// GetCurrentUser extrai o usuário autenticado do contexto da requisição.
func GetCurrentUser(ctx context.Context) (domain.User, bool) {
	user, ok := ctx.Value(CurrentUserKey).(domain.User)
	return user, ok
}

// PermissionMiddleware exige que o usuário autenticado tenha uma das roles
// informadas. Deve ser composto DEPOIS do auth middleware: usuário ausente
// é 401 (autenticação nunca rodou), role errada é 403.
func PermissionMiddleware(requiredRoles ...domain.UserRole) func(next http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {

			user, ok := GetCurrentUser(r.Context())
			if !ok {
				writeError(w, apperror.NewUnauthorizedError("Autorização necessária."))
				return
			}

			for _, role := range requiredRoles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			writeError(w, apperror.NewForbiddenError("Admin access required"))
		}
	}
}

// writeError envia a resposta de erro no mesmo formato JSON dos handlers.
func writeError(w http.ResponseWriter, err error) {
	status, category, message := apperror.MapToHTTPStatus(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(domain.ErrorResponse{
		Code:     status,
		Category: category,
		Message:  message,
	})
}
