package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenService define o contrato para emissão e validação de JWTs.
// O token é autocontido: carrega o subject (email do usuário) e a expiração.
// O servidor não mantém estado de sessão, então um token emitido permanece
// válido até expirar, mesmo que o usuário mude depois.
type TokenService interface {
	GenerateToken(subject string) (string, error)
	ValidateToken(tokenString string) (string, error)
}

// Claims define as informações armazenadas no JWT.
// É obrigatório incorporar jwt.RegisteredClaims.
type Claims struct {
	jwt.RegisteredClaims
}

// Service implementa a interface TokenService.
type Service struct {
	secretKey []byte
	expiry    time.Duration
}

// NewService cria uma nova instância do serviço de Token.
// A chave secreta é carregada uma vez na inicialização e imutável depois.
func NewService(secretKey string, expiry time.Duration) *Service {
	return &Service{
		secretKey: []byte(secretKey),
		expiry:    expiry,
	}
}

// GenerateToken cria um novo JWT assinado (HS256) com o subject informado
// e expiração em now + expiry (24h por padrão, via config).
func (s *Service) GenerateToken(subject string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "BookVerse-API",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("falha ao assinar o token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken valida assinatura, estrutura e expiração, e retorna o subject.
// A validação é puramente criptográfica/temporal: nenhuma consulta a store.
func (s *Service) ValidateToken(tokenString string) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Verifica se o método de assinatura é o esperado (HS256)
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de assinatura inesperado: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	})

	if err != nil {
		// Cobre token expirado, malformado e assinatura incorreta
		return "", fmt.Errorf("token inválido: %w", err)
	}

	if !token.Valid {
		return "", errors.New("token não é válido")
	}

	if claims.Subject == "" {
		return "", errors.New("token sem subject")
	}

	return claims.Subject, nil
}
