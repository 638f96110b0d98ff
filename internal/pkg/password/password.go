package password

import (
	"golang.org/x/crypto/bcrypt"
)

// Hash gera um hash bcrypt (com salt aleatório) para a senha em texto puro.
// Duas chamadas com a mesma senha produzem hashes diferentes.
func Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify compara a senha em texto puro com o hash armazenado.
// Retorna false para senha incorreta E para hash malformado: qualquer
// falha interna é tratada como verificação negativa, nunca como login válido.
func Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
