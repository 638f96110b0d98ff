package blobstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStore grava os blobs no sistema de arquivos local, no diretório de
// uploads servido estaticamente pelo roteador em /uploads.
type LocalStore struct {
	dir string
}

// NewLocalStore cria o diretório de uploads (se necessário) e retorna o store.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("falha ao criar diretório de uploads: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// Save grava o conteúdo em <dir>/<uuid>.<ext> e retorna "/uploads/<uuid>.<ext>".
func (s *LocalStore) Save(_ context.Context, content io.Reader, ext string) (string, error) {
	filename := uuid.NewString()
	if ext != "" {
		filename = filename + "." + strings.TrimPrefix(ext, ".")
	}

	path := filepath.Join(s.dir, filename)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("falha ao criar arquivo de upload: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, content); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("falha ao gravar arquivo de upload: %w", err)
	}

	return "/uploads/" + filename, nil
}
