package blobstore

import (
	"context"
	"io"
)

// Store define o contrato de armazenamento de blobs (imagens de capa).
// Save persiste o conteúdo sob um nome opaco recém-gerado (preservando a
// extensão sugerida) e retorna o caminho público de referência que será
// gravado no registro do livro.
type Store interface {
	Save(ctx context.Context, content io.Reader, ext string) (string, error)
}
