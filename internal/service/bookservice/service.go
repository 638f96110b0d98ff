package bookservice

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"bookverse/internal/domain"
	apperror "bookverse/internal/errors"
	"bookverse/internal/pkg/blobstore"
	"bookverse/internal/pkg/logger"
)

// Service implementa a lógica de negócio do catálogo de livros.
// As leituras são públicas; as mutações chegam aqui somente depois do guard
// de autenticação/role aplicado no roteador.
type Service struct {
	repo  domain.BookRepository
	blobs blobstore.Store
	log   logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Livro.
func NewService(repo domain.BookRepository, blobs blobstore.Store, log logger.Logger) *Service {
	return &Service{repo: repo, blobs: blobs, log: log}
}

// extractExt retorna a extensão (sem ponto) do nome de arquivo enviado.
func extractExt(filename string) string {
	return strings.TrimPrefix(filepath.Ext(filename), ".")
}

// storeImage grava a imagem de capa no blob store e retorna a referência pública.
func (s *Service) storeImage(ctx context.Context, image *domain.ImageUpload) (*string, error) {
	ref, err := s.blobs.Save(ctx, image.Content, extractExt(image.Filename))
	if err != nil {
		return nil, apperror.NewInternalError("Falha ao armazenar a imagem de capa.", err)
	}
	return &ref, nil
}

// ListBooks lista o catálogo aplicando o filtro (categoria, destaque, busca).
func (s *Service) ListBooks(ctx context.Context, filter domain.BookFilter) ([]domain.Book, error) {
	return s.repo.FindAll(ctx, filter)
}

// GetBook busca um livro pelo ID.
func (s *Service) GetBook(ctx context.Context, id string) (domain.Book, error) {
	if id == "" {
		return domain.Book{}, apperror.NewValidationError("O ID do livro é obrigatório.")
	}
	return s.repo.FindByID(ctx, id)
}

// CreateBook valida e persiste um novo livro. A imagem de capa é opcional:
// quando presente, é gravada no blob store e a referência vai no registro;
// quando ausente, cover_image fica nula.
func (s *Service) CreateBook(ctx context.Context, input domain.BookCreate, image *domain.ImageUpload) (domain.Book, error) {
	// Validação de regras de negócio
	if input.Title == "" || input.Author == "" {
		return domain.Book{}, apperror.NewValidationError("Título e autor são obrigatórios.")
	}
	if input.Category == "" {
		return domain.Book{}, apperror.NewValidationError("A categoria é obrigatória.")
	}
	if input.Price < 0 {
		return domain.Book{}, apperror.NewValidationError("O preço não pode ser negativo.")
	}

	var coverImage *string
	if image != nil {
		ref, err := s.storeImage(ctx, image)
		if err != nil {
			return domain.Book{}, err
		}
		coverImage = ref
	}

	ctaText := input.CTAButtonText
	if ctaText == "" {
		ctaText = domain.DefaultCTAButtonText
	}

	now := time.Now().UTC()
	book := domain.Book{
		ID:            uuid.NewString(),
		Title:         input.Title,
		Author:        input.Author,
		Description:   input.Description,
		Price:         input.Price,
		Category:      input.Category,
		CoverImage:    coverImage,
		IsFeatured:    input.IsFeatured,
		CTAButtonText: ctaText,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	created, err := s.repo.Save(ctx, book)
	if err != nil {
		return domain.Book{}, err
	}

	s.log.Info("Livro criado no catálogo.", map[string]interface{}{"book_id": created.ID, "title": created.Title})
	return created, nil
}

// UpdateBook aplica uma atualização parcial: somente os campos presentes em
// changes são alterados. Uma nova imagem substitui a referência de capa;
// sem imagem, a capa existente permanece intocada.
func (s *Service) UpdateBook(ctx context.Context, id string, changes domain.BookUpdate, image *domain.ImageUpload) (domain.Book, error) {
	if id == "" {
		return domain.Book{}, apperror.NewValidationError("O ID do livro é obrigatório.")
	}
	if changes.Price != nil && *changes.Price < 0 {
		return domain.Book{}, apperror.NewValidationError("O preço não pode ser negativo.")
	}

	if image != nil {
		ref, err := s.storeImage(ctx, image)
		if err != nil {
			return domain.Book{}, err
		}
		changes.CoverImage = ref
	}

	return s.repo.Update(ctx, id, changes)
}

// DeleteBook remove um livro do catálogo, de forma irreversível.
func (s *Service) DeleteBook(ctx context.Context, id string) error {
	if id == "" {
		return apperror.NewValidationError("O ID do livro é obrigatório.")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info("Livro removido do catálogo.", map[string]interface{}{"book_id": id})
	return nil
}

// ListCategories retorna o conjunto de categorias distintas do catálogo.
func (s *Service) ListCategories(ctx context.Context) ([]string, error) {
	return s.repo.DistinctCategories(ctx)
}
