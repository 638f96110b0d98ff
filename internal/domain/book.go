package domain

import (
	"context"
	"io"
	"time"
)

// Book representa o item principal do catálogo (a Entidade).
type Book struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	Category      string    `json:"category"`
	CoverImage    *string   `json:"cover_image"`
	IsFeatured    bool      `json:"is_featured"`
	CTAButtonText string    `json:"cta_button_text"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// DefaultCTAButtonText é o texto padrão do botão de compra quando o
// cadastro não informa um.
const DefaultCTAButtonText = "Buy Now"

// BookCreate representa o payload de entrada para criação de um livro.
type BookCreate struct {
	Title         string
	Author        string
	Description   string
	Price         float64
	Category      string
	IsFeatured    bool
	CTAButtonText string
}

// BookUpdate representa uma atualização parcial. Cada campo é um ponteiro:
// nil significa "campo não enviado" (mantém o valor atual), enquanto um
// ponteiro para valor vazio significa "definir como vazio". Essa distinção
// é o que permite o PUT parcial campo a campo.
type BookUpdate struct {
	Title         *string
	Author        *string
	Description   *string
	Price         *float64
	Category      *string
	IsFeatured    *bool
	CTAButtonText *string
	CoverImage    *string
}

// IsEmpty informa se a atualização não contém nenhum campo presente.
func (u BookUpdate) IsEmpty() bool {
	return u.Title == nil && u.Author == nil && u.Description == nil &&
		u.Price == nil && u.Category == nil && u.IsFeatured == nil &&
		u.CTAButtonText == nil && u.CoverImage == nil
}

// BookFilter define os parâmetros de busca da listagem. Os três predicados
// combinam com AND; o termo de busca compara título OU autor, sem
// diferenciar maiúsculas de minúsculas.
type BookFilter struct {
	Category string
	Featured *bool
	Search   string
}

// ImageUpload carrega o conteúdo binário de uma imagem de capa enviada
// junto com o formulário de criação/atualização.
type ImageUpload struct {
	Content  io.Reader
	Filename string
}

// BookRepository define o contrato de persistência para a entidade Book.
type BookRepository interface {
	Save(ctx context.Context, book Book) (Book, error)
	FindByID(ctx context.Context, id string) (Book, error)
	FindAll(ctx context.Context, filter BookFilter) ([]Book, error)
	Update(ctx context.Context, id string, changes BookUpdate) (Book, error)
	Delete(ctx context.Context, id string) error
	DistinctCategories(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int64, error)
}
