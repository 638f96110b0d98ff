package book

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"bookverse/internal/domain"
	apperror "bookverse/internal/errors"
	"bookverse/internal/pkg/logger"
)

// maxUploadSize limita o tamanho do formulário multipart (imagem inclusa).
const maxUploadSize = 10 << 20 // 10 MB

// BookService define o contrato que o Handler espera da camada de Serviço.
type BookService interface {
	ListBooks(ctx context.Context, filter domain.BookFilter) ([]domain.Book, error)
	GetBook(ctx context.Context, id string) (domain.Book, error)
	CreateBook(ctx context.Context, input domain.BookCreate, image *domain.ImageUpload) (domain.Book, error)
	UpdateBook(ctx context.Context, id string, changes domain.BookUpdate, image *domain.ImageUpload) (domain.Book, error)
	DeleteBook(ctx context.Context, id string) error
	ListCategories(ctx context.Context) ([]string, error)
}

// Handler agrupa todos os métodos de Handler do catálogo de livros.
type Handler struct {
	Service BookService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc BookService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// handleServiceResponse processa erros de serviço e envia respostas padronizadas ao cliente.
func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	if err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(successStatus)
		if data != nil {
			if jsonErr := json.NewEncoder(w).Encode(data); jsonErr != nil {
				h.Logger.Error("Falha ao codificar JSON de resposta", jsonErr)
			}
		}
		return
	}

	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= 500 {
		h.Logger.Error(fmt.Sprintf("Erro de Servidor: %s", category), err)
	} else {
		h.Logger.Debug(fmt.Sprintf("Requisição rejeitada com status %d. Categoria: %s", status, category),
			map[string]interface{}{"path": r.URL.Path})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(domain.ErrorResponse{
		Code:     status,
		Category: category,
		Message:  message,
	})
}

// bookID extrai o ID do livro do caminho /books/{id}.
func bookID(r *http.Request) string {
	return strings.TrimPrefix(r.URL.Path, "/books/")
}

// imageFromForm extrai a imagem de capa opcional do formulário multipart.
// Retorna nil quando nenhum arquivo foi enviado.
func imageFromForm(r *http.Request) (*domain.ImageUpload, error) {
	file, header, err := r.FormFile("cover_image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.NewValidationError("Arquivo de imagem inválido.")
	}
	return &domain.ImageUpload{Content: file, Filename: header.Filename}, nil
}

// ListBooksHandler lida com a requisição GET /books.
// @Summary Lista o catálogo de livros
// @Description Filtra por categoria exata, destaque e busca em título/autor. Máximo de 100 resultados.
// @Tags books
// @Produce json
// @Param category query string false "Categoria exata"
// @Param featured query bool false "Apenas destacados (true) ou não destacados (false)"
// @Param search query string false "Substring de título ou autor, sem case"
// @Success 200 {array} domain.Book
// @Failure 400 {object} domain.ErrorResponse "Parâmetro de filtro inválido"
// @Router /books [get]
func (h *Handler) ListBooksHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := domain.BookFilter{
		Category: query.Get("category"),
		Search:   query.Get("search"),
	}

	if raw := query.Get("featured"); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			h.handleServiceResponse(w, r, nil, apperror.NewValidationError("O parâmetro 'featured' deve ser booleano."), http.StatusOK)
			return
		}
		filter.Featured = &featured
	}

	books, err := h.Service.ListBooks(r.Context(), filter)
	h.handleServiceResponse(w, r, books, err, http.StatusOK)
}

// GetBookHandler lida com a requisição GET /books/{id}.
// @Summary Busca um livro pelo ID
// @Tags books
// @Produce json
// @Param id path string true "ID do livro"
// @Success 200 {object} domain.Book
// @Failure 404 {object} domain.ErrorResponse "Livro não encontrado"
// @Router /books/{id} [get]
func (h *Handler) GetBookHandler(w http.ResponseWriter, r *http.Request) {
	book, err := h.Service.GetBook(r.Context(), bookID(r))
	h.handleServiceResponse(w, r, book, err, http.StatusOK)
}

// CreateBookHandler lida com a requisição POST /books (multipart, admin).
// @Summary Cria um livro no catálogo
// @Description Recebe formulário multipart com os campos do livro e imagem de capa opcional.
// @Tags books
// @Accept mpfd
// @Produce json
// @Param title formData string true "Título"
// @Param author formData string true "Autor"
// @Param description formData string true "Descrição"
// @Param price formData number true "Preço (não negativo)"
// @Param category formData string true "Categoria"
// @Param is_featured formData bool false "Destaque"
// @Param cta_button_text formData string false "Texto do botão (padrão: Buy Now)"
// @Param cover_image formData file false "Imagem de capa"
// @Success 200 {object} domain.Book
// @Failure 400 {object} domain.ErrorResponse "Campo inválido"
// @Failure 401 {object} domain.ErrorResponse "Não autenticado"
// @Failure 403 {object} domain.ErrorResponse "Requer role admin"
// @Security BearerAuth
// @Router /books [post]
func (h *Handler) CreateBookHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Formulário multipart inválido."), http.StatusOK)
		return
	}

	price, err := strconv.ParseFloat(r.FormValue("price"), 64)
	if err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("O preço deve ser numérico."), http.StatusOK)
		return
	}

	input := domain.BookCreate{
		Title:         r.FormValue("title"),
		Author:        r.FormValue("author"),
		Description:   r.FormValue("description"),
		Price:         price,
		Category:      r.FormValue("category"),
		CTAButtonText: r.FormValue("cta_button_text"),
	}

	if raw := r.FormValue("is_featured"); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			h.handleServiceResponse(w, r, nil, apperror.NewValidationError("O campo 'is_featured' deve ser booleano."), http.StatusOK)
			return
		}
		input.IsFeatured = featured
	}

	image, imgErr := imageFromForm(r)
	if imgErr != nil {
		h.handleServiceResponse(w, r, nil, imgErr, http.StatusOK)
		return
	}

	created, err := h.Service.CreateBook(r.Context(), input, image)
	h.handleServiceResponse(w, r, created, err, http.StatusOK)
}

// UpdateBookHandler lida com a requisição PUT /books/{id} (multipart, admin).
// Somente os campos presentes no formulário são aplicados; os demais mantêm
// o valor atual. Uma nova imagem substitui a capa; sem imagem, a capa fica.
// @Summary Atualiza parcialmente um livro
// @Tags books
// @Accept mpfd
// @Produce json
// @Param id path string true "ID do livro"
// @Success 200 {object} domain.Book
// @Failure 400 {object} domain.ErrorResponse "Campo inválido"
// @Failure 401 {object} domain.ErrorResponse "Não autenticado"
// @Failure 403 {object} domain.ErrorResponse "Requer role admin"
// @Failure 404 {object} domain.ErrorResponse "Livro não encontrado"
// @Security BearerAuth
// @Router /books/{id} [put]
func (h *Handler) UpdateBookHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Formulário multipart inválido."), http.StatusOK)
		return
	}

	// A presença da chave no formulário distingue "não enviado" de
	// "enviado vazio": só montamos ponteiros para campos presentes.
	formValue := func(field string) *string {
		values, ok := r.MultipartForm.Value[field]
		if !ok || len(values) == 0 {
			return nil
		}
		return &values[0]
	}

	var changes domain.BookUpdate
	changes.Title = formValue("title")
	changes.Author = formValue("author")
	changes.Description = formValue("description")
	changes.Category = formValue("category")
	changes.CTAButtonText = formValue("cta_button_text")

	if raw := formValue("price"); raw != nil {
		price, err := strconv.ParseFloat(*raw, 64)
		if err != nil {
			h.handleServiceResponse(w, r, nil, apperror.NewValidationError("O preço deve ser numérico."), http.StatusOK)
			return
		}
		changes.Price = &price
	}

	if raw := formValue("is_featured"); raw != nil {
		featured, err := strconv.ParseBool(*raw)
		if err != nil {
			h.handleServiceResponse(w, r, nil, apperror.NewValidationError("O campo 'is_featured' deve ser booleano."), http.StatusOK)
			return
		}
		changes.IsFeatured = &featured
	}

	image, imgErr := imageFromForm(r)
	if imgErr != nil {
		h.handleServiceResponse(w, r, nil, imgErr, http.StatusOK)
		return
	}

	updated, err := h.Service.UpdateBook(r.Context(), bookID(r), changes, image)
	h.handleServiceResponse(w, r, updated, err, http.StatusOK)
}

// DeleteBookHandler lida com a requisição DELETE /books/{id} (admin).
// @Summary Remove um livro do catálogo
// @Tags books
// @Produce json
// @Param id path string true "ID do livro"
// @Success 200 {object} map[string]string "Mensagem de confirmação"
// @Failure 401 {object} domain.ErrorResponse "Não autenticado"
// @Failure 403 {object} domain.ErrorResponse "Requer role admin"
// @Failure 404 {object} domain.ErrorResponse "Livro não encontrado"
// @Security BearerAuth
// @Router /books/{id} [delete]
func (h *Handler) DeleteBookHandler(w http.ResponseWriter, r *http.Request) {
	err := h.Service.DeleteBook(r.Context(), bookID(r))
	h.handleServiceResponse(w, r, map[string]string{"message": "Book deleted successfully"}, err, http.StatusOK)
}

// CategoriesHandler lida com a requisição GET /categories.
// @Summary Lista as categorias distintas do catálogo
// @Tags books
// @Produce json
// @Success 200 {array} string
// @Router /categories [get]
func (h *Handler) CategoriesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	categories, err := h.Service.ListCategories(r.Context())
	h.handleServiceResponse(w, r, categories, err, http.StatusOK)
}
