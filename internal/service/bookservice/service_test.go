package bookservice_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"bookverse/internal/domain"
	apperror "bookverse/internal/errors"
	"bookverse/internal/pkg/logger"
	"bookverse/internal/service/bookservice"
)

// MockBookRepository é uma implementação mock da interface domain.BookRepository.
type MockBookRepository struct {
	mock.Mock
}

func (m *MockBookRepository) Save(ctx context.Context, book domain.Book) (domain.Book, error) {
	args := m.Called(ctx, book)
	return args.Get(0).(domain.Book), args.Error(1)
}

func (m *MockBookRepository) FindByID(ctx context.Context, id string) (domain.Book, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Book), args.Error(1)
}

func (m *MockBookRepository) FindAll(ctx context.Context, filter domain.BookFilter) ([]domain.Book, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Book), args.Error(1)
}

func (m *MockBookRepository) Update(ctx context.Context, id string, changes domain.BookUpdate) (domain.Book, error) {
	args := m.Called(ctx, id, changes)
	return args.Get(0).(domain.Book), args.Error(1)
}

func (m *MockBookRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBookRepository) DistinctCategories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockBookRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockBlobStore é uma implementação mock da interface blobstore.Store.
type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) Save(ctx context.Context, content io.Reader, ext string) (string, error) {
	args := m.Called(ctx, content, ext)
	return args.String(0), args.Error(1)
}

func newService(repo *MockBookRepository, blobs *MockBlobStore) *bookservice.Service {
	return bookservice.NewService(repo, blobs, logger.NewLogger("fatal"))
}

// TestCreateBook_Success testa a criação sem imagem: cover_image deve ficar nula.
func TestCreateBook_Success(t *testing.T) {
	mockRepo := new(MockBookRepository)
	mockBlobs := new(MockBlobStore)
	svc := newService(mockRepo, mockBlobs)

	mockRepo.On("Save", mock.Anything, mock.MatchedBy(func(b domain.Book) bool {
		return b.ID != "" &&
			b.Title == "Milk and Honey" &&
			b.CoverImage == nil &&
			b.CTAButtonText == "Buy Now" && // default aplicado
			b.CreatedAt.Equal(b.UpdatedAt)
	})).Return(domain.Book{ID: "b1", Title: "Milk and Honey"}, nil)

	book, err := svc.CreateBook(context.Background(), domain.BookCreate{
		Title:    "Milk and Honey",
		Author:   "Rupi Kaur",
		Price:    14.99,
		Category: "Poetry",
	}, nil)

	assert.NoError(t, err)
	assert.Equal(t, "b1", book.ID)
	mockBlobs.AssertNotCalled(t, "Save")
	mockRepo.AssertExpectations(t)
}

// TestCreateBook_WithImage testa que a imagem é gravada e a referência entra no livro.
func TestCreateBook_WithImage(t *testing.T) {
	mockRepo := new(MockBookRepository)
	mockBlobs := new(MockBlobStore)
	svc := newService(mockRepo, mockBlobs)

	mockBlobs.On("Save", mock.Anything, mock.Anything, "jpg").
		Return("/uploads/abc.jpg", nil)
	mockRepo.On("Save", mock.Anything, mock.MatchedBy(func(b domain.Book) bool {
		return b.CoverImage != nil && *b.CoverImage == "/uploads/abc.jpg"
	})).Return(domain.Book{ID: "b1"}, nil)

	_, err := svc.CreateBook(context.Background(), domain.BookCreate{
		Title:    "Milk and Honey",
		Author:   "Rupi Kaur",
		Price:    14.99,
		Category: "Poetry",
	}, &domain.ImageUpload{
		Content:  strings.NewReader("bytes-da-imagem"),
		Filename: "capa.jpg",
	})

	assert.NoError(t, err)
	mockBlobs.AssertExpectations(t)
	mockRepo.AssertExpectations(t)
}

// TestCreateBook_Validation testa as regras de validação de criação.
func TestCreateBook_Validation(t *testing.T) {
	mockRepo := new(MockBookRepository)
	mockBlobs := new(MockBlobStore)
	svc := newService(mockRepo, mockBlobs)

	cases := []domain.BookCreate{
		{Author: "Autor", Price: 10, Category: "Fiction"},                      // sem título
		{Title: "Título", Price: 10, Category: "Fiction"},                      // sem autor
		{Title: "Título", Author: "Autor", Price: 10},                          // sem categoria
		{Title: "Título", Author: "Autor", Price: -1, Category: "Fiction"},     // preço negativo
	}

	for _, input := range cases {
		_, err := svc.CreateBook(context.Background(), input, nil)
		assert.IsType(t, &apperror.ValidationError{}, err)
	}
	mockRepo.AssertNotCalled(t, "Save")
}

// TestUpdateBook_PartialFields testa que somente os campos presentes chegam ao repo.
func TestUpdateBook_PartialFields(t *testing.T) {
	mockRepo := new(MockBookRepository)
	mockBlobs := new(MockBlobStore)
	svc := newService(mockRepo, mockBlobs)

	newPrice := 24.99
	mockRepo.On("Update", mock.Anything, "b1", mock.MatchedBy(func(c domain.BookUpdate) bool {
		// Apenas o preço presente; título, autor e capa ausentes
		return c.Price != nil && *c.Price == 24.99 &&
			c.Title == nil && c.Author == nil && c.CoverImage == nil
	})).Return(domain.Book{ID: "b1", Price: 24.99}, nil)

	book, err := svc.UpdateBook(context.Background(), "b1", domain.BookUpdate{Price: &newPrice}, nil)

	assert.NoError(t, err)
	assert.Equal(t, 24.99, book.Price)
	mockBlobs.AssertNotCalled(t, "Save")
	mockRepo.AssertExpectations(t)
}

// TestUpdateBook_WithImage testa que a nova imagem substitui a referência de capa.
func TestUpdateBook_WithImage(t *testing.T) {
	mockRepo := new(MockBookRepository)
	mockBlobs := new(MockBlobStore)
	svc := newService(mockRepo, mockBlobs)

	mockBlobs.On("Save", mock.Anything, mock.Anything, "png").
		Return("/uploads/nova.png", nil)
	mockRepo.On("Update", mock.Anything, "b1", mock.MatchedBy(func(c domain.BookUpdate) bool {
		return c.CoverImage != nil && *c.CoverImage == "/uploads/nova.png"
	})).Return(domain.Book{ID: "b1"}, nil)

	_, err := svc.UpdateBook(context.Background(), "b1", domain.BookUpdate{}, &domain.ImageUpload{
		Content:  strings.NewReader("png-bytes"),
		Filename: "nova.png",
	})

	assert.NoError(t, err)
	mockBlobs.AssertExpectations(t)
}

// TestUpdateBook_NegativePrice testa a rejeição de preço negativo na atualização.
func TestUpdateBook_NegativePrice(t *testing.T) {
	mockRepo := new(MockBookRepository)
	mockBlobs := new(MockBlobStore)
	svc := newService(mockRepo, mockBlobs)

	bad := -5.0
	_, err := svc.UpdateBook(context.Background(), "b1", domain.BookUpdate{Price: &bad}, nil)

	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "Update")
}

// TestUpdateBook_NotFound testa a propagação do 404 do repositório.
func TestUpdateBook_NotFound(t *testing.T) {
	mockRepo := new(MockBookRepository)
	mockBlobs := new(MockBlobStore)
	svc := newService(mockRepo, mockBlobs)

	title := "Novo Título"
	mockRepo.On("Update", mock.Anything, "sumiu", mock.Anything).
		Return(domain.Book{}, apperror.NewNotFoundError("Book not found"))

	_, err := svc.UpdateBook(context.Background(), "sumiu", domain.BookUpdate{Title: &title}, nil)

	assert.IsType(t, &apperror.NotFoundError{}, err)
}

// TestDeleteBook testa remoção com sucesso e 404.
func TestDeleteBook(t *testing.T) {
	mockRepo := new(MockBookRepository)
	mockBlobs := new(MockBlobStore)
	svc := newService(mockRepo, mockBlobs)

	mockRepo.On("Delete", mock.Anything, "b1").Return(nil).Once()
	assert.NoError(t, svc.DeleteBook(context.Background(), "b1"))

	mockRepo.On("Delete", mock.Anything, "sumiu").
		Return(apperror.NewNotFoundError("Book not found")).Once()
	err := svc.DeleteBook(context.Background(), "sumiu")
	assert.IsType(t, &apperror.NotFoundError{}, err)
}

// TestListBooks_FilterPassthrough testa que o filtro chega intacto ao repositório.
func TestListBooks_FilterPassthrough(t *testing.T) {
	mockRepo := new(MockBookRepository)
	mockBlobs := new(MockBlobStore)
	svc := newService(mockRepo, mockBlobs)

	featured := true
	filter := domain.BookFilter{Category: "Poetry", Featured: &featured, Search: "milk"}
	expected := []domain.Book{{ID: "b1", Title: "Milk and Honey"}}

	mockRepo.On("FindAll", mock.Anything, filter).Return(expected, nil)

	books, err := svc.ListBooks(context.Background(), filter)

	assert.NoError(t, err)
	assert.Equal(t, expected, books)
	mockRepo.AssertExpectations(t)
}

// TestListCategories testa o repasse das categorias distintas.
func TestListCategories(t *testing.T) {
	mockRepo := new(MockBookRepository)
	mockBlobs := new(MockBlobStore)
	svc := newService(mockRepo, mockBlobs)

	mockRepo.On("DistinctCategories", mock.Anything).
		Return([]string{"Poetry", "Business", "Fiction"}, nil)

	categories, err := svc.ListCategories(context.Background())

	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{"Poetry", "Business", "Fiction"}, categories)
}
