package bookrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"bookverse/internal/domain"
	apperror "bookverse/internal/errors"
	"bookverse/internal/pkg/cache"
	"bookverse/internal/pkg/logger"
)

// bookCacheKey é o formato da chave de cache de livro individual.
const bookCacheKey = "book:%s"

// bookCacheTTL é o tempo de vida da entrada de cache de um livro.
const bookCacheTTL = 5 * time.Minute

// maxListResults é o teto fixo de resultados da listagem.
const maxListResults = 100

// bookColumns é a lista de colunas na ordem esperada pelo scanBook.
const bookColumns = `id, title, author, description, price, category,
       cover_image, is_featured, cta_button_text, created_at, updated_at`

// BookRepository implementa a interface domain.BookRepository sobre o
// Postgres, com cache-aside no Redis para busca por ID.
type BookRepository struct {
	DB        *sql.DB
	Cache     cache.Client
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewBookRepository cria e retorna uma nova instância do Repositório,
// injetando as conexões de infraestrutura (DB e Cache).
func NewBookRepository(db *sql.DB, cacheClient cache.Client, dbTimeout time.Duration, logger logger.Logger) *BookRepository {
	return &BookRepository{
		DB:        db,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// scanBook mapeia uma linha do resultado para a struct domain.Book.
func scanBook(row interface{ Scan(...interface{}) error }) (domain.Book, error) {
	var book domain.Book
	err := row.Scan(
		&book.ID,
		&book.Title,
		&book.Author,
		&book.Description,
		&book.Price,
		&book.Category,
		&book.CoverImage,
		&book.IsFeatured,
		&book.CTAButtonText,
		&book.CreatedAt,
		&book.UpdatedAt,
	)
	return book, err
}

// Save persiste um novo Livro no banco de dados.
func (r *BookRepository) Save(ctx context.Context, book domain.Book) (domain.Book, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const insertSQL = `INSERT INTO books (id, title, author, description, price, category,
                        cover_image, is_featured, cta_button_text, created_at, updated_at)
                       VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`

	_, err := r.DB.ExecContext(ctxTimeout, insertSQL,
		book.ID,
		book.Title,
		book.Author,
		book.Description,
		book.Price,
		book.Category,
		book.CoverImage,
		book.IsFeatured,
		book.CTAButtonText,
		book.CreatedAt,
		book.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Falha ao inserir livro no DB.", err)
		return domain.Book{}, apperror.NewDBError("failed to insert book", err)
	}

	return book, nil
}

// FindByID busca um livro pelo ID, utilizando a estratégia Cache-Aside.
func (r *BookRepository) FindByID(ctx context.Context, id string) (domain.Book, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	key := fmt.Sprintf(bookCacheKey, id)
	var book domain.Book

	// 1. Tentar obter do Cache (Redis)
	cachedData, err := r.Cache.Get(ctxTimeout, key)
	if err == nil {
		if json.Unmarshal([]byte(cachedData), &book) == nil {
			return book, nil
		}
		// Entrada corrompida: segue para o DB e reescreve o cache
	} else if err != cache.ErrCacheMiss {
		// Falha real de cache (conexão perdida) não derruba a leitura
		r.logger.Warn("Falha ao ler do cache Redis.", map[string]interface{}{"key": key, "error": err.Error()})
	}

	// 2. Busca no Banco de Dados
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`
	book, err = scanBook(r.DB.QueryRowContext(ctxTimeout, query, id))

	if errors.Is(err, sql.ErrNoRows) {
		return domain.Book{}, apperror.NewNotFoundError("Book not found")
	}
	if err != nil {
		return domain.Book{}, apperror.NewDBError("Falha ao buscar livro no DB", err)
	}

	// 3. Populamos o cache para futuras requisições
	if bookJSON, marshalErr := json.Marshal(book); marshalErr == nil {
		r.Cache.Set(ctxTimeout, key, bookJSON, bookCacheTTL)
	}

	return book, nil
}

// FindAll lista livros aplicando o filtro: categoria exata, flag de destaque
// exata e busca de substring (case-insensitive) em título OU autor. Os três
// predicados combinam com AND. Ordenado por criação decrescente, até 100.
func (r *BookRepository) FindAll(ctx context.Context, filter domain.BookFilter) ([]domain.Book, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var conditions []string
	var args []interface{}

	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Featured != nil {
		args = append(args, *filter.Featured)
		conditions = append(conditions, fmt.Sprintf("is_featured = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR author ILIKE $%d)", n, n))
	}

	query := `SELECT ` + bookColumns + ` FROM books`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT %d", maxListResults)

	rows, err := r.DB.QueryContext(ctxTimeout, query, args...)
	if err != nil {
		r.logger.Error("Falha ao listar livros no DB.", err)
		return nil, apperror.NewDBError("failed to list books", err)
	}
	defer rows.Close()

	books := []domain.Book{}
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, apperror.NewDBError("failed to scan book row", err)
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("failed to iterate book rows", err)
	}

	return books, nil
}

// Update aplica uma atualização parcial: somente os campos presentes em
// changes entram no SET; updated_at é sempre renovado. Retorna NotFound se
// o ID não existir. A entrada de cache correspondente é invalidada.
func (r *BookRepository) Update(ctx context.Context, id string, changes domain.BookUpdate) (domain.Book, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var sets []string
	var args []interface{}

	addSet := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if changes.Title != nil {
		addSet("title", *changes.Title)
	}
	if changes.Author != nil {
		addSet("author", *changes.Author)
	}
	if changes.Description != nil {
		addSet("description", *changes.Description)
	}
	if changes.Price != nil {
		addSet("price", *changes.Price)
	}
	if changes.Category != nil {
		addSet("category", *changes.Category)
	}
	if changes.IsFeatured != nil {
		addSet("is_featured", *changes.IsFeatured)
	}
	if changes.CTAButtonText != nil {
		addSet("cta_button_text", *changes.CTAButtonText)
	}
	if changes.CoverImage != nil {
		addSet("cover_image", *changes.CoverImage)
	}

	// updated_at é renovado em toda mutação bem-sucedida
	addSet("updated_at", time.Now().UTC())

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE books SET %s WHERE id = $%d RETURNING `+bookColumns,
		strings.Join(sets, ", "), len(args))

	book, err := scanBook(r.DB.QueryRowContext(ctxTimeout, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Book{}, apperror.NewNotFoundError("Book not found")
	}
	if err != nil {
		r.logger.Error("Falha ao atualizar livro no DB.", err)
		return domain.Book{}, apperror.NewDBError("failed to update book", err)
	}

	r.Cache.Delete(ctxTimeout, fmt.Sprintf(bookCacheKey, id))
	return book, nil
}

// Delete remove um livro pelo ID. Retorna NotFound se nenhuma linha casou.
func (r *BookRepository) Delete(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Falha ao remover livro no DB.", err)
		return apperror.NewDBError("failed to delete book", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperror.NewDBError("failed to read affected rows", err)
	}
	if affected == 0 {
		return apperror.NewNotFoundError("Book not found")
	}

	r.Cache.Delete(ctxTimeout, fmt.Sprintf(bookCacheKey, id))
	return nil
}

// DistinctCategories retorna o conjunto de categorias distintas do catálogo.
func (r *BookRepository) DistinctCategories(ctx context.Context) ([]string, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	rows, err := r.DB.QueryContext(ctxTimeout, `SELECT DISTINCT category FROM books`)
	if err != nil {
		return nil, apperror.NewDBError("failed to list categories", err)
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, apperror.NewDBError("failed to scan category", err)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("failed to iterate categories", err)
	}

	return categories, nil
}

// Count retorna o total de livros no catálogo (usado no bootstrap).
func (r *BookRepository) Count(ctx context.Context) (int64, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var count int64
	if err := r.DB.QueryRowContext(ctxTimeout, `SELECT COUNT(*) FROM books`).Scan(&count); err != nil {
		return 0, apperror.NewDBError("failed to count books", err)
	}

	return count, nil
}
