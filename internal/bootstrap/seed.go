package bootstrap

import (
	"context"
	"time"

	"github.com/google/uuid"

	"bookverse/internal/domain"
	"bookverse/internal/pkg/logger"
	"bookverse/internal/pkg/password"
)

// Credenciais fixas do admin criado no primeiro boot.
const (
	defaultAdminEmail    = "admin@bookverse.com"
	defaultAdminPassword = "admin123"
	defaultAdminName     = "Admin User"
)

// Seeder popula o banco no primeiro boot: um admin padrão quando nenhum
// existe e um catálogo de exemplo quando a tabela de livros está vazia.
// O invariante é não rodar nunca quando já há dados.
type Seeder struct {
	Users  domain.UserRepository
	Books  domain.BookRepository
	Logger logger.Logger
}

// NewSeeder cria uma nova instância do Seeder.
func NewSeeder(users domain.UserRepository, books domain.BookRepository, log logger.Logger) *Seeder {
	return &Seeder{Users: users, Books: books, Logger: log}
}

// Run executa as duas etapas de seed. Chamado no main, após a conexão com
// o banco e antes de o servidor começar a aceitar requisições.
func (s *Seeder) Run(ctx context.Context) error {
	if err := s.ensureAdmin(ctx); err != nil {
		return err
	}
	return s.seedBooks(ctx)
}

// ensureAdmin cria o usuário admin padrão se nenhum admin existir.
func (s *Seeder) ensureAdmin(ctx context.Context) error {
	exists, err := s.Users.AdminExists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	passwordHash, err := password.Hash(defaultAdminPassword)
	if err != nil {
		return err
	}

	_, err = s.Users.Save(ctx, domain.User{
		Email:        defaultAdminEmail,
		Name:         defaultAdminName,
		Role:         domain.RoleAdmin,
		PasswordHash: passwordHash,
	})
	if err != nil {
		return err
	}

	s.Logger.Info("Admin padrão criado.", map[string]interface{}{"email": defaultAdminEmail})
	return nil
}

// seedBooks insere o catálogo de exemplo se a tabela de livros estiver vazia.
func (s *Seeder) seedBooks(ctx context.Context) error {
	count, err := s.Books.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, book := range sampleBooks() {
		if _, err := s.Books.Save(ctx, book); err != nil {
			return err
		}
	}

	s.Logger.Info("Catálogo de exemplo criado.", map[string]interface{}{"books": len(sampleBooks())})
	return nil
}

func strPtr(s string) *string { return &s }

// sampleBooks monta os registros de exemplo do primeiro boot.
func sampleBooks() []domain.Book {
	now := time.Now().UTC()

	newBook := func(title, author, description string, price float64, category, coverImage string, featured bool, ctaText string) domain.Book {
		return domain.Book{
			ID:            uuid.NewString(),
			Title:         title,
			Author:        author,
			Description:   description,
			Price:         price,
			Category:      category,
			CoverImage:    strPtr(coverImage),
			IsFeatured:    featured,
			CTAButtonText: ctaText,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
	}

	return []domain.Book{
		newBook(
			"Milk and Honey",
			"Rupi Kaur",
			"A collection of poetry and prose about survival. About the experience of violence, abuse, love, loss, and femininity.",
			14.99,
			"Poetry",
			"https://images.unsplash.com/photo-1544947950-fa07a98d237f?crop=entropy&cs=srgb&fm=jpg&q=85",
			true,
			"Buy Now",
		),
		newBook(
			"How Innovation Works",
			"Matt Ridley",
			"Innovation is the main event of the modern age, the reason we experience both dramatic improvements in our living standards and unsettling changes in our society.",
			18.99,
			"Business",
			"https://images.unsplash.com/photo-1589829085413-56de8ae18c73?crop=entropy&cs=srgb&fm=jpg&q=85",
			true,
			"Get It Now",
		),
		newBook(
			"Classic Literature Collection",
			"Various Authors",
			"A curated collection of timeless classics that have shaped literature and continue to inspire readers worldwide.",
			24.99,
			"Literature",
			"https://images.unsplash.com/photo-1511108690759-009324a90311?crop=entropy&cs=srgb&fm=jpg&q=85",
			false,
			"Explore Collection",
		),
		newBook(
			"Modern Book Selection",
			"Contemporary Writers",
			"Discover the latest in contemporary fiction and non-fiction with this carefully selected collection of modern masterpieces.",
			19.99,
			"Fiction",
			"https://images.pexels.com/photos/33315081/pexels-photo-33315081.jpeg",
			false,
			"Add to Cart",
		),
		newBook(
			"Literary Treasures",
			"Award-Winning Authors",
			"An exclusive collection featuring award-winning novels and literary works that have captivated readers across generations.",
			29.99,
			"Literature",
			"https://images.unsplash.com/photo-1499332347742-4946bddc7d94?crop=entropy&cs=srgb&fm=jpg&q=85",
			true,
			"Discover Now",
		),
	}
}
