package router

import (
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	"bookverse/internal/api/auth"
	"bookverse/internal/api/book"
	"bookverse/internal/domain"
	"bookverse/internal/pkg/cache"
	"bookverse/internal/pkg/middleware"
)

// NewRouter configura e retorna o roteador HTTP principal.
// Recebe os Handlers já inicializados por injeção de dependências.
// As leituras do catálogo são públicas; as mutações passam pela cadeia
// autenticação -> permissão, nessa ordem, para que um chamador sem token
// receba 401 mesmo em rota de admin (e nunca 403).
func NewRouter(
	authHandler *auth.Handler,
	bookHandler *book.Handler,
	authSvc middleware.Authenticator,
	cacheClient cache.Client,
	uploadsDir string,
	rateLimit int,
	ratePeriod time.Duration,
) http.Handler {

	// Usamos o ServeMux padrão do net/http para roteamento
	mux := http.NewServeMux()

	authenticated := middleware.NewAuthMiddleware(authSvc)
	adminOnly := func(h http.HandlerFunc) http.HandlerFunc {
		return authenticated(middleware.PermissionMiddleware(domain.RoleAdmin)(h))
	}

	// --- 1. Rotas de Autenticação ---
	mux.HandleFunc("/auth/register", authHandler.RegisterHandler)
	mux.HandleFunc("/auth/login", authHandler.LoginHandler)
	mux.HandleFunc("/auth/me", authenticated(authHandler.MeHandler))

	// --- 2. Rotas do Catálogo ---

	// /books: GET (listar, público) e POST (criar, admin)
	mux.HandleFunc("/books", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			bookHandler.ListBooksHandler(w, r)
		case http.MethodPost:
			adminOnly(bookHandler.CreateBookHandler)(w, r)
		default:
			http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		}
	})

	// /books/{id}: GET (público), PUT e DELETE (admin)
	mux.HandleFunc("/books/", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			bookHandler.GetBookHandler(w, r)
		case http.MethodPut:
			adminOnly(bookHandler.UpdateBookHandler)(w, r)
		case http.MethodDelete:
			adminOnly(bookHandler.DeleteBookHandler)(w, r)
		default:
			http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/categories", bookHandler.CategoriesHandler)

	// --- 3. Arquivos estáticos (imagens de capa enviadas) ---
	mux.Handle("/uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadsDir))))

	// --- 4. Health Check e Documentação ---
	mux.HandleFunc("/ping", PingHandler)
	mux.Handle("/swagger/", httpSwagger.Handler())

	// --- 5. Middlewares Globais ---
	var handler http.Handler = mux
	handler = middleware.RateLimiter(cacheClient, rateLimit, ratePeriod)(handler)
	handler = middleware.CORS(handler)

	return handler
}

// PingHandler é uma função utilitária para o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
