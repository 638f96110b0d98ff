package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	// Pacotes de infraestrutura e utilitários
	"bookverse/config"
	"bookverse/internal/pkg/blobstore"
	"bookverse/internal/pkg/cache"
	"bookverse/internal/pkg/database"
	"bookverse/internal/pkg/logger"
	"bookverse/internal/pkg/token"

	// Camadas para Injeção de Dependências
	"bookverse/internal/api/auth"
	"bookverse/internal/api/book"
	"bookverse/internal/api/router"
	"bookverse/internal/bootstrap"
	"bookverse/internal/repository/bookrepo"
	"bookverse/internal/repository/userrepo"
	"bookverse/internal/service/bookservice"
	"bookverse/internal/service/userservice"
)

func main() {
	// 1. Configuração e Inicialização
	log.Println("⚡ Inicializando serviço BookVerse...")

	// O godotenv.Load() procura por um arquivo chamado .env na raiz.
	// Se não existir, seguimos com as variáveis do ambiente do sistema.
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ Aviso: Arquivo .env não encontrado. Carregando configs apenas do ambiente do sistema.")
	}

	cfg := config.LoadConfig()
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("Configurações carregadas.", nil)

	// 2. Conexão com Recursos de Infraestrutura

	// A. Banco de Dados (PostgreSQL)
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	defer db.Close()
	log.Info("Conexão PostgreSQL estabelecida.", nil)

	// B. Cache (Redis)
	cacheClient := cache.NewRedisClient(cfg.RedisAddr)
	log.Info("Conexão Redis estabelecida.", nil)

	// C. Armazenamento de blobs (imagens de capa)
	var blobs blobstore.Store
	switch cfg.BlobDriver {
	case "s3":
		blobs, err = blobstore.NewS3Store(context.Background(), blobstore.S3Config{
			Endpoint:      cfg.S3Endpoint,
			Region:        cfg.S3Region,
			Bucket:        cfg.S3Bucket,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			PublicBaseURL: cfg.S3PublicURL,
		})
	default:
		blobs, err = blobstore.NewLocalStore(cfg.UploadsDir)
	}
	if err != nil {
		log.Fatal("Falha ao inicializar o armazenamento de blobs.", err)
	}
	log.Info("Armazenamento de blobs inicializado.", map[string]interface{}{"driver": cfg.BlobDriver})

	// 3. INJEÇÃO DE DEPENDÊNCIAS
	// Ordem: Repository -> Service -> Handler

	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry)

	userRepo := userrepo.NewUserRepository(db, cfg.DBTimeout, log)
	userSvc := userservice.NewService(userRepo, tokenSvc, log)
	authHandler := auth.NewHandler(userSvc, log)

	bookRepo := bookrepo.NewBookRepository(db, cacheClient, cfg.DBTimeout, log)
	bookSvc := bookservice.NewService(bookRepo, blobs, log)
	bookHandler := book.NewHandler(bookSvc, log)

	// 4. Seed de primeiro boot (admin padrão + catálogo de exemplo).
	// Nunca roda quando já há dados.
	seeder := bootstrap.NewSeeder(userRepo, bookRepo, log)
	if err := seeder.Run(context.Background()); err != nil {
		log.Fatal("Falha ao executar o seed inicial.", err)
	}

	// 5. Configuração e Início do Roteador/Servidor
	r := router.NewRouter(
		authHandler,
		bookHandler,
		userSvc,
		cacheClient,
		cfg.UploadsDir,
		cfg.RateLimitMaxRequests,
		cfg.RateLimitPeriod,
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 6. Execução e Graceful Shutdown
	go func() {
		log.Info("Servidor BookVerse ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Servidor falhou.", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Desligamento do servidor forçado.", err)
	}

	log.Info("Servidor encerrado com sucesso.", nil)
}
