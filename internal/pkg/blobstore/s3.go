package blobstore

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// S3Config agrupa os parâmetros de conexão com um bucket S3 (ou MinIO).
type S3Config struct {
	Endpoint      string // vazio usa o endpoint padrão da AWS
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string // base pública usada para montar a referência gravada no livro
}

// S3Store grava os blobs em um bucket S3. Alternativa ao LocalStore para
// implantações onde o disco do processo não é durável.
type S3Store struct {
	client *s3.Client
	cfg    S3Config
}

// NewS3Store constrói o cliente S3 com credenciais estáticas.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("falha ao carregar configuração AWS: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true // MinIO e afins
		}
	})

	return &S3Store{client: client, cfg: cfg}, nil
}

// Save envia o conteúdo para covers/<uuid>.<ext> e retorna a URL pública.
func (s *S3Store) Save(ctx context.Context, content io.Reader, ext string) (string, error) {
	key := "covers/" + uuid.NewString()
	if ext != "" {
		key = key + "." + strings.TrimPrefix(ext, ".")
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
		Body:   content,
	})
	if err != nil {
		return "", fmt.Errorf("falha ao enviar objeto para o S3: %w", err)
	}

	return strings.TrimSuffix(s.cfg.PublicBaseURL, "/") + "/" + key, nil
}
