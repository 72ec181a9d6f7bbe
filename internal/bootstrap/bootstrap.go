package bootstrap

import (
	"context"
	"fmt"

	"github.com/kirillkom/gemini-drive/internal/config"
	"github.com/kirillkom/gemini-drive/internal/core/ports"
	"github.com/kirillkom/gemini-drive/internal/core/usecase"
	"github.com/kirillkom/gemini-drive/internal/infrastructure/llm/gemini"
	"github.com/kirillkom/gemini-drive/internal/infrastructure/queue/nats"
	"github.com/kirillkom/gemini-drive/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/gemini-drive/internal/infrastructure/resilience"
	"github.com/kirillkom/gemini-drive/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/gemini-drive/internal/infrastructure/storage/photos"
	s3storage "github.com/kirillkom/gemini-drive/internal/infrastructure/storage/s3"
)

type App struct {
	Config config.Config

	Queue     ports.MessageQueue
	UploadUC  ports.FileIngestor
	BrowseUC  ports.FileBrowser
	EditUC    ports.FileEditor
	AnalyzeUC ports.FileAnalysisService
	ProfileUC ports.ProfileService

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewFileRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure files schema: %w", err)
	}
	profileRepo := postgres.NewProfileRepository(db)
	if err := profileRepo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure profiles schema: %w", err)
	}

	storage, err := newObjectStorage(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	analyzer, err := gemini.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, executor)
	if err != nil {
		queue.Close()
		return nil, fmt.Errorf("init gemini analyzer: %w", err)
	}

	sessions := usecase.NewSessions(repo)

	return &App{
		Config: cfg,
		Queue:  queue,

		UploadUC:  usecase.NewUploadFileUseCase(sessions, repo, storage),
		BrowseUC:  usecase.NewBrowseUseCase(sessions, storage, cfg.StorageQuotaBytes),
		EditUC:    usecase.NewEditFileUseCase(sessions, repo, storage),
		AnalyzeUC: usecase.NewAnalyzeFileUseCase(sessions, repo, storage, analyzer, queue),
		ProfileUC: usecase.NewProfileUseCase(profileRepo, photos.New(storage)),

		closeFn: func() {
			sessions.Close()
			queue.Close()
			_ = analyzer.Close()
			_ = db.Close()
		},
	}, nil
}

func newObjectStorage(ctx context.Context, cfg config.Config) (ports.ObjectStorage, error) {
	switch cfg.StorageBackend {
	case "s3":
		return s3storage.New(ctx, s3storage.Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Endpoint:  cfg.S3Endpoint,
		})
	default:
		return localfs.New(cfg.StoragePath)
	}
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
