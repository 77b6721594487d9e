package bootstrap

import (
	"context"
	"log/slog"
	"strings"
	"time"

	signingservice "kvorum/contexts/governance/signing-service"
	signingmemory "kvorum/contexts/governance/signing-service/adapters/memory"
	signingpostgres "kvorum/contexts/governance/signing-service/adapters/postgres"
	signprovider "kvorum/contexts/governance/signing-service/adapters/provider"
	signingports "kvorum/contexts/governance/signing-service/ports"
	votingengine "kvorum/contexts/governance/voting-engine"
	votingpostgres "kvorum/contexts/governance/voting-engine/adapters/postgres"
	votingentities "kvorum/contexts/governance/voting-engine/domain/entities"
	votingports "kvorum/contexts/governance/voting-engine/ports"
	authservice "kvorum/contexts/identity-access/auth-service"
	authpostgres "kvorum/contexts/identity-access/auth-service/adapters/postgres"
	"kvorum/internal/platform/config"
	"kvorum/internal/platform/db"
	"kvorum/internal/platform/httpserver"
	"kvorum/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server *httpserver.Server
	handle *db.Handle
	logger *slog.Logger
}

type WorkerApp struct {
	handle       *db.Handle
	bus          *messaging.Bus
	voting       votingengine.Module
	signing      signingservice.Module
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")

	handle, err := connect(cfg)
	if err != nil {
		return nil, err
	}

	voting, signing, auth := buildModules(cfg, handle, logger)
	server := httpserver.New(voting, signing, auth, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server: server,
		handle: handle,
		logger: logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")

	handle, err := connect(cfg)
	if err != nil {
		return nil, err
	}

	bus := messaging.NewBus(logger)
	voting, signing, _ := buildModulesWithBus(cfg, handle, bus, logger)
	return &WorkerApp{
		handle:       handle,
		bus:          bus,
		voting:       voting,
		signing:      signing,
		pollInterval: cfg.WorkerPollInterval,
		logger:       logger,
	}, nil
}

func buildModules(cfg config.Config, handle *db.Handle, logger *slog.Logger) (votingengine.Module, signingservice.Module, authservice.Module) {
	return buildModulesWithBus(cfg, handle, messaging.NewBus(logger), logger)
}

func buildModulesWithBus(cfg config.Config, handle *db.Handle, bus *messaging.Bus, logger *slog.Logger) (votingengine.Module, signingservice.Module, authservice.Module) {
	votingRepo := votingpostgres.NewRepository(handle.DB, logger)
	signingRepo := signingpostgres.NewRepository(handle.DB, logger)
	authRepo := authpostgres.NewRepository(handle.DB, logger)

	signing := signingservice.NewModule(signingservice.Dependencies{
		Documents:       signingRepo,
		Inbox:           signingRepo,
		Provider:        resolveProvider(cfg, logger),
		Sink:            sheetArtifactSink{sheets: votingRepo, clock: votingpostgres.SystemClock{}},
		Clock:           signingpostgres.SystemClock{},
		IDGen:           signingpostgres.UUIDGenerator{},
		ProviderTimeout: cfg.SignProviderTimeout,
		Logger:          logger,
	})

	voting := votingengine.NewModule(votingengine.Dependencies{
		Protocols:    votingRepo,
		Sheets:       votingRepo,
		Votes:        votingRepo,
		Results:      votingRepo,
		Owners:       votingRepo,
		Associations: votingRepo,
		Signing:      signing.Queries,
		Outbox:       votingRepo,
		Publisher:    bus,
		Clock:        votingpostgres.SystemClock{},
		IDGen:        votingpostgres.UUIDGenerator{},
		BaseURL:      cfg.PublicBaseURL,
		Logger:       logger,
	})

	auth := authservice.NewModule(authservice.Dependencies{
		Challenges: authRepo,
		Sessions:   authRepo,
		Tokens:     authpostgres.NewTokenDirectory(handle.DB, logger),
		Clock:      authpostgres.SystemClock{},
		IDGen:      authpostgres.UUIDGenerator{},
		OtpSecret:  cfg.OtpSecret,
		SessionTTL: cfg.SessionTTL,
		Logger:     logger,
	})

	return voting, signing, auth
}

func connect(cfg config.Config) (*db.Handle, error) {
	var handle *db.Handle
	var err error
	if strings.EqualFold(cfg.DBDriver, "sqlite") {
		handle, err = db.ConnectSqlite(cfg.SqlitePath)
	} else {
		handle, err = db.ConnectPostgres(cfg.PostgresDSN)
	}
	if err != nil {
		return nil, err
	}
	if err := migrate(handle); err != nil {
		_ = handle.Close()
		return nil, err
	}
	return handle, nil
}

func migrate(handle *db.Handle) error {
	if err := votingpostgres.Migrate(handle.DB); err != nil {
		return err
	}
	if err := signingpostgres.Migrate(handle.DB); err != nil {
		return err
	}
	return authpostgres.Migrate(handle.DB)
}

func resolveProvider(cfg config.Config, logger *slog.Logger) signingports.SignatureProvider {
	if strings.TrimSpace(cfg.SignProviderURL) != "" {
		return signprovider.NewClient(cfg.SignProviderURL, cfg.SignProviderToken, cfg.SignProviderTimeout)
	}
	logger.Warn("no signature provider configured, using in-memory fake",
		"event", "bootstrap_fake_provider",
		"module", "internal/app/bootstrap",
		"layer", "platform",
	)
	return signingmemory.NewFakeProvider()
}

// sheetArtifactSink stores executed sheets through the voting engine's
// artifact storage.
type sheetArtifactSink struct {
	sheets votingports.SheetRepository
	clock  votingports.Clock
}

func (s sheetArtifactSink) StoreSignedSheet(ctx context.Context, sheetID, fileName, contentType string, data []byte) error {
	return s.sheets.SaveArtifact(ctx, votingentities.Artifact{
		SheetID:     sheetID,
		Kind:        votingentities.ArtifactSigned,
		FileName:    fileName,
		ContentType: contentType,
		Data:        data,
		CreatedAt:   s.clock.Now(),
	})
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.handle != nil {
		return a.handle.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	if err := w.signing.StartConsumer(ctx, w.bus); err != nil {
		return err
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		if err := w.voting.Expirer.RunOnce(ctx); err != nil {
			return err
		}
		if err := w.voting.Relay.RunOnce(ctx); err != nil {
			return err
		}
		if err := w.signing.Sync.RunOnce(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.handle != nil {
		return w.handle.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
