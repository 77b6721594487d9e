package authservice

import (
	"log/slog"
	"time"

	httpadapter "kvorum/contexts/identity-access/auth-service/adapters/http"
	"kvorum/contexts/identity-access/auth-service/adapters/memory"
	"kvorum/contexts/identity-access/auth-service/adapters/sms"
	"kvorum/contexts/identity-access/auth-service/application/commands"
	"kvorum/contexts/identity-access/auth-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Auth    commands.AuthUseCase
	Store   *memory.Store
}

type Dependencies struct {
	Challenges ports.ChallengeRepository
	Sessions   ports.SessionRepository
	Tokens     ports.TokenDirectory
	Sms        ports.SmsSender
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	OtpSecret  string
	SessionTTL time.Duration
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	sender := deps.Sms
	if sender == nil {
		sender = sms.LoggingSender{Logger: deps.Logger}
	}
	authUseCase := commands.AuthUseCase{
		Challenges: deps.Challenges,
		Sessions:   deps.Sessions,
		Tokens:     deps.Tokens,
		Sms:        sender,
		Clock:      deps.Clock,
		IDGen:      deps.IDGen,
		OtpSecret:  deps.OtpSecret,
		SessionTTL: deps.SessionTTL,
		Logger:     deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Auth:   authUseCase,
			Logger: deps.Logger,
		},
		Auth: authUseCase,
	}
}

// NewInMemoryModule wires the module onto an in-memory store for tests and
// local runs. The store doubles as Clock and IDGenerator.
func NewInMemoryModule(tokens ports.TokenDirectory, sender ports.SmsSender, otpSecret string, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Challenges: store,
		Sessions:   store,
		Tokens:     tokens,
		Sms:        sender,
		Clock:      store,
		IDGen:      store,
		OtpSecret:  otpSecret,
		Logger:     logger,
	})
	module.Store = store
	return module
}
