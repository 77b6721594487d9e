package signingservice

import (
	"context"
	"log/slog"
	"time"

	httpadapter "kvorum/contexts/governance/signing-service/adapters/http"
	"kvorum/contexts/governance/signing-service/adapters/memory"
	"kvorum/contexts/governance/signing-service/application/commands"
	"kvorum/contexts/governance/signing-service/application/queries"
	"kvorum/contexts/governance/signing-service/application/workers"
	"kvorum/contexts/governance/signing-service/ports"
	"kvorum/internal/shared/events"
)

type Module struct {
	Handler   httpadapter.Handler
	Documents commands.DocumentUseCase
	Queries   queries.DocumentUseCase
	Sync      workers.StatusSync
	Store     *memory.Store
}

type Dependencies struct {
	Documents       ports.DocumentRepository
	Inbox           ports.EventInbox
	Provider        ports.SignatureProvider
	Sink            ports.SignedArtifactSink
	Clock           ports.Clock
	IDGen           ports.IDGenerator
	ProviderTimeout time.Duration
	Logger          *slog.Logger
}

func NewModule(deps Dependencies) Module {
	documentUseCase := commands.DocumentUseCase{
		Documents: deps.Documents,
		Inbox:     deps.Inbox,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Logger:    deps.Logger,
	}
	queryUseCase := queries.DocumentUseCase{
		Documents: deps.Documents,
		Logger:    deps.Logger,
	}

	return Module{
		Handler: httpadapter.Handler{
			Documents: queryUseCase,
			Logger:    deps.Logger,
		},
		Documents: documentUseCase,
		Queries:   queryUseCase,
		Sync: workers.StatusSync{
			Documents:       deps.Documents,
			Provider:        deps.Provider,
			Sink:            deps.Sink,
			Clock:           deps.Clock,
			ProviderTimeout: deps.ProviderTimeout,
			Logger:          deps.Logger,
		},
	}
}

// EventSubscriber is the bus surface the module consumes from.
type EventSubscriber interface {
	Subscribe(ctx context.Context, topic string, handler func(context.Context, events.Envelope) error) error
}

// StartConsumer registers the sheet-closed handler on the bus. The
// subscription lives until ctx is cancelled.
func (m Module) StartConsumer(ctx context.Context, subscriber EventSubscriber) error {
	return subscriber.Subscribe(ctx, events.TopicSheetClosed, m.Documents.HandleSheetClosed)
}

// NewInMemoryModule wires the module onto an in-memory store for tests and
// local runs. The store doubles as Clock and IDGenerator.
func NewInMemoryModule(provider ports.SignatureProvider, sink ports.SignedArtifactSink, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Documents: store,
		Inbox:     store,
		Provider:  provider,
		Sink:      sink,
		Clock:     store,
		IDGen:     store,
		Logger:    logger,
	})
	module.Store = store
	return module
}
