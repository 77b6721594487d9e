package votingengine

import (
	"log/slog"

	httpadapter "kvorum/contexts/governance/voting-engine/adapters/http"
	"kvorum/contexts/governance/voting-engine/adapters/memory"
	"kvorum/contexts/governance/voting-engine/adapters/render"
	"kvorum/contexts/governance/voting-engine/application/commands"
	"kvorum/contexts/governance/voting-engine/application/queries"
	"kvorum/contexts/governance/voting-engine/application/workers"
	"kvorum/contexts/governance/voting-engine/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Sheets  commands.SheetUseCase
	Expirer workers.SheetExpirer
	Relay   workers.OutboxRelay
	Store   *memory.Store
}

type Dependencies struct {
	Protocols    ports.ProtocolRepository
	Sheets       ports.SheetRepository
	Votes        ports.VoteRepository
	Results      ports.ResultRepository
	Owners       ports.OwnerDirectory
	Associations ports.AssociationDirectory
	Signing      ports.SigningStatus
	Renderer     ports.ArtifactRenderer
	Outbox       ports.OutboxRepository
	Publisher    ports.EventPublisher
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	BaseURL      string
	Logger       *slog.Logger
}

func NewModule(deps Dependencies) Module {
	renderer := deps.Renderer
	if renderer == nil {
		renderer = render.TextRenderer{}
	}

	sheetUseCase := commands.SheetUseCase{
		Protocols:    deps.Protocols,
		Sheets:       deps.Sheets,
		Votes:        deps.Votes,
		Results:      deps.Results,
		Owners:       deps.Owners,
		Associations: deps.Associations,
		Signing:      deps.Signing,
		Renderer:     renderer,
		Outbox:       deps.Outbox,
		Clock:        deps.Clock,
		IDGen:        deps.IDGen,
		Logger:       deps.Logger,
	}
	protocolUseCase := commands.ProtocolUseCase{
		Protocols:    deps.Protocols,
		Associations: deps.Associations,
		Clock:        deps.Clock,
		IDGen:        deps.IDGen,
		Logger:       deps.Logger,
	}
	ballotUseCase := commands.BallotUseCase{
		Protocols: deps.Protocols,
		Sheets:    deps.Sheets,
		Votes:     deps.Votes,
		Clock:     deps.Clock,
		Logger:    deps.Logger,
	}
	tallyUseCase := queries.TallyUseCase{
		Protocols: deps.Protocols,
		Sheets:    deps.Sheets,
		Votes:     deps.Votes,
		Results:   deps.Results,
	}
	viewUseCase := queries.BallotUseCase{
		Protocols: deps.Protocols,
		Sheets:    deps.Sheets,
		Votes:     deps.Votes,
		Clock:     deps.Clock,
	}

	return Module{
		Handler: httpadapter.Handler{
			Protocols: protocolUseCase,
			Sheets:    sheetUseCase,
			Ballots:   ballotUseCase,
			Tallies:   tallyUseCase,
			Views:     viewUseCase,
			BaseURL:   deps.BaseURL,
			Logger:    deps.Logger,
		},
		Sheets: sheetUseCase,
		Expirer: workers.SheetExpirer{
			Sheets: deps.Sheets,
			Closer: sheetUseCase,
			Clock:  deps.Clock,
			Logger: deps.Logger,
		},
		Relay: workers.OutboxRelay{
			Outbox:    deps.Outbox,
			Publisher: deps.Publisher,
			Clock:     deps.Clock,
			Logger:    deps.Logger,
		},
	}
}

// NewInMemoryModule wires the module onto a single in-memory store for tests
// and local runs. The store doubles as Clock and IDGenerator.
func NewInMemoryModule(signing ports.SigningStatus, publisher ports.EventPublisher, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Protocols:    store,
		Sheets:       store,
		Votes:        store,
		Results:      store,
		Owners:       store,
		Associations: store,
		Signing:      signing,
		Outbox:       store,
		Publisher:    publisher,
		Clock:        store,
		IDGen:        store,
		BaseURL:      "http://localhost:8080",
		Logger:       logger,
	})
	module.Store = store
	return module
}
