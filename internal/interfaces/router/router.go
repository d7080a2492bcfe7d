package router

import (
	"context"
	"net/http"
	"time"

	bridgesvc "carbon-backend/internal/application/bridge"
	"carbon-backend/internal/application/certificates"
	classsvc "carbon-backend/internal/application/classes"
	expsvc "carbon-backend/internal/application/explorer"
	orgsvc "carbon-backend/internal/application/org"
	projsvc "carbon-backend/internal/application/projects"
	retsvc "carbon-backend/internal/application/retirements"
	xfersvc "carbon-backend/internal/application/transfers"
	"carbon-backend/internal/chain"
	"carbon-backend/internal/config"
	"carbon-backend/internal/infrastructure/database"
	chainhandler "carbon-backend/internal/interfaces/handlers/chainops"
	classhandler "carbon-backend/internal/interfaces/handlers/classes"
	exphandler "carbon-backend/internal/interfaces/handlers/explorer"
	healthhandler "carbon-backend/internal/interfaces/handlers/health"
	orghandler "carbon-backend/internal/interfaces/handlers/org"
	projhandler "carbon-backend/internal/interfaces/handlers/projects"
	rethandler "carbon-backend/internal/interfaces/handlers/retirements"
	xferhandler "carbon-backend/internal/interfaces/handlers/transfers"
	"carbon-backend/internal/ledger"
	"carbon-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	if g == nil || g.db == nil {
		return nil
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// selectGateway builds the live EVM gateway when a credit contract is
// configured and falls back to the deterministic mock otherwise.
func selectGateway(ctx context.Context, cfg *config.Config) (chain.Gateway, error) {
	if cfg.CreditContract == "" {
		log.Info().Msg("no credit contract configured, using mock chain gateway")
		return chain.NewMockGateway(), nil
	}
	return chain.NewEvmGateway(ctx, chain.EvmConfig{
		RPCURL:         cfg.RPCURL,
		PrivateKey:     cfg.PrivateKey,
		CreditContract: cfg.CreditContract,
		AnchorContract: cfg.AnchorContract,
		ChainID:        cfg.ChainID,
		CallTimeout:    time.Duration(cfg.ChainCallTimeoutSeconds) * time.Second,
	})
}

func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, chain.Gateway, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
	}))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		rdb = redis.NewClient(opts)
	}

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var errDB error
		db, errDB = database.Open(cfg.DatabaseURL)
		if errDB != nil {
			return nil, nil, nil, nil, errDB
		}
	}

	gateway, err := selectGateway(context.Background(), cfg)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	hh := &healthhandler.Handlers{Rdb: rdb, Gateway: gateway}
	if db != nil {
		hh.DB = &gormDBPinger{db: db}
	}
	app.Get("/health/json", hh.JSON)

	if db != nil {
		store := ledger.New(db)
		certs := &certificates.Generator{Ledger: store, ChainID: cfg.ChainID}

		// Orgs
		os := &orgsvc.Service{Ledger: store}
		oh := &orghandler.Handlers{Service: os}
		og := app.Group("/api/v1/orgs")
		og.Post("/", oh.CreateOrg)
		og.Get("/", oh.ListOrgs)
		og.Get("/:id", oh.ViewOrg)

		// Projects and evidence
		ps := &projsvc.Service{Ledger: store}
		ph := &projhandler.Handlers{Service: ps}
		pg := app.Group("/api/v1/projects")
		pg.Post("/", ph.CreateProject)
		pg.Get("/", ph.ListProjects)
		pg.Get("/:id", ph.ViewProject)
		pg.Get("/:id/evidence", ph.ListEvidence)
		pg.Post("/:id/evidence", ph.RegisterEvidence)

		// Credit classes
		cs := &classsvc.Service{Ledger: store}
		ch := &classhandler.Handlers{Service: cs}
		cg := app.Group("/api/v1/classes")
		cg.Post("/", ch.CreateClass)
		cg.Get("/", ch.ListClasses)
		cg.Get("/:id", ch.ViewClass)

		// Transfers and holdings
		xs := &xfersvc.Service{Ledger: store}
		xh := &xferhandler.Handlers{Service: xs}
		xg := app.Group("/api/v1/transfers")
		xg.Post("/", xh.CreateTransfer)
		xg.Get("/", xh.ListTransfers)
		xg.Get("/:id", xh.ViewTransfer)
		app.Get("/api/v1/holdings", xh.ListHoldings)

		// Retirements
		rs := &retsvc.Service{Ledger: store}
		rh := &rethandler.Handlers{Service: rs}
		rg := app.Group("/api/v1/retirements")
		rg.Post("/", rh.CreateRetirement)
		rg.Get("/", rh.ListRetirements)
		rg.Get("/:certificate_id", rh.ViewRetirement)

		// Chain bridge + certificates
		bs := &bridgesvc.Service{
			Ledger:             store,
			Gateway:            gateway,
			Certs:              certs,
			ChainID:            cfg.ChainID,
			DefaultMintAddress: cfg.DefaultMintAddress,
		}
		bh := &chainhandler.Handlers{Bridge: bs, Certs: certs, Gateway: gateway}
		bg := app.Group("/api/v1/chain")
		bg.Post("/finalize-mint", bh.FinalizeMint)
		bg.Post("/transfer", bh.TransferOnChain)
		bg.Post("/retire", bh.RetireBurn)
		bg.Post("/anchor", bh.AnchorEvidence)
		bg.Get("/status", bh.Status)
		app.Get("/api/v1/certificates/:type/:id", bh.Certificate)

		// Explorer
		es := &expsvc.Service{Ledger: store, Gateway: gateway, Rdb: rdb}
		eh := &exphandler.Handlers{Service: es}
		eg := app.Group("/api/v1/explorer")
		eg.Get("/credits", eh.Credits)
		eg.Get("/tokens", eh.Tokens)
		eg.Get("/anchors", eh.Anchors)
		eg.Get("/balance/:address/:token_id", eh.Balance)
	}

	return app, db, rdb, gateway, nil
}

func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}
