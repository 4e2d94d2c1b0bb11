package routes

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/subledger/subledger/internal/asset"
	"github.com/subledger/subledger/internal/chain"
	"github.com/subledger/subledger/internal/config"
	"github.com/subledger/subledger/internal/identity"
	"github.com/subledger/subledger/internal/middleware"
	"github.com/subledger/subledger/internal/snapshot"
	"github.com/subledger/subledger/internal/subaccount"
	"github.com/subledger/subledger/internal/token"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup builds the chain host with its contracts, restores committed state,
// and wires middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	// The chain: one host, the token contract and the subaccount contract
	// observing transfers addressed to its account.
	symbol, err := asset.ParseSymbol(d.Cfg.TokenSymbol)
	if err != nil {
		return fmt.Errorf("parse token symbol: %w", err)
	}

	host := chain.NewHost(d.Logger)
	tokenContract := token.New(chain.Name(d.Cfg.TokenAccount))
	subContract := subaccount.New(chain.Name(d.Cfg.ContractAccount), symbol, tokenContract)
	host.RegisterState(tokenContract)
	host.RegisterState(subContract)
	host.RegisterTransferObserver(subContract.Account(), subContract)

	var store snapshot.Store
	if d.DB != nil {
		store = snapshot.NewPostgresStore(d.DB)
	} else {
		store = snapshot.NewMemoryStore()
	}
	persister := snapshot.NewPersister(store, tokenContract, subContract)

	ctx := context.Background()
	if err := persister.Restore(ctx); err != nil {
		return fmt.Errorf("restore ledger state: %w", err)
	}
	host.SetCommitHook(persister.Persist)

	tokenSvc := token.NewService(host, tokenContract)
	if _, ok := tokenContract.Stats(symbol.Code); !ok {
		maxSupply, err := asset.Parse(d.Cfg.TokenMaxSupply)
		if err != nil {
			return fmt.Errorf("parse max supply: %w", err)
		}
		if maxSupply.Symbol != symbol {
			return fmt.Errorf("max supply %s does not match token symbol %s", maxSupply.Symbol, symbol)
		}
		if err := tokenSvc.CreateCurrency(ctx, chain.Name(d.Cfg.TokenIssuer), maxSupply); err != nil {
			return fmt.Errorf("create currency: %w", err)
		}
		d.Logger.Info("currency created",
			"symbol", symbol.String(), "issuer", d.Cfg.TokenIssuer, "max_supply", maxSupply.String())
	}
	subSvc := subaccount.NewService(host, subContract)

	var signerRepo identity.Repository
	if d.DB != nil {
		signerRepo = identity.NewPostgresRepository(d.DB)
	} else {
		signerRepo = identity.NewMemoryRepository()
	}
	identitySvc := identity.NewService(signerRepo)

	identityHandler := identity.NewHandler(identitySvc)
	tokenHandler := token.NewHandler(tokenSvc)
	subHandler := subaccount.NewHandler(subSvc)

	RegisterHealthRoutes(app, d)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes: signer registration and balance queries.
	RegisterSignerRoutes(api, identityHandler, middleware.RegisterRateLimit(d.Cache, 5))
	api.Get("/balances/:owner", subHandler.Balance)
	api.Get("/token/balances/:owner", tokenHandler.Balance)

	// Ledger actions require an authenticated signer; its account is the
	// only authority the resulting transaction carries.
	protected := api.Group("", middleware.SignerAuth(identitySvc))
	RegisterSubaccountRoutes(protected, subHandler)
	RegisterTokenRoutes(protected, tokenHandler)

	return nil
}
