package main

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	negotiatorx "github.com/seaharbor/procure-agent/agent/agents/negotiator"
	catalogx "github.com/seaharbor/procure-agent/agent/catalog"
	contractx "github.com/seaharbor/procure-agent/agent/contract"
	historyx "github.com/seaharbor/procure-agent/agent/history"
	llmx "github.com/seaharbor/procure-agent/agent/llm"
	orchestratorx "github.com/seaharbor/procure-agent/agent/orchestrator"
	toolservicex "github.com/seaharbor/procure-agent/agent/toolservice"
	configx "github.com/seaharbor/procure-agent/pkg/config"
	_ "github.com/seaharbor/procure-agent/pkg/logger/autoload"
	openrouterx "github.com/seaharbor/procure-agent/pkg/openrouter"
)

type AppConfig struct {
	Item        string  `envconfig:"ITEM" default:"salmon"`
	Quantity    int     `envconfig:"QUANTITY" default:"10"`
	Budget      float64 `envconfig:"BUDGET" default:"300"`
	TargetPrice float64 `envconfig:"TARGET_PRICE" default:"24"`
	VendorHint  string  `envconfig:"VENDOR_HINT"`
	AutoApprove bool    `envconfig:"AUTO_APPROVE" default:"false"`
	PostgresDSN string  `envconfig:"POSTGRES_DSN"`
}

func main() {
	ctx := context.Background()
	appCfg := configx.MustNew[AppConfig]("PROCURE")

	catalog, history := buildStores(ctx, appCfg)

	tools, err := toolservicex.New(catalog, history)
	if err != nil {
		log.Fatal().Err(err).Msg("build tool service")
	}

	llmCfg := configx.MustNew[llmx.Config]("LLM")
	if openrouterx.NewClient(llmCfg.OpenRouterFor(contractx.RoleNegotiator)) == nil {
		log.Fatal().Msg("openrouter credentials are not configured")
	}
	registry, err := negotiatorx.NewRegistry(ctx, *llmCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("build decision-maker registry")
	}

	orch, err := orchestratorx.New(tools, registry)
	if err != nil {
		log.Fatal().Err(err).Msg("build orchestrator")
	}

	result, err := orch.Run(ctx, orchestratorx.RunRequest{
		Item:        appCfg.Item,
		Quantity:    appCfg.Quantity,
		Budget:      appCfg.Budget,
		TargetPrice: appCfg.TargetPrice,
		VendorHint:  appCfg.VendorHint,
		Approval:    contractx.AutoApprove(appCfg.AutoApprove),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("procurement run failed")
	}

	evt := log.Info().Str("status", string(result.Status)).Int("phases", len(result.Trace))
	if result.FinalDeal != nil {
		evt = evt.
			Str("vendor", result.FinalDeal.Vendor).
			Float64("unit_price", result.FinalDeal.UnitPrice).
			Str("record_id", result.FinalDeal.RecordID)
	}
	evt.Msg("procurement run finished")
}

func buildStores(ctx context.Context, cfg *AppConfig) (catalogx.Catalog, historyx.Store) {
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		log.Info().Msg("no postgres dsn, using seeded in-memory stores")
		return catalogx.NewStaticCatalog(catalogx.DefaultSeed()), historyx.NewMemStore()
	}

	catalog, err := catalogx.NewBunCatalog(catalogx.BunConfig{DSN: cfg.PostgresDSN})
	if err != nil {
		log.Fatal().Err(err).Msg("open catalog store")
	}
	if err := catalog.Provision(ctx, catalogx.DefaultSeed()); err != nil {
		log.Fatal().Err(err).Msg("provision catalog store")
	}

	history, err := historyx.NewBunStore(historyx.BunConfig{DSN: cfg.PostgresDSN})
	if err != nil {
		log.Fatal().Err(err).Msg("open history store")
	}
	if err := history.Provision(ctx); err != nil {
		log.Fatal().Err(err).Msg("provision history store")
	}

	return catalog, history
}
