package bootstrap

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"casebot/internal/bootstrap/config"
	"casebot/internal/bootstrap/logging"
	"casebot/internal/infrastructure/llm"
	"casebot/internal/infrastructure/scrape"
	"casebot/internal/ports"
	"casebot/internal/transport/httpapi"
	"casebot/internal/usecase/qa"
)

var Module = fx.Options(
	fx.Provide(provideApp),
	fx.Provide(provideConfig),
	fx.Provide(provideCache),
	fx.Provide(
		fx.Annotate(
			provideScraper,
			fx.As(new(ports.Scraper)),
		),
	),
	fx.Provide(
		fx.Annotate(
			provideCompleter,
			fx.As(new(ports.Completer)),
		),
	),
	fx.Provide(provideStore),
	fx.Provide(provideSynthesizer),
	fx.Provide(provideService),
	fx.Provide(provideHTTPServer),
)

type appParams struct {
	fx.In

	Lc         fx.Lifecycle
	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideApp(p appParams) (*App, error) {
	ctx := logging.WithAttrs(p.Ctx, slog.String("component", "bootstrap.fx"))

	app, err := New(ctx, p.ConfigFile)
	if err != nil {
		return nil, err
	}

	p.Lc.Append(fx.Hook{
		OnStop: func(stopCtx context.Context) error {
			return app.Close(stopCtx)
		},
	})

	return app, nil
}

func provideConfig(app *App) config.Config {
	return app.Config
}

func provideCache(app *App) ports.Cache {
	return app.Cache
}

func provideScraper(cfg config.Config) *scrape.Scraper {
	return scrape.New(scrape.Options{
		Timeout:   cfg.Scrape.Timeout,
		UserAgent: cfg.Scrape.UserAgent,
	})
}

func provideCompleter(cfg config.Config) (*llm.OpenAIClient, error) {
	return llm.NewOpenAIClient(cfg.LLM)
}

func provideStore(cache ports.Cache, scraper ports.Scraper, cfg config.Config) *qa.Store {
	sources := func() ([]string, error) {
		return scrape.LoadSources(cfg.Scrape.SourcesFile)
	}

	return qa.NewStore(cache, scraper, sources, qa.StoreOptions{
		TTL:           cfg.Cache.CaseTTL,
		ScrapeTimeout: cfg.Scrape.Timeout,
		SourcesFile:   cfg.Scrape.SourcesFile,
	})
}

func provideSynthesizer(cache ports.Cache, completer ports.Completer, cfg config.Config) *qa.Synthesizer {
	return qa.NewSynthesizer(cache, completer, qa.SynthesizerOptions{
		AnswerTTL:    cfg.Cache.AnswerTTL,
		ModelTimeout: cfg.LLM.Timeout,
	})
}

func provideService(store *qa.Store, synth *qa.Synthesizer, cfg config.Config) *qa.Service {
	return qa.NewService(store, synth, qa.ServiceOptions{
		AskTimeout: cfg.Ask.Timeout,
	})
}

func provideHTTPServer(svc *qa.Service, cfg config.Config) *httpapi.Server {
	return httpapi.NewServer(svc, cfg.HTTP)
}
