package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/bettergovph/transparency-dashboard/internal/adapter/driven/config"
	"github.com/bettergovph/transparency-dashboard/internal/adapter/driven/export"
	"github.com/bettergovph/transparency-dashboard/internal/adapter/driven/notify"
	"github.com/bettergovph/transparency-dashboard/internal/adapter/driven/publish"
	"github.com/bettergovph/transparency-dashboard/internal/adapter/driven/source"
	"github.com/bettergovph/transparency-dashboard/internal/adapter/driven/staging"
	"github.com/bettergovph/transparency-dashboard/internal/adapter/driving/cli"
	"github.com/bettergovph/transparency-dashboard/internal/application/usecase"
	"github.com/bettergovph/transparency-dashboard/internal/observability"
	"github.com/bettergovph/transparency-dashboard/internal/shared/types"
	"github.com/bettergovph/transparency-dashboard/pkg/console"
	"github.com/bettergovph/transparency-dashboard/pkg/version"
)

func main() {
	// .env é opcional
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Inicializa os repositórios
	sources := source.NewSourceProvider()
	exportRepo := export.NewExportRepository()
	configRepo := config.NewConfigRepository()
	publishers := publish.NewPublisherProvider()
	notifiers := notify.NewNotifierProvider()
	stagingRepo := staging.NewStagingProvider()
	consoleImpl := console.NewConsole()
	metrics := observability.NewMetrics()

	// Inicializa o aplicativo CLI e os casos de uso
	app := cli.NewCLIApp(version.Version, configRepo, metrics)
	app.SetUseCases(cli.UseCases{
		Aggregate: usecase.NewAggregateUseCase(sources, exportRepo, publishers, notifiers, consoleImpl, metrics),
		Convert:   usecase.NewConvertUseCase(sources, exportRepo, consoleImpl, metrics),
		Stage:     usecase.NewStageUseCase(sources, stagingRepo, consoleImpl, metrics),
		Sitemap:   usecase.NewSitemapUseCase(exportRepo, consoleImpl),
		Index:     usecase.NewIndexUseCase(sources, notifiers, consoleImpl, metrics),
	})

	// Executa o aplicativo
	err := app.Execute(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	stop()
	os.Exit(types.ExitCode(err))
}
