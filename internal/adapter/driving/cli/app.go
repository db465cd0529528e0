package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/bettergovph/transparency-dashboard/pkg/version"

	"github.com/bettergovph/transparency-dashboard/internal/application/usecase"
	"github.com/bettergovph/transparency-dashboard/internal/domain/repository"
	"github.com/bettergovph/transparency-dashboard/internal/logger"
	"github.com/bettergovph/transparency-dashboard/internal/observability"
	"github.com/bettergovph/transparency-dashboard/internal/shared/types"
	"github.com/spf13/cobra"
)

// UseCases agrupa os casos de uso expostos pelos comandos.
type UseCases struct {
	Aggregate *usecase.AggregateUseCase
	Convert   *usecase.ConvertUseCase
	Stage     *usecase.StageUseCase
	Sitemap   *usecase.SitemapUseCase
	Index     *usecase.IndexUseCase
}

// CLIApp represents the command-line interface application.
type CLIApp struct {
	rootCmd    *cobra.Command
	configRepo repository.ConfigRepository
	useCases   UseCases
	metrics    *observability.Metrics
	version    string
	quiet      bool
}

// NewCLIApp cria uma nova aplicação CLI.
func NewCLIApp(versionStr string, configRepo repository.ConfigRepository, metrics *observability.Metrics) *CLIApp {
	app := &CLIApp{
		version:    versionStr,
		configRepo: configRepo,
		metrics:    metrics,
	}

	// Obtem a versão formatada
	formattedVersion := version.FormatVersion()

	rootCmd := &cobra.Command{
		Use:           "gaa-etl",
		Short:         "GAA budget ETL: aggregates the General Appropriations Act line items",
		Version:       formattedVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{printf "gaa-etl version: %s\n" .Version}}`)

	// Flags comuns a todos os comandos
	rootCmd.PersistentFlags().StringP("config-file", "C", "", "Path to a TOML, YAML, or JSON configuration file")
	rootCmd.PersistentFlags().StringP("dir", "d", "", "Directory holding the aggregate documents (default: aggregates)")
	rootCmd.PersistentFlags().String("log-level", "", "Diagnostic log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-file", "", "Append JSON diagnostic logs to this file instead of stderr")
	rootCmd.PersistentFlags().String("metrics-file", "", "Write run metrics in Prometheus text format to this file")

	rootCmd.AddCommand(
		app.newAggregateCmd(),
		app.newConvertCmd(),
		app.newStageCmd(),
		app.newSitemapCmd(),
		app.newIndexCmd(),
	)

	app.rootCmd = rootCmd
	return app
}

// SetUseCases sets the use cases run by the commands.
func (app *CLIApp) SetUseCases(useCases UseCases) {
	app.useCases = useCases
}

// Execute runs the CLI application.
func (app *CLIApp) Execute(ctx context.Context) error {
	return app.rootCmd.ExecuteContext(ctx)
}

// SetArgs replaces os.Args, mainly for tests.
func (app *CLIApp) SetArgs(args []string) {
	app.rootCmd.SetArgs(args)
	app.quiet = true
}

// parseArgs parses the persistent flags into a CLIArgs struct.
func parseArgs(cmd *cobra.Command) (*types.CLIArgs, error) {
	flags := cmd.Flags()
	configFile, _ := flags.GetString("config-file")
	dir, _ := flags.GetString("dir")
	logLevel, _ := flags.GetString("log-level")
	logFile, _ := flags.GetString("log-file")
	metricsFile, _ := flags.GetString("metrics-file")

	// Converte para caminho absoluto
	if dir != "" {
		absDir, err := filepath.Abs(dir)
		if err != nil {
			return nil, err
		}
		dir = absDir
	}

	return &types.CLIArgs{
		ConfigFile:  configFile,
		Dir:         dir,
		LogLevel:    logLevel,
		LogFile:     logFile,
		MetricsFile: metricsFile,
	}, nil
}

// resolveConfig monta a configuração final: padrões, arquivo, ambiente GAA_* e flags.
func (app *CLIApp) resolveConfig(cmd *cobra.Command, apply func(cmd *cobra.Command, cfg *types.Config)) (*types.Config, error) {
	cliArgs, err := parseArgs(cmd)
	if err != nil {
		return nil, types.NewRunError(types.KindInvalidConfig, err)
	}

	cfg, err := app.configRepo.LoadConfigFile(cliArgs.ConfigFile)
	if err != nil {
		return nil, types.NewRunError(types.KindInvalidConfig, fmt.Errorf("%w: %w", types.ErrInvalidConfig, err))
	}
	if err := app.configRepo.ApplyEnvironment(cfg); err != nil {
		return nil, types.NewRunError(types.KindInvalidConfig, fmt.Errorf("%w: %w", types.ErrInvalidConfig, err))
	}

	if cliArgs.Dir != "" {
		cfg.Output.Dir = cliArgs.Dir
	}
	if cliArgs.LogLevel != "" {
		cfg.Log.Level = cliArgs.LogLevel
	}
	if cliArgs.LogFile != "" {
		cfg.Log.File = cliArgs.LogFile
	}
	if cliArgs.MetricsFile != "" {
		cfg.MetricsFile = cliArgs.MetricsFile
	}
	if apply != nil {
		apply(cmd, cfg)
	}

	if err := app.configRepo.Validate(cfg); err != nil {
		return nil, types.NewRunError(types.KindInvalidConfig, err)
	}
	return cfg, nil
}

// run prepara configuração, logger e métricas e executa fn.
func (app *CLIApp) run(cmd *cobra.Command, apply func(*cobra.Command, *types.Config), fn func(context.Context, *types.Config) error) error {
	cfg, err := app.resolveConfig(cmd, apply)
	if err != nil {
		return err
	}

	log, closer, err := logger.Open(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return types.NewRunError(types.KindInvalidConfig, fmt.Errorf("%w: %w", types.ErrInvalidConfig, err))
	}
	defer closer.Close()

	if !app.quiet {
		displayWelcomeBanner(app.version)
		go version.CheckLatestVersion(app.version)
	}

	log = log.With().Str("command", cmd.Name()).Logger()
	ctx := logger.WithContext(cmd.Context(), log)

	runErr := fn(ctx, cfg)
	if runErr != nil {
		log.Error().Err(runErr).Int("exit_code", types.ExitCode(runErr)).Msg("run failed")
	}

	if cfg.MetricsFile != "" {
		if err := app.metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			log.Warn().Err(err).Str("file", cfg.MetricsFile).Msg("could not write metrics file")
		}
	}
	return runErr
}

// setString copia a flag para dst somente quando informada explicitamente.
func setString(cmd *cobra.Command, name string, dst *string) {
	if cmd.Flags().Changed(name) {
		*dst, _ = cmd.Flags().GetString(name)
	}
}

func setInt(cmd *cobra.Command, name string, dst *int) {
	if cmd.Flags().Changed(name) {
		*dst, _ = cmd.Flags().GetInt(name)
	}
}

func setBool(cmd *cobra.Command, name string, dst *bool) {
	if cmd.Flags().Changed(name) {
		*dst, _ = cmd.Flags().GetBool(name)
	}
}

func setStrings(cmd *cobra.Command, name string, dst *[]string) {
	if cmd.Flags().Changed(name) {
		*dst, _ = cmd.Flags().GetStringSlice(name)
	}
}
