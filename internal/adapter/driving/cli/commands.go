package cli

import (
	"context"
	"fmt"

	"github.com/bettergovph/transparency-dashboard/internal/shared/types"
	"github.com/spf13/cobra"
)

func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("source", "s", "", "Line-item source: parquet, csv, sqlite, postgres, bigquery (default: parquet)")
	cmd.Flags().StringP("input", "i", "", "Parquet file, CSV batch directory or SQLite database")
	cmd.Flags().String("table", "", "Table to read (sqlite, postgres, bigquery dataset.table)")
	cmd.Flags().String("dsn", "", "Postgres connection string")
	cmd.Flags().String("project", "", "Google Cloud project for BigQuery")
	cmd.Flags().String("credentials", "", "Google Cloud credentials file")
	cmd.Flags().Int("default-year", 0, "Year for CSV files without a year column or year in the file name")
}

func applySourceFlags(cmd *cobra.Command, src *types.SourceConfig) {
	setString(cmd, "source", &src.Kind)
	setString(cmd, "input", &src.Input)
	setString(cmd, "table", &src.Table)
	setString(cmd, "dsn", &src.DSN)
	setString(cmd, "project", &src.Project)
	setString(cmd, "credentials", &src.Credentials)
	setInt(cmd, "default-year", &src.DefaultYear)
}

// addCSVFlags registra as flags dos comandos que leem um diretório de CSVs.
func addCSVFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("input", "i", "", "Directory holding the GAA CSV batch")
	cmd.Flags().Int("default-year", 0, "Year for CSV files without a year column or year in the file name")
}

func applyCSVFlags(cmd *cobra.Command, src *types.SourceConfig) {
	setString(cmd, "input", &src.Input)
	setInt(cmd, "default-year", &src.DefaultYear)
	src.Kind = types.SourceCSV
}

func (app *CLIApp) newAggregateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Build the six aggregate documents from the GAA line items",
		Args:  cobra.NoArgs,
	}
	addSourceFlags(cmd)
	cmd.Flags().StringSliceP("format", "f", nil, "Document formats: json, yaml (default: json)")
	cmd.Flags().StringSliceP("report-type", "y", nil, "Extra reports: csv, pdf")
	cmd.Flags().StringSlice("level", nil, "Only build these levels (default: all six)")
	cmd.Flags().String("source-label", "", "Source label written in the document metadata")
	cmd.Flags().String("publish", "", "Upload written files to s3://bucket/prefix or gs://bucket/prefix")
	cmd.Flags().String("profile", "", "AWS profile used by the S3 publisher")
	cmd.Flags().String("region", "", "AWS region used by the S3 publisher")
	cmd.Flags().Int("publish-concurrency", 0, "Parallel uploads (default: 4)")
	cmd.Flags().String("notify-amqp-url", "", "Publish a run-completed message to this AMQP broker")
	cmd.Flags().String("notify-exchange", "", "Exchange of the run-completed message (default: gaa)")

	apply := func(cmd *cobra.Command, cfg *types.Config) {
		applySourceFlags(cmd, &cfg.Source)
		setStrings(cmd, "format", &cfg.Output.Formats)
		setStrings(cmd, "report-type", &cfg.Output.ReportTypes)
		setStrings(cmd, "level", &cfg.Output.Levels)
		setString(cmd, "source-label", &cfg.Output.SourceLabel)
		setString(cmd, "publish", &cfg.Publish.Target)
		setString(cmd, "profile", &cfg.Publish.Profile)
		setString(cmd, "region", &cfg.Publish.Region)
		setInt(cmd, "publish-concurrency", &cfg.Publish.Concurrency)
		setString(cmd, "notify-amqp-url", &cfg.Notify.AMQPURL)
		setString(cmd, "notify-exchange", &cfg.Notify.Exchange)
		if cfg.Source.Kind == types.SourceBigQuery && cfg.Publish.Credentials == "" {
			cfg.Publish.Credentials = cfg.Source.Credentials
		}
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return app.run(cmd, apply, func(ctx context.Context, cfg *types.Config) error {
			_, err := app.useCases.Aggregate.Run(ctx, cfg)
			return err
		})
	}
	return cmd
}

func (app *CLIApp) newConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Merge a directory of GAA CSV files into one Parquet file",
		Args:  cobra.NoArgs,
	}
	addCSVFlags(cmd)
	cmd.Flags().StringP("output", "o", "", "Parquet file to write (default: gaa.parquet)")

	apply := func(cmd *cobra.Command, cfg *types.Config) {
		applyCSVFlags(cmd, &cfg.Source)
		setString(cmd, "output", &cfg.Output.Parquet)
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return app.run(cmd, apply, func(ctx context.Context, cfg *types.Config) error {
			if cfg.Output.Parquet == "" {
				return types.NewRunError(types.KindInvalidConfig, fmt.Errorf("%w: output.parquet is required", types.ErrInvalidConfig))
			}
			_, err := app.useCases.Convert.Run(ctx, cfg.Source, cfg.Output.Parquet)
			return err
		})
	}
	return cmd
}

func (app *CLIApp) newStageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stage",
		Short: "Load a directory of GAA CSV files into the SQLite staging database",
		Args:  cobra.NoArgs,
	}
	addCSVFlags(cmd)
	cmd.Flags().String("database", "", "SQLite staging database (default: gaa.db)")
	cmd.Flags().Bool("replace", false, "Clear the staging table before inserting")

	apply := func(cmd *cobra.Command, cfg *types.Config) {
		applyCSVFlags(cmd, &cfg.Source)
		setString(cmd, "database", &cfg.Staging.Database)
		setBool(cmd, "replace", &cfg.Staging.Replace)
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return app.run(cmd, apply, func(ctx context.Context, cfg *types.Config) error {
			_, _, err := app.useCases.Stage.Run(ctx, cfg.Source, cfg.Staging)
			return err
		})
	}
	return cmd
}

func (app *CLIApp) newSitemapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitemap",
		Short: "Write the sitemap of the budget pages from departments.json and agencies.json",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().String("base-url", "", "Public site URL (default: https://transparency.bettergov.ph)")
	cmd.Flags().StringP("output", "o", "", "Sitemap file to write (default: sitemap.xml)")

	apply := func(cmd *cobra.Command, cfg *types.Config) {
		setString(cmd, "base-url", &cfg.Sitemap.BaseURL)
		setString(cmd, "output", &cfg.Sitemap.Output)
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return app.run(cmd, apply, func(ctx context.Context, cfg *types.Config) error {
			_, _, err := app.useCases.Sitemap.Run(ctx, cfg.Output.Dir, cfg.Sitemap)
			return err
		})
	}
	return cmd
}

func (app *CLIApp) newIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Send the line items to the search-index exchange in batches",
		Args:  cobra.NoArgs,
	}
	addSourceFlags(cmd)
	cmd.Flags().String("index-name", "", "Search index name, used as routing key (default: gaa)")
	cmd.Flags().Int("batch-size", 0, "Documents per message (default: 1000)")
	cmd.Flags().String("amqp-url", "", "AMQP broker URL")
	cmd.Flags().String("exchange", "", "Exchange the batches are published to (default: search-index)")

	apply := func(cmd *cobra.Command, cfg *types.Config) {
		applySourceFlags(cmd, &cfg.Source)
		setString(cmd, "index-name", &cfg.Index.Name)
		setInt(cmd, "batch-size", &cfg.Index.BatchSize)
		setString(cmd, "amqp-url", &cfg.Index.AMQPURL)
		setString(cmd, "exchange", &cfg.Index.Exchange)
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return app.run(cmd, apply, func(ctx context.Context, cfg *types.Config) error {
			_, err := app.useCases.Index.Run(ctx, cfg.Source, cfg.Index)
			return err
		})
	}
	return cmd
}
