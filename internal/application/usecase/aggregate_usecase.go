package usecase

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/bettergovph/transparency-dashboard/internal/domain/budget"
	"github.com/bettergovph/transparency-dashboard/internal/domain/entity"
	"github.com/bettergovph/transparency-dashboard/internal/domain/repository"
	"github.com/bettergovph/transparency-dashboard/internal/logger"
	"github.com/bettergovph/transparency-dashboard/internal/observability"
	"github.com/bettergovph/transparency-dashboard/internal/shared/types"
	"github.com/bettergovph/transparency-dashboard/pkg/console"
	"github.com/google/uuid"
	"github.com/pterm/pterm"
)

const topDepartmentsCount = 5

// AggregateUseCase runs the load, group and emit pipeline.
type AggregateUseCase struct {
	sources    repository.SourceProvider
	exportRepo repository.ExportRepository
	publishers repository.PublisherProvider
	notifiers  repository.NotifierProvider
	console    types.ConsoleInterface
	metrics    *observability.Metrics
}

// NewAggregateUseCase creates a new aggregate use case.
func NewAggregateUseCase(
	sources repository.SourceProvider,
	exportRepo repository.ExportRepository,
	publishers repository.PublisherProvider,
	notifiers repository.NotifierProvider,
	console types.ConsoleInterface,
	metrics *observability.Metrics,
) *AggregateUseCase {
	return &AggregateUseCase{
		sources:    sources,
		exportRepo: exportRepo,
		publishers: publishers,
		notifiers:  notifiers,
		console:    console,
		metrics:    metrics,
	}
}

// Run executes one aggregation. The summary is returned even when the run ends with
// a schema-missing error, since the other levels were still written.
func (uc *AggregateUseCase) Run(ctx context.Context, cfg *types.Config) (*entity.RunSummary, error) {
	levels, err := requestedLevels(cfg.Output.Levels)
	if err != nil {
		return nil, types.NewRunError(types.KindInvalidConfig, err)
	}

	summary := &entity.RunSummary{RunID: uuid.NewString()}
	log := logger.FromContext(ctx).With().Str("run_id", summary.RunID).Logger()
	ctx = logger.WithContext(ctx, log)

	// Leitura das linhas
	status := uc.console.Status(fmt.Sprintf("Loading line items (%s)...", cfg.Source.Kind))
	tracker := uc.metrics.Track("load")
	table, describe, err := loadTable(ctx, uc.sources, cfg.Source)
	tracker.End(err)
	status.Stop()
	if err != nil {
		return nil, err
	}
	summary.Source = describe

	result := budget.Load(table)
	summary.RowsRead = result.Rows
	summary.RowsRejected = len(result.Issues)
	uc.reportIssues(ctx, result)

	// Verificação de esquema por nível
	var buildable []entity.Level
	missingByLevel := make(map[entity.Level][]string)
	for _, level := range levels {
		missing := budget.MissingColumns(level, result.Present)
		if len(missing) > 0 {
			missingByLevel[level] = missing
			uc.console.LogWarning("Skipping %s: missing columns %s", level, strings.Join(missing, ", "))
			log.Warn().Str("level", string(level)).Strs("missing", missing).Msg("level skipped")
			continue
		}
		buildable = append(buildable, level)
	}

	// Agrupamento
	tracker = uc.metrics.Track("group")
	agg := budget.Build(result.Items, buildable)
	err = budget.Verify(agg, result.Items)
	tracker.End(err)
	if err != nil {
		return nil, types.NewRunError(types.KindInternal, err)
	}

	for _, level := range levels {
		ls := entity.LevelSummary{Level: level, Missing: missingByLevel[level]}
		if !ls.Skipped() {
			ls.Entities = agg.Size(level)
			ls.Count, ls.Amount = budget.LevelTotals(agg, level)
			uc.metrics.SetEntities(string(level), ls.Entities)
			log.Info().Str("level", string(level)).Int("entities", ls.Entities).Int("count", ls.Count).Msg("level built")
		}
		summary.Levels = append(summary.Levels, ls)
	}
	summary.YearlyTotals = yearlyTotals(agg, result.Items)
	summary.LatestYear, summary.TopDepartments = topDepartments(agg.Departments, topDepartmentsCount)

	// Escrita
	tracker = uc.metrics.Track("emit")
	files, err := uc.writeOutputs(ctx, cfg.Output, agg, summary)
	summary.Files = files
	uc.metrics.AddFiles(len(files))
	if err = tracker.End(err); err != nil {
		return summary, types.NewRunError(types.KindOutputWrite, err)
	}

	uc.displaySummary(summary)

	if cfg.Publish.Target != "" {
		tracker = uc.metrics.Track("publish")
		published, err := uc.publish(ctx, cfg.Publish, files)
		if err = tracker.End(err); err != nil {
			return summary, types.NewRunError(types.KindOutputWrite, err)
		}
		summary.Published = published
		uc.console.LogSuccess("Published %d files to %s", len(published), cfg.Publish.Target)
	}

	if cfg.Notify.AMQPURL != "" {
		tracker = uc.metrics.Track("notify")
		if err := tracker.End(uc.notify(ctx, cfg.Notify, summary)); err != nil {
			uc.console.LogWarning("Run notification failed: %s", err)
			log.Warn().Err(err).Msg("run notification failed")
		}
	}

	if skipped := summary.SkippedLevels(); len(skipped) > 0 {
		names := make([]string, len(skipped))
		for i, s := range skipped {
			names[i] = string(s.Level)
		}
		return summary, types.NewRunError(types.KindSchemaMissing,
			fmt.Errorf("%w: levels %s not built", types.ErrSchemaMissing, strings.Join(names, ", ")))
	}
	return summary, nil
}

func requestedLevels(names []string) ([]entity.Level, error) {
	if len(names) == 0 {
		return append([]entity.Level(nil), entity.Levels...), nil
	}
	wanted := make(map[entity.Level]bool, len(names))
	for _, name := range names {
		level, err := entity.ParseLevel(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrInvalidConfig, err)
		}
		wanted[level] = true
	}
	var levels []entity.Level
	for _, level := range entity.Levels {
		if wanted[level] {
			levels = append(levels, level)
		}
	}
	return levels, nil
}

func (uc *AggregateUseCase) reportIssues(ctx context.Context, result budget.LoadResult) {
	log := logger.FromContext(ctx)
	uc.metrics.AddRows("accepted", len(result.Items))
	for _, issue := range result.Issues {
		log.Debug().Int("row", issue.Row).Str("reason", issue.Reason).Str("value", issue.Value).Msg("row excluded")
	}
	counts := result.IssueCounts()
	reasons := make([]string, 0, len(counts))
	for reason := range counts {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		uc.metrics.AddRows(reason, counts[reason])
		uc.console.LogWarning("%s rows excluded: %s", console.FormatCount(counts[reason]), reason)
	}
	uc.console.LogInfo("Loaded %s line items from %s rows", console.FormatCount(len(result.Items)), console.FormatCount(result.Rows))
}

// writeOutputs writes the documents, the optional reports and returns every written path.
func (uc *AggregateUseCase) writeOutputs(ctx context.Context, out types.OutputConfig, agg *entity.Aggregates, summary *entity.RunSummary) ([]string, error) {
	log := logger.FromContext(ctx)
	docs := budget.Documents(agg, out.SourceLabel)
	formats := out.Formats
	if len(formats) == 0 {
		formats = []string{"json"}
	}

	total := len(docs) * len(formats)
	for _, rt := range out.ReportTypes {
		switch rt {
		case "csv":
			total += len(docs)
		case "pdf":
			total++
		}
	}

	var files []string
	progress := uc.console.ProgressWithTotal("Writing aggregates", total)
	defer progress.Stop()

	record := func(path string, err error) error {
		if err != nil {
			return fmt.Errorf("%w: %w", types.ErrOutputWrite, err)
		}
		files = append(files, path)
		log.Debug().Str("file", path).Msg("written")
		progress.Increment()
		return nil
	}

	for _, doc := range docs {
		for _, format := range formats {
			if err := record(uc.exportRepo.ExportDocument(doc, out.Dir, format)); err != nil {
				return files, err
			}
		}
	}

	for _, rt := range out.ReportTypes {
		switch rt {
		case "csv":
			for _, doc := range docs {
				var err error
				if doc.Level == entity.LevelYearlyTotals {
					err = record(uc.exportRepo.ExportYearlyTotalsToCSV(agg.YearlyTotals, out.Dir))
				} else {
					err = record(uc.exportRepo.ExportLevelToCSV(doc.Level, agg.Entities(doc.Level), out.Dir))
				}
				if err != nil {
					return files, err
				}
			}
		case "pdf":
			if err := record(uc.exportRepo.ExportSummaryToPDF(summary, out.Dir)); err != nil {
				return files, err
			}
		}
	}
	return files, nil
}

func (uc *AggregateUseCase) publish(ctx context.Context, cfg types.PublishConfig, files []string) ([]string, error) {
	publisher, err := uc.publishers.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open publisher: %w", err)
	}
	defer publisher.Close()

	status := uc.console.Status(fmt.Sprintf("Publishing %d files to %s...", len(files), cfg.Target))
	defer status.Stop()
	return publisher.Publish(ctx, files)
}

func (uc *AggregateUseCase) notify(ctx context.Context, cfg types.NotifyConfig, summary *entity.RunSummary) error {
	notifier, err := uc.notifiers.Open(ctx, cfg.AMQPURL, cfg.Exchange, cfg.RoutingKey)
	if err != nil {
		return err
	}
	defer notifier.Close()
	return notifier.NotifyRunCompleted(ctx, summary)
}

func (uc *AggregateUseCase) displaySummary(summary *entity.RunSummary) {
	table := uc.console.CreateTable()
	table.AddColumn("Level")
	table.AddColumn("Entries")
	table.AddColumn("Line Items")
	table.AddColumn("Amount")

	for _, l := range summary.Levels {
		if l.Skipped() {
			table.AddRow(string(l.Level), pterm.FgYellow.Sprint("skipped"), "-", "-")
			continue
		}
		table.AddRow(
			string(l.Level),
			console.FormatCount(l.Entities),
			console.FormatCount(l.Count),
			console.FormatPeso(l.Amount.InexactFloat64()),
		)
	}
	uc.console.Print(table.Render())

	if len(summary.YearlyTotals) > 0 {
		bars := make([]types.YearlyAmount, len(summary.YearlyTotals))
		for i, t := range summary.YearlyTotals {
			bars[i] = types.YearlyAmount{Year: t.Year, Amount: t.Amount.InexactFloat64()}
		}
		uc.console.DisplayYearlyTotals(bars)
	}

	if len(summary.TopDepartments) > 0 {
		uc.console.Printf("\n%s\n", pterm.FgYellow.Sprintf("Top departments in %d", summary.LatestYear))
		for i, d := range summary.TopDepartments {
			uc.console.Printf("  %d. %s  %s\n", i+1, d.Description, console.FormatPeso(d.Amount.InexactFloat64()))
		}
	}

	uc.console.LogSuccess("Run %s wrote %d files", summary.RunID, len(summary.Files))
}

// yearlyTotals returns the built yearly totals, or computes them for the summary when
// the level was not requested.
func yearlyTotals(agg *entity.Aggregates, items []entity.LineItem) []entity.YearlyTotal {
	if agg.YearlyTotals != nil {
		return agg.YearlyTotals
	}
	return budget.YearlyTotals(items)
}

// topDepartments ranks departments by their amount in the latest year present.
func topDepartments(departments []entity.Entity, n int) (int, []entity.RankedEntity) {
	latest := 0
	for _, d := range departments {
		for y := range d.Years {
			if year, err := strconv.Atoi(y); err == nil && year > latest {
				latest = year
			}
		}
	}
	if latest == 0 {
		return 0, nil
	}

	key := strconv.Itoa(latest)
	var ranked []entity.RankedEntity
	for _, d := range departments {
		fig, ok := d.Years[key]
		if !ok {
			continue
		}
		ranked = append(ranked, entity.RankedEntity{ID: d.ID, Description: d.Description, Amount: fig.Amount})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if c := ranked[i].Amount.Cmp(ranked[j].Amount); c != 0 {
			return c > 0
		}
		return ranked[i].ID < ranked[j].ID
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return latest, ranked
}
