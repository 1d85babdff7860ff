package pipeline

import (
	"context"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/covid-report-etl/internal/domain"
	"github.com/couchcryptid/covid-report-etl/internal/observability"
)

// Extractor fetches one country's raw report table for the run date.
type Extractor interface {
	FetchCountryReports(ctx context.Context, iso, date string) (domain.Table, error)
}

// Transformer converts a raw report table into the enriched table and its
// run summary.
type Transformer interface {
	Transform(raw domain.Table, country string) (domain.Table, domain.CountrySummary, error)
}

// Loader persists the processed table locally and returns the artifact path.
type Loader interface {
	Save(table domain.Table, country, date string) (string, error)
}

// Uploader copies a saved artifact to the object store.
type Uploader interface {
	Upload(ctx context.Context, localPath, country, date string) error
}

// SummaryPublisher publishes the run's collected summaries.
type SummaryPublisher interface {
	PublishSummaries(ctx context.Context, summaries []domain.CountrySummary) error
}

// Pipeline orchestrates the per-country extract-transform-load run.
// uploader and publisher are optional: nil disables that stage.
type Pipeline struct {
	extractor   Extractor
	transformer Transformer
	loader      Loader
	uploader    Uploader
	publisher   SummaryPublisher
	clock       clockwork.Clock
	logger      *slog.Logger
	metrics     *observability.Metrics
	runDate     string
	countries   []string
}

// New creates a Pipeline with the given stages and observability.
func New(
	e Extractor,
	t Transformer,
	l Loader,
	u Uploader,
	pub SummaryPublisher,
	clock clockwork.Clock,
	logger *slog.Logger,
	metrics *observability.Metrics,
	runDate string,
	countries []string,
) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		uploader:    u,
		publisher:   pub,
		clock:       clock,
		logger:      logger,
		metrics:     metrics,
		runDate:     runDate,
		countries:   countries,
	}
}

// Run executes the batch over all configured countries, sequentially. One
// country's failure never stops the run; the only early exit is context
// cancellation, which is also the only error Run returns.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "run_date", p.runDate, "countries", len(p.countries))
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	start := p.clock.Now()
	summaries := make([]domain.CountrySummary, 0, len(p.countries))

	for _, country := range p.countries {
		if err := ctx.Err(); err != nil {
			p.logger.Info("pipeline stopping", "reason", err)
			return err
		}
		summary, ok := p.processCountry(ctx, country)
		if ok {
			summaries = append(summaries, summary)
		}
	}
	if err := ctx.Err(); err != nil {
		p.logger.Info("pipeline stopping", "reason", err)
		return err
	}

	p.publishSummaries(ctx, summaries)

	p.metrics.RunDuration.Observe(p.clock.Since(start).Seconds())
	p.logger.Info("pipeline finished", "countries", len(p.countries), "summaries", len(summaries))
	return nil
}

// processCountry runs extract-transform-save-upload for one country. A
// failed extract degrades to an empty table so the country still produces
// an artifact; a failed transform skips the country; a failed save skips
// the upload but keeps the summary. ok reports whether the summary should
// be published.
func (p *Pipeline) processCountry(ctx context.Context, country string) (domain.CountrySummary, bool) {
	start := p.clock.Now()
	defer func() {
		p.metrics.CountryDuration.Observe(p.clock.Since(start).Seconds())
		p.metrics.CountriesProcessed.Inc()
	}()

	logger := p.logger.With("country", country, "run_date", p.runDate)

	raw, err := p.extractor.FetchCountryReports(ctx, country, p.runDate)
	if err != nil {
		logger.Error("extract failed, continuing with empty table", "error", err)
		p.metrics.ExtractErrors.Inc()
		raw = domain.Table{}
	}
	if raw.IsEmpty() {
		logger.Warn("no report rows for country")
		p.metrics.EmptyReports.Inc()
	}

	table, summary, err := p.transformer.Transform(raw, country)
	if err != nil {
		logger.Error("transform failed, skipping country", "error", err)
		p.metrics.TransformErrors.Inc()
		return domain.CountrySummary{}, false
	}
	p.metrics.RowsProcessed.Add(float64(table.NumRows()))

	localPath, err := p.loader.Save(table, country, p.runDate)
	if err != nil {
		logger.Error("save failed", "error", err)
		p.metrics.LoadErrors.Inc()
		return summary, true
	}
	logger.Info("saved local artifact", "path", localPath, "rows", table.NumRows())

	if p.uploader != nil {
		if err := p.uploader.Upload(ctx, localPath, country, p.runDate); err != nil {
			logger.Error("upload failed", "error", err, "path", localPath)
			p.metrics.UploadErrors.Inc()
		} else {
			logger.Info("uploaded artifact", "path", localPath)
		}
	}

	logger.Info("country processed",
		"total_confirmed", summary.TotalConfirmed,
		"total_new_cases", summary.TotalNewCases)
	return summary, true
}

// publishSummaries sends the collected summaries if a publisher is wired.
// Publish failures are terminal for nothing: the artifacts are already on
// disk, so the error is logged and counted.
func (p *Pipeline) publishSummaries(ctx context.Context, summaries []domain.CountrySummary) {
	if p.publisher == nil || len(summaries) == 0 {
		return
	}
	if err := p.publisher.PublishSummaries(ctx, summaries); err != nil {
		p.logger.Error("publish summaries failed", "error", err)
		p.metrics.PublishErrors.Inc()
		return
	}
	p.logger.Info("published summaries", "count", len(summaries))
}
