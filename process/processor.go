package process

import (
	"context"
	"sync"
	"time"

	"go-mod.ewintr.nl/ytsum/model"
	"go-mod.ewintr.nl/ytsum/storage"
	"go-mod.ewintr.nl/ytsum/youtube"
	"golang.org/x/exp/slog"
	"golang.org/x/time/rate"
)

const defaultRescanInterval = time.Minute

// Pipeline works through queued summaries one at a time, at most as fast as
// the limiter allows. Storage is the source of truth: a summary that does not
// fit in the channel stays queued and is found by the next rescan.
type Pipeline struct {
	in             chan *model.Summary
	runner         *Runner
	summaries      *storage.Summaries
	limiter        *rate.Limiter
	rescanInterval time.Duration
	logger         *slog.Logger

	mu      sync.Mutex
	pending map[string]bool
}

func NewPipeline(runner *Runner, summaries *storage.Summaries, limiter *rate.Limiter, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		in:             make(chan *model.Summary, 10),
		runner:         runner,
		summaries:      summaries,
		limiter:        limiter,
		rescanInterval: defaultRescanInterval,
		logger:         logger,
		pending:        map[string]bool{},
	}
}

// Enqueue stores the request as queued and hands it to the pipeline. It never
// waits for room in the pipeline.
func (p *Pipeline) Enqueue(ctx context.Context, url, question string) (*model.Summary, error) {
	summary, err := p.runner.Enqueue(ctx, url, question)
	if err != nil {
		return nil, err
	}
	p.offer(summary)

	return summary, nil
}

// offer reports whether the summary was put in the channel. Summaries that
// are already waiting are not added twice.
func (p *Pipeline) offer(summary *model.Summary) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pending[summary.Key] {
		return false
	}
	select {
	case p.in <- summary:
		p.pending[summary.Key] = true
		return true
	default:
		p.logger.Debug("pipeline full, summary stays queued", slog.String("video", string(summary.VideoID)))
		return false
	}
}

func (p *Pipeline) take(summary *model.Summary) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.pending, summary.Key)
}

// Run processes summaries until the context is done.
func (p *Pipeline) Run(ctx context.Context) error {
	p.FindUnprocessed(ctx)

	ticker := time.NewTicker(p.rescanInterval)
	defer ticker.Stop()

	p.logger.Info("started summary pipeline")
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("stopped summary pipeline")
			return nil
		case <-ticker.C:
			p.rescan(ctx, model.StatusQueued)
		case summary := <-p.in:
			p.take(summary)
			p.Process(ctx, summary)
		}
	}
}

// FindUnprocessed feeds the records that were queued or interrupted during an
// earlier run back into the pipeline.
func (p *Pipeline) FindUnprocessed(ctx context.Context) {
	p.logger.Info("looking for unprocessed summaries")
	p.rescan(ctx, model.StatusQueued, model.StatusInProgress)
}

func (p *Pipeline) rescan(ctx context.Context, statuses ...model.SummaryStatus) {
	summaries, err := p.summaries.FindByStatus(ctx, statuses...)
	if err != nil {
		p.logger.Error("failed to fetch unprocessed summaries", slog.String("error", err.Error()))
		return
	}
	added := 0
	for _, summary := range summaries {
		if p.offer(summary) {
			added++
		}
	}
	if added > 0 {
		p.logger.Info("found unprocessed summaries", slog.Int("count", added))
	}
}

func (p *Pipeline) Process(ctx context.Context, summary *model.Summary) {
	current, err := p.summaries.GetByVideoID(ctx, summary.VideoID)
	if err != nil {
		p.logger.Info("skipping summary", slog.String("video", string(summary.VideoID)), slog.String("reason", err.Error()))
		return
	}
	if current.Status != model.StatusQueued && current.Status != model.StatusInProgress {
		p.logger.Debug("summary no longer waiting", slog.String("video", string(summary.VideoID)), slog.String("status", string(current.Status)))
		return
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return
	}

	url := current.URL
	if url == "" {
		url = youtube.WatchURL(current.VideoID)
	}
	p.logger.Info("processing summary", slog.String("video", string(current.VideoID)))
	res, err := p.runner.Summarize(ctx, Job{
		URL:      url,
		Question: current.Question,
		Rerun:    true,
	})
	if err != nil {
		p.logger.Error("failed to process summary", slog.String("video", string(current.VideoID)), slog.String("error", err.Error()))
		return
	}
	p.logger.Info("processed summary", slog.String("video", string(res.Summary.VideoID)), slog.Int("length", len(res.Summary.Markdown)))
}
