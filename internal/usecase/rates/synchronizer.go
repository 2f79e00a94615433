package rates

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/LavaJover/shvark-kiosk-service/internal/domain"
)

type Options struct {
	RefreshInterval time.Duration
	RetryBaseDelay  time.Duration
	MaxAttempts     int
	PublishTimeout  time.Duration
}

func DefaultOptions() Options {
	return Options{
		RefreshInterval: 60 * time.Second,
		RetryBaseDelay:  5 * time.Second,
		MaxAttempts:     5,
		PublishTimeout:  5 * time.Second,
	}
}

// Recorder receives fetch telemetry. Outcome is one of "success", "transport", "schema".
type Recorder interface {
	RecordFetch(provider, asset, outcome string, durationSeconds float64)
	RecordRetry(provider, asset string)
	RecordCycleFailed(provider, asset string)
	RecordQuote(asset string, rate float64)
}

// Synchronizer keeps the latest rate quote for one asset at a time.
//
// Each Start owns a single scheduled task: it fetches immediately, retries a failed
// fetch with a linearly growing delay and then waits for the refresh interval.
// Retries and the periodic refresh share that one task, so fetches for the same
// run never overlap. Start on a new asset and Stop both retire the task; whatever
// it fetches afterwards is dropped.
type Synchronizer struct {
	provider  domain.RateProvider
	opts      Options
	logger    *slog.Logger
	recorder  Recorder
	publisher domain.QuotePublisher

	mu      sync.Mutex
	run     *run
	current *domain.RateQuote
}

type run struct {
	asset     domain.Asset
	cancel    context.CancelFunc
	quotes    chan domain.RateQuote
	issued    uint64
	committed uint64
}

func NewSynchronizer(provider domain.RateProvider, opts Options, logger *slog.Logger) *Synchronizer {
	def := DefaultOptions()
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = def.RefreshInterval
	}
	if opts.RetryBaseDelay <= 0 {
		opts.RetryBaseDelay = def.RetryBaseDelay
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = def.MaxAttempts
	}
	if opts.PublishTimeout <= 0 {
		opts.PublishTimeout = def.PublishTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Synchronizer{
		provider: provider,
		opts:     opts,
		logger:   logger,
	}
}

func (s *Synchronizer) WithRecorder(r Recorder) *Synchronizer {
	s.recorder = r
	return s
}

func (s *Synchronizer) WithPublisher(p domain.QuotePublisher) *Synchronizer {
	s.publisher = p
	return s
}

// Start begins synchronizing rates for asset, retiring any previous run first.
// The returned channel always holds the newest unread quote and is closed when
// the run is stopped or replaced.
func (s *Synchronizer) Start(ctx context.Context, asset domain.Asset) <-chan domain.RateQuote {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()

	runCtx, cancel := context.WithCancel(ctx)
	r := &run{
		asset:  asset,
		cancel: cancel,
		quotes: make(chan domain.RateQuote, 1),
	}
	s.run = r

	s.logger.Info("Starting rate synchronizer", "asset", assetKey(asset), "provider", s.provider.GetName(), "interval", s.opts.RefreshInterval)
	go s.loop(runCtx, r)

	return r.quotes
}

// Stop cancels the pending fetch or timer. It does not wait for an in-flight
// request to return; its result is discarded when it does.
func (s *Synchronizer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Synchronizer) stopLocked() {
	if s.run == nil {
		return
	}
	s.logger.Info("Stopping rate synchronizer", "asset", assetKey(s.run.asset))
	s.run.cancel()
	close(s.run.quotes)
	s.run = nil
	s.current = nil
}

// Current returns the last quote published by the active run.
func (s *Synchronizer) Current() (domain.RateQuote, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return domain.RateQuote{}, false
	}
	return *s.current, true
}

func (s *Synchronizer) loop(ctx context.Context, r *run) {
	defer s.retire(r)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		s.cycle(ctx, r)
		timer.Reset(s.opts.RefreshInterval)
	}
}

// retire closes the run's channel when the parent context ended it rather than Stop.
func (s *Synchronizer) retire(r *run) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run == r {
		close(r.quotes)
		s.run = nil
		s.current = nil
	}
}

func (s *Synchronizer) cycle(ctx context.Context, r *run) {
	key := assetKey(r.asset)
	name := s.provider.GetName()

	for attempt := 1; ; attempt++ {
		seq := s.issue(r)
		started := time.Now()
		quote, err := s.provider.GetQuote(ctx, r.asset)
		if ctx.Err() != nil {
			return
		}
		elapsed := time.Since(started).Seconds()

		if err == nil {
			s.recordFetch(name, key, "success", elapsed)
			if s.publish(r, seq, quote) {
				s.logger.Debug("Rate quote published", "asset", key, "rate", quote.Rate.String(), "unit_price", quote.UnitPrice.String())
				s.fanOut(ctx, quote)
			}
			return
		}

		if errors.Is(err, domain.ErrSchema) {
			s.recordFetch(name, key, "schema", elapsed)
			s.recordCycleFailed(name, key)
			s.logger.Error("Rate response rejected, keeping last quote", "asset", key, "error", err)
			return
		}

		s.recordFetch(name, key, "transport", elapsed)
		if attempt >= s.opts.MaxAttempts {
			s.recordCycleFailed(name, key)
			s.logger.Error("Rate fetch failed, waiting for next refresh", "asset", key, "attempts", attempt, "error", err)
			return
		}

		delay := RetryDelay(s.opts.RetryBaseDelay, attempt)
		s.recordRetry(name, key)
		s.logger.Warn("Rate fetch failed, retrying", "asset", key, "attempt", attempt, "delay", delay, "error", err)
		if !sleep(ctx, delay) {
			return
		}
	}
}

// RetryDelay is the wait before the attempt following a failed attempt n.
func RetryDelay(base time.Duration, attempt int) time.Duration {
	return base * time.Duration(attempt)
}

func (s *Synchronizer) issue(r *run) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.issued++
	return r.issued
}

// publish stores quote unless the run was retired or a later issued fetch
// already published.
func (s *Synchronizer) publish(r *run, seq uint64, quote domain.RateQuote) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.run != r || seq <= r.committed {
		return false
	}
	r.committed = seq
	q := quote
	s.current = &q

	select {
	case <-r.quotes:
	default:
	}
	r.quotes <- quote
	return true
}

func (s *Synchronizer) fanOut(ctx context.Context, quote domain.RateQuote) {
	if s.recorder != nil {
		s.recorder.RecordQuote(pairKey(quote.ChainPluginID, quote.TokenID), quote.Rate.InexactFloat64())
	}
	if s.publisher == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(ctx, s.opts.PublishTimeout)
	defer cancel()
	if err := s.publisher.PublishQuote(pubCtx, quote); err != nil {
		s.logger.Warn("Failed to publish quote event", "asset", quote.ChainPluginID, "error", err)
	}
}

func (s *Synchronizer) recordFetch(provider, asset, outcome string, seconds float64) {
	if s.recorder != nil {
		s.recorder.RecordFetch(provider, asset, outcome, seconds)
	}
}

func (s *Synchronizer) recordRetry(provider, asset string) {
	if s.recorder != nil {
		s.recorder.RecordRetry(provider, asset)
	}
}

func (s *Synchronizer) recordCycleFailed(provider, asset string) {
	if s.recorder != nil {
		s.recorder.RecordCycleFailed(provider, asset)
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func assetKey(asset domain.Asset) string {
	return pairKey(asset.ChainPluginID, asset.Token())
}

func pairKey(chainPluginID, tokenID string) string {
	if tokenID == "" {
		return chainPluginID
	}
	return chainPluginID + "/" + tokenID
}
