package rates

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/LavaJover/shvark-kiosk-service/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fetchFunc func(ctx context.Context, call int, asset domain.Asset) (domain.RateQuote, error)

type fakeProvider struct {
	mu    sync.Mutex
	calls int
	fetch fetchFunc
}

func (f *fakeProvider) GetQuote(ctx context.Context, asset domain.Asset) (domain.RateQuote, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.mu.Unlock()
	return f.fetch(ctx, call, asset)
}

func (f *fakeProvider) GetName() string { return "fake" }

func (f *fakeProvider) IsHealthy(context.Context) bool { return true }

func (f *fakeProvider) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func quoteFor(asset domain.Asset, rate string) domain.RateQuote {
	r := decimal.RequireFromString(rate)
	return domain.RateQuote{
		ChainPluginID: asset.ChainPluginID,
		TokenID:       asset.Token(),
		TargetFiat:    "USD",
		Rate:          r,
		UnitPrice:     decimal.NewFromInt(1).DivRound(r, 30),
		FetchedAt:     time.Now(),
	}
}

func fastOptions() Options {
	return Options{
		RefreshInterval: time.Hour,
		RetryBaseDelay:  time.Millisecond,
		MaxAttempts:     5,
	}
}

var (
	bitcoin  = domain.Asset{ChainPluginID: "bitcoin"}
	ethereum = domain.Asset{ChainPluginID: "ethereum"}
)

func TestSynchronizerPublishesAfterTransientFailures(t *testing.T) {
	const failures = 3
	p := &fakeProvider{fetch: func(_ context.Context, call int, asset domain.Asset) (domain.RateQuote, error) {
		if call <= failures {
			return domain.RateQuote{}, &domain.TransportError{Err: errors.New("connection reset")}
		}
		return quoteFor(asset, "40000"), nil
	}}
	s := NewSynchronizer(p, fastOptions(), nil)
	defer s.Stop()

	quotes := s.Start(context.Background(), bitcoin)

	select {
	case q := <-quotes:
		require.Equal(t, "40000", q.Rate.String())
	case <-time.After(2 * time.Second):
		t.Fatal("no quote published")
	}

	require.Never(t, func() bool { return len(quotes) > 0 }, 50*time.Millisecond, 5*time.Millisecond)
	require.Equal(t, failures+1, p.Calls())

	current, ok := s.Current()
	require.True(t, ok)
	require.Equal(t, "40000", current.Rate.String())
}

func TestSynchronizerStaysArmedAfterExhaustedRetries(t *testing.T) {
	opts := fastOptions()
	opts.MaxAttempts = 2
	opts.RefreshInterval = 20 * time.Millisecond

	p := &fakeProvider{fetch: func(_ context.Context, call int, asset domain.Asset) (domain.RateQuote, error) {
		if call <= 2 {
			return domain.RateQuote{}, &domain.TransportError{StatusCode: 503}
		}
		return quoteFor(asset, "2"), nil
	}}
	s := NewSynchronizer(p, opts, nil)
	defer s.Stop()

	quotes := s.Start(context.Background(), bitcoin)

	select {
	case q := <-quotes:
		require.Equal(t, "0.5", q.UnitPrice.String())
	case <-time.After(2 * time.Second):
		t.Fatal("synchronizer did not recover on the next refresh")
	}
	require.GreaterOrEqual(t, p.Calls(), 3)
}

func TestSynchronizerDropsResponseAfterStop(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})

	p := &fakeProvider{fetch: func(_ context.Context, call int, asset domain.Asset) (domain.RateQuote, error) {
		if call == 1 {
			return domain.RateQuote{}, &domain.TransportError{Err: errors.New("timeout")}
		}
		close(entered)
		<-release
		return quoteFor(asset, "40000"), nil
	}}
	s := NewSynchronizer(p, fastOptions(), nil)

	quotes := s.Start(context.Background(), bitcoin)
	<-entered
	s.Stop()
	close(release)

	_, open := <-quotes
	require.False(t, open, "channel must close without a quote")

	require.Never(t, func() bool {
		_, ok := s.Current()
		return ok
	}, 50*time.Millisecond, 5*time.Millisecond)
	require.Equal(t, 2, p.Calls())
}

func TestSynchronizerStopClearsCurrent(t *testing.T) {
	p := &fakeProvider{fetch: func(_ context.Context, _ int, asset domain.Asset) (domain.RateQuote, error) {
		return quoteFor(asset, "40000"), nil
	}}
	s := NewSynchronizer(p, fastOptions(), nil)

	quotes := s.Start(context.Background(), bitcoin)
	select {
	case <-quotes:
	case <-time.After(2 * time.Second):
		t.Fatal("no quote published")
	}
	_, ok := s.Current()
	require.True(t, ok)

	s.Stop()

	_, ok = s.Current()
	require.False(t, ok)
}

func TestSynchronizerAssetChangeDiscardsStaleQuote(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})

	p := &fakeProvider{fetch: func(_ context.Context, _ int, asset domain.Asset) (domain.RateQuote, error) {
		if asset.ChainPluginID == bitcoin.ChainPluginID {
			close(entered)
			<-release
			return quoteFor(asset, "40000"), nil
		}
		return quoteFor(asset, "2000"), nil
	}}
	s := NewSynchronizer(p, fastOptions(), nil)
	defer s.Stop()

	oldQuotes := s.Start(context.Background(), bitcoin)
	<-entered

	newQuotes := s.Start(context.Background(), ethereum)
	_, open := <-oldQuotes
	require.False(t, open)

	select {
	case q := <-newQuotes:
		require.Equal(t, "ethereum", q.ChainPluginID)
	case <-time.After(2 * time.Second):
		t.Fatal("no quote for the new asset")
	}

	close(release)
	require.Never(t, func() bool {
		current, _ := s.Current()
		return current.ChainPluginID != "ethereum" || len(newQuotes) > 0
	}, 50*time.Millisecond, 5*time.Millisecond)
}

func TestSynchronizerLaterFetchWins(t *testing.T) {
	s := NewSynchronizer(&fakeProvider{}, fastOptions(), nil)
	r := &run{asset: bitcoin, cancel: func() {}, quotes: make(chan domain.RateQuote, 1)}
	s.run = r

	earlier := s.issue(r)
	later := s.issue(r)

	require.True(t, s.publish(r, later, quoteFor(bitcoin, "41000")))
	require.False(t, s.publish(r, earlier, quoteFor(bitcoin, "40000")))

	current, ok := s.Current()
	require.True(t, ok)
	require.Equal(t, "41000", current.Rate.String())

	q := <-r.quotes
	require.Equal(t, "41000", q.Rate.String())
	require.Empty(t, r.quotes)
}

func TestSynchronizerSchemaErrorKeepsLastQuote(t *testing.T) {
	opts := fastOptions()
	opts.RefreshInterval = 10 * time.Millisecond

	p := &fakeProvider{fetch: func(_ context.Context, call int, asset domain.Asset) (domain.RateQuote, error) {
		if call == 1 {
			return quoteFor(asset, "40000"), nil
		}
		return domain.RateQuote{}, &domain.SchemaError{Reason: "rate missing"}
	}}
	s := NewSynchronizer(p, opts, nil)
	defer s.Stop()

	quotes := s.Start(context.Background(), bitcoin)
	<-quotes

	require.Eventually(t, func() bool { return p.Calls() >= 4 }, 2*time.Second, 5*time.Millisecond)

	current, ok := s.Current()
	require.True(t, ok)
	require.Equal(t, "40000", current.Rate.String())
	require.Empty(t, quotes)
}

func TestSynchronizerSchemaErrorIsNotRetried(t *testing.T) {
	p := &fakeProvider{fetch: func(context.Context, int, domain.Asset) (domain.RateQuote, error) {
		return domain.RateQuote{}, &domain.SchemaError{Reason: "not json"}
	}}
	s := NewSynchronizer(p, fastOptions(), nil)
	defer s.Stop()

	s.Start(context.Background(), bitcoin)

	require.Eventually(t, func() bool { return p.Calls() == 1 }, time.Second, time.Millisecond)
	require.Never(t, func() bool { return p.Calls() > 1 }, 50*time.Millisecond, 5*time.Millisecond)
	_, ok := s.Current()
	require.False(t, ok)
}

func TestSynchronizerParentContextClosesChannel(t *testing.T) {
	p := &fakeProvider{fetch: func(_ context.Context, _ int, asset domain.Asset) (domain.RateQuote, error) {
		return quoteFor(asset, "1"), nil
	}}
	s := NewSynchronizer(p, fastOptions(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	quotes := s.Start(ctx, bitcoin)
	<-quotes
	cancel()

	require.Eventually(t, func() bool {
		select {
		case _, open := <-quotes:
			return !open
		default:
			return false
		}
	}, time.Second, time.Millisecond)

	s.Stop()
}

func TestRetryDelayIsLinear(t *testing.T) {
	base := 5 * time.Second
	for attempt := 1; attempt <= 5; attempt++ {
		require.Equal(t, time.Duration(attempt)*base, RetryDelay(base, attempt))
	}
}

type recorder struct {
	mu       sync.Mutex
	outcomes []string
	retries  int
	failed   int
	quotes   int
}

func (r *recorder) RecordFetch(_, _, outcome string, _ float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func (r *recorder) RecordRetry(string, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.retries++
}

func (r *recorder) RecordCycleFailed(string, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed++
}

func (r *recorder) RecordQuote(string, float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.quotes++
}

type capturePublisher struct {
	mu     sync.Mutex
	quotes []domain.RateQuote
}

func (c *capturePublisher) PublishQuote(_ context.Context, q domain.RateQuote) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.quotes = append(c.quotes, q)
	return nil
}

func (c *capturePublisher) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.quotes)
}

func TestSynchronizerReportsTelemetry(t *testing.T) {
	p := &fakeProvider{fetch: func(_ context.Context, call int, asset domain.Asset) (domain.RateQuote, error) {
		if call == 1 {
			return domain.RateQuote{}, &domain.TransportError{StatusCode: 502}
		}
		return quoteFor(asset, "3"), nil
	}}
	rec := &recorder{}
	pub := &capturePublisher{}
	s := NewSynchronizer(p, fastOptions(), nil).WithRecorder(rec).WithPublisher(pub)
	defer s.Stop()

	<-s.Start(context.Background(), bitcoin)
	require.Eventually(t, func() bool { return pub.Len() == 1 }, time.Second, time.Millisecond)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Equal(t, []string{"transport", "success"}, rec.outcomes)
	require.Equal(t, 1, rec.retries)
	require.Equal(t, 0, rec.failed)
	require.Equal(t, 1, rec.quotes)
}
