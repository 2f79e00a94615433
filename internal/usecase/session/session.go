package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/LavaJover/shvark-kiosk-service/internal/domain"
	"github.com/LavaJover/shvark-kiosk-service/internal/usecase/payment"
	"github.com/LavaJover/shvark-kiosk-service/internal/usecase/rates"
)

// Recorder counts payment requests built for rendering, by uri type and outcome.
type Recorder interface {
	RecordPaymentRequest(uriType, outcome string)
}

// Session is one customer's visit to the payment screen. It owns a synchronizer
// for the selected asset and recomputes the payment request whenever the quote
// or the fiat quantity changes.
type Session struct {
	id       string
	sync     *rates.Synchronizer
	logger   *slog.Logger
	recorder Recorder

	mu         sync.Mutex
	ctx        context.Context
	asset      domain.Asset
	quantity   int
	quote      *domain.RateQuote
	generation uint64
	updates    chan domain.SessionUpdate
	closed     bool
}

func New(id string, synchronizer *rates.Synchronizer, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		id:       id,
		sync:     synchronizer,
		logger:   logger.With("session_id", id),
		quantity: domain.MinFiatQuantity,
		updates:  make(chan domain.SessionUpdate, 1),
	}
}

func (s *Session) WithRecorder(r Recorder) *Session {
	s.recorder = r
	return s
}

func (s *Session) ID() string { return s.id }

// Updates streams the newest screen state; intermediate states a slow reader
// missed are dropped. The channel is closed by Close.
func (s *Session) Updates() <-chan domain.SessionUpdate {
	return s.updates
}

// Start selects the first asset. An asset whose uri type cannot be encoded is
// rejected before any rate is fetched.
func (s *Session) Start(ctx context.Context, asset domain.Asset, quantity int) error {
	if err := validateQuantity(quantity); err != nil {
		return err
	}
	s.mu.Lock()
	s.ctx = ctx
	s.quantity = quantity
	s.mu.Unlock()
	return s.SetAsset(asset)
}

// SetAsset switches the session to another asset. The previous synchronizer run
// is retired before the new one starts, and the screen goes back to loading.
func (s *Session) SetAsset(asset domain.Asset) error {
	if _, err := payment.ParseScheme(asset); err != nil {
		s.recordRequest(asset, "invalid_asset")
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSessionClosed
	}
	ctx := s.ctx
	if ctx == nil {
		ctx = context.Background()
		s.ctx = ctx
	}
	s.generation++
	gen := s.generation
	s.asset = asset
	s.quote = nil
	quotes := s.sync.Start(ctx, asset)
	s.emitLocked()
	s.mu.Unlock()

	s.logger.Info("Session asset selected", "asset", asset.ChainPluginID, "token", asset.Token(), "currency", asset.CurrencyCode)
	go s.forward(gen, quotes)
	return nil
}

func (s *Session) SetQuantity(quantity int) error {
	if err := validateQuantity(quantity); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrSessionClosed
	}
	s.quantity = quantity
	s.emitLocked()
	return nil
}

// Snapshot returns the current screen state without consuming Updates.
func (s *Session) Snapshot() domain.SessionUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Close stops the synchronizer and ends the update stream. It is safe to call twice.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.generation++
	s.sync.Stop()
	close(s.updates)
	s.logger.Info("Session closed")
}

func (s *Session) forward(gen uint64, quotes <-chan domain.RateQuote) {
	for q := range quotes {
		s.mu.Lock()
		if s.closed || s.generation != gen {
			s.mu.Unlock()
			return
		}
		quote := q
		s.quote = &quote
		s.emitLocked()
		s.mu.Unlock()
	}
}

func (s *Session) emitLocked() {
	if s.closed {
		return
	}
	update := s.snapshotLocked()
	switch update.State {
	case domain.SessionReady:
		s.recordRequest(s.asset, "success")
	case domain.SessionError:
		s.recordRequest(s.asset, "error")
		s.logger.Error("Failed to build payment request", "asset", s.asset.ChainPluginID, "error", update.Error)
	}
	select {
	case <-s.updates:
	default:
	}
	s.updates <- update
}

func (s *Session) snapshotLocked() domain.SessionUpdate {
	update := domain.SessionUpdate{
		SessionID: s.id,
		AssetID:   s.asset.ID,
		State:     domain.SessionLoading,
		Quantity:  s.quantity,
		Title:     payment.Title(s.asset),
		IconURL:   payment.IconURL(s.asset),
	}
	if s.asset.HasToken() {
		update.ChainIconURL = payment.ChainIconURL(s.asset)
	}
	if s.quote == nil {
		return update
	}

	req, err := payment.BuildPaymentRequest(s.asset, s.quote.UnitPrice, s.quantity)
	if err != nil {
		update.State = domain.SessionError
		update.Error = err.Error()
		return update
	}

	update.State = domain.SessionReady
	update.DisplayAmount = req.DisplayAmount
	update.URI = req.URI
	update.Label = payment.Label(s.quantity, req.DisplayAmount, s.asset.CurrencyCode)
	return update
}

func (s *Session) recordRequest(asset domain.Asset, outcome string) {
	if s.recorder != nil {
		s.recorder.RecordPaymentRequest(string(asset.URIType), outcome)
	}
}

func validateQuantity(quantity int) error {
	if quantity < domain.MinFiatQuantity || quantity > domain.MaxFiatQuantity {
		return fmt.Errorf("%w: %d", domain.ErrInvalidQuantity, quantity)
	}
	return nil
}
