package services

import (
	"context"
	"log/slog"
	"time"

	"firebase.google.com/go/v4/messaging"
	"golang.org/x/sync/errgroup"

	"github.com/CyberwizD/push-relay/internal/apperror"
	"github.com/CyberwizD/push-relay/internal/models"
	"github.com/CyberwizD/push-relay/pkg/metrics"
)

// ErrNotInitialized is the client-facing message when no messenger is configured.
const ErrNotInitialized = "Firebase not initialized. Check server logs."

const suppressedMessage = "token suppressed: previously reported unregistered"

// DispatcherConfig tunes a Dispatcher. Zero values select defaults.
type DispatcherConfig struct {
	Concurrency int
	Timeout     time.Duration
	Cache       TokenCache
	SuppressTTL time.Duration
	Metrics     *metrics.Collector
	Now         func() time.Time
}

// Dispatcher turns validated requests into provider calls. Every provider
// call is issued exactly once; failures are reported, never retried.
type Dispatcher struct {
	messenger   Messenger
	cache       TokenCache
	suppressTTL time.Duration
	concurrency int
	timeout     time.Duration
	metrics     *metrics.Collector
	logger      *slog.Logger
	now         func() time.Time
}

// NewDispatcher creates a Dispatcher. messenger may be nil, in which case
// every send fails with an unavailable error.
func NewDispatcher(messenger Messenger, logger *slog.Logger, cfg DispatcherConfig) *Dispatcher {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.New()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Dispatcher{
		messenger:   messenger,
		cache:       cfg.Cache,
		suppressTTL: cfg.SuppressTTL,
		concurrency: cfg.Concurrency,
		timeout:     cfg.Timeout,
		metrics:     cfg.Metrics,
		logger:      logger,
		now:         cfg.Now,
	}
}

// Available reports whether a messenger was initialized.
func (d *Dispatcher) Available() bool {
	return d.messenger != nil
}

// SendEach issues one provider call per token. Results keep input order.
func (d *Dispatcher) SendEach(ctx context.Context, req *models.NotificationRequest) (models.SendResults, error) {
	if !d.Available() {
		return models.SendResults{}, apperror.Unavailable(ErrNotInitialized)
	}

	d.logger.Info("sending notification",
		slog.Int("tokens", len(req.Tokens)),
		slog.String("title", req.Title),
	)

	details := make([]models.DeliveryResult, len(req.Tokens))
	var g errgroup.Group
	g.SetLimit(d.concurrency)
	for i, token := range req.Tokens {
		i, token := i, token
		g.Go(func() error {
			details[i] = d.sendOne(ctx, token, req)
			return nil
		})
	}
	_ = g.Wait()

	results := models.NewSendResults(details)
	d.logger.Info("notification results",
		slog.Int("successful", results.Successful),
		slog.Int("failed", results.Failed),
	)
	return results, nil
}

// sendOne delivers req to a single token and captures the outcome.
func (d *Dispatcher) sendOne(ctx context.Context, token string, req *models.NotificationRequest) models.DeliveryResult {
	redacted := models.RedactToken(token)
	if d.isSuppressed(ctx, token) {
		d.metrics.IncFailed()
		d.logger.Warn("skipping suppressed token", slog.String("token", redacted))
		return models.Undelivered(token, suppressedMessage)
	}

	callCtx, cancel := d.callContext(ctx)
	defer cancel()

	id, err := d.messenger.Send(callCtx, BuildStandardMessage(token, req))
	if err != nil {
		d.metrics.IncFailed()
		d.noteFailure(ctx, token, err)
		d.logger.Warn("send failed", slog.String("token", redacted), slog.Any("error", err))
		return models.Undelivered(token, err.Error())
	}

	d.metrics.IncDelivered()
	d.logger.Debug("send succeeded", slog.String("token", redacted), slog.String("message_id", id))
	return models.Delivered(token, id)
}

// SendMulticast issues a single multicast call for all tokens.
func (d *Dispatcher) SendMulticast(ctx context.Context, req *models.NotificationRequest) (models.SendResults, error) {
	if !d.Available() {
		return models.SendResults{}, apperror.Unavailable(ErrNotInitialized)
	}
	if len(req.Tokens) > models.MaxMulticastTokens {
		return models.SendResults{}, apperror.Validation("too many tokens: max 500 per multicast request")
	}

	d.logger.Info("sending multicast notification", slog.Int("tokens", len(req.Tokens)))

	callCtx, cancel := d.callContext(ctx)
	defer cancel()

	resp, err := d.messenger.SendEachForMulticast(callCtx, BuildMulticastMessage(req))
	if err != nil {
		d.logger.Error("multicast send failed", slog.Any("error", err))
		return models.SendResults{}, apperror.Provider(err)
	}

	details := make([]models.DeliveryResult, len(req.Tokens))
	for i, token := range req.Tokens {
		if i >= len(resp.Responses) || resp.Responses[i] == nil {
			d.metrics.IncFailed()
			details[i] = models.Undelivered(token, "no response from provider")
			continue
		}
		details[i] = d.multicastResult(ctx, token, resp.Responses[i])
	}

	results := models.NewSendResults(details)
	d.logger.Info("multicast results",
		slog.Int("successful", results.Successful),
		slog.Int("failed", results.Failed),
	)
	return results, nil
}

func (d *Dispatcher) multicastResult(ctx context.Context, token string, res *messaging.SendResponse) models.DeliveryResult {
	if res.Success {
		d.metrics.IncDelivered()
		return models.Delivered(token, res.MessageID)
	}
	d.metrics.IncFailed()
	errMsg := "unknown provider error"
	if res.Error != nil {
		errMsg = res.Error.Error()
		d.noteFailure(ctx, token, res.Error)
	}
	return models.Undelivered(token, errMsg)
}

// NotifyCall sends an incoming-call alert and returns the provider message
// id together with the data payload that was sent.
func (d *Dispatcher) NotifyCall(ctx context.Context, req *models.CallNotificationRequest) (string, map[string]string, error) {
	if !d.Available() {
		return "", nil, apperror.Unavailable(ErrNotInitialized)
	}

	d.logger.Info("sending call notification",
		slog.String("caller_id", req.CallerID),
		slog.String("call_type", req.CallType),
		slog.String("token", models.RedactToken(req.TargetToken)),
	)

	data := CallPayload(req, d.now())
	id, err := d.send(ctx, req.TargetToken, BuildCallMessage(req, data))
	if err != nil {
		return "", nil, err
	}
	return id, data, nil
}

// CancelCall sends a data-only message withdrawing a prior call alert.
func (d *Dispatcher) CancelCall(ctx context.Context, req *models.CancelCallRequest) (string, error) {
	if !d.Available() {
		return "", apperror.Unavailable(ErrNotInitialized)
	}

	d.logger.Info("cancelling call notification",
		slog.String("call_id", req.CallID),
		slog.String("token", models.RedactToken(req.TargetToken)),
	)
	return d.send(ctx, req.TargetToken, BuildCancelMessage(req, d.now()))
}

func (d *Dispatcher) send(ctx context.Context, token string, msg *messaging.Message) (string, error) {
	callCtx, cancel := d.callContext(ctx)
	defer cancel()

	id, err := d.messenger.Send(callCtx, msg)
	if err != nil {
		d.metrics.IncFailed()
		d.noteFailure(ctx, token, err)
		d.logger.Warn("send failed", slog.String("token", models.RedactToken(token)), slog.Any("error", err))
		if isRecipientRejection(err) {
			return "", apperror.Rejected(err)
		}
		return "", apperror.Provider(err)
	}
	d.metrics.IncDelivered()
	return id, nil
}

func (d *Dispatcher) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d.timeout)
}

func (d *Dispatcher) isSuppressed(ctx context.Context, token string) bool {
	if d.cache == nil {
		return false
	}
	suppressed, err := d.cache.IsTokenSuppressed(ctx, token)
	if err != nil {
		d.logger.Warn("token suppression lookup failed", slog.Any("error", err))
		return false
	}
	return suppressed
}

func (d *Dispatcher) noteFailure(ctx context.Context, token string, err error) {
	if d.cache == nil || !isTokenFatal(err) {
		return
	}
	if cacheErr := d.cache.SuppressToken(ctx, token, d.suppressTTL); cacheErr != nil {
		d.logger.Warn("failed to suppress token", slog.Any("error", cacheErr))
	}
}

func isTokenFatal(err error) bool {
	return messaging.IsUnregistered(err) || messaging.IsSenderIDMismatch(err)
}

// isRecipientRejection reports errors caused by the addressed token or
// payload rather than by the provider being unreachable.
func isRecipientRejection(err error) bool {
	return isTokenFatal(err) || messaging.IsInvalidArgument(err)
}
