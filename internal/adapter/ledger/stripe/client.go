// Package stripe implements ports.LedgerClient on Stripe Connect.
package stripe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"escrow-settlement/config"
	"escrow-settlement/internal/core/domain"
	"escrow-settlement/internal/core/ports"

	"github.com/rs/zerolog"
	stripego "github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
)

const currency = "usd"

// Client implements ports.LedgerClient. Every call carries the caller's
// idempotency key so a retried operation gets Stripe's recorded response.
type Client struct {
	api *client.API
	log zerolog.Logger
}

// NewClient builds a Stripe client from config. A non-empty APIURL points the
// backend elsewhere (stripe-mock, tests). Network retries are left to callers.
func NewClient(cfg config.StripeConfig, httpClient *http.Client, log zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	backendCfg := &stripego.BackendConfig{
		HTTPClient:        httpClient,
		MaxNetworkRetries: stripego.Int64(0),
		LeveledLogger:     &leveledLogger{log: log},
	}
	if cfg.APIURL != "" {
		backendCfg.URL = stripego.String(cfg.APIURL)
	}

	api := &client.API{}
	api.Init(cfg.SecretKey, &stripego.Backends{
		API:     stripego.GetBackendWithConfig(stripego.APIBackend, backendCfg),
		Connect: stripego.GetBackendWithConfig(stripego.ConnectBackend, backendCfg),
		Uploads: stripego.GetBackendWithConfig(stripego.UploadsBackend, backendCfg),
	})
	return &Client{api: api, log: log.With().Str("component", "stripe").Logger()}
}

// Refund refunds part of a charge. Refs starting with pi_ are payment intents.
func (c *Client) Refund(ctx context.Context, req ports.LedgerRefundRequest) (*ports.LedgerRefundResult, error) {
	params := &stripego.RefundParams{Amount: stripego.Int64(req.AmountCents)}
	if strings.HasPrefix(req.ChargeRef, "pi_") {
		params.PaymentIntent = stripego.String(req.ChargeRef)
	} else {
		params.Charge = stripego.String(req.ChargeRef)
	}
	params.Context = ctx
	params.SetIdempotencyKey(req.IdempotencyKey)

	r, err := c.api.Refunds.New(params)
	if err != nil {
		return nil, c.wrap("refund", req.IdempotencyKey, err)
	}
	c.log.Debug().Str("refund_id", r.ID).Str("status", string(r.Status)).Msg("refund created")
	return &ports.LedgerRefundResult{RefundID: r.ID, Status: string(r.Status)}, nil
}

// Transfer moves funds to a connected account, or from one when FromAccountRef is set.
// A payment intent source is resolved to its latest charge, since transfers only
// take a charge as source_transaction.
func (c *Client) Transfer(ctx context.Context, req ports.LedgerTransferRequest) (*ports.LedgerTransferResult, error) {
	params := &stripego.TransferParams{
		Amount:      stripego.Int64(req.AmountCents),
		Currency:    stripego.String(currency),
		Destination: stripego.String(req.DestinationAccountRef),
	}
	if req.SourceRef != "" {
		source, err := c.sourceCharge(ctx, req.SourceRef)
		if err != nil {
			return nil, err
		}
		params.SourceTransaction = stripego.String(source)
	}
	if req.FromAccountRef != "" {
		params.SetStripeAccount(req.FromAccountRef)
	}
	params.Context = ctx
	params.SetIdempotencyKey(req.IdempotencyKey)

	t, err := c.api.Transfers.New(params)
	if err != nil {
		return nil, c.wrap("transfer", req.IdempotencyKey, err)
	}
	c.log.Debug().Str("transfer_id", t.ID).Int64("amount", t.Amount).Msg("transfer created")
	return &ports.LedgerTransferResult{TransferID: t.ID}, nil
}

// Payout pays out from the connected account's balance to its external account.
func (c *Client) Payout(ctx context.Context, req ports.LedgerPayoutRequest) (*ports.LedgerPayoutResult, error) {
	method := stripego.PayoutMethodStandard
	if req.Method == domain.PayoutMethodInstant {
		method = stripego.PayoutMethodInstant
	}
	params := &stripego.PayoutParams{
		Amount:   stripego.Int64(req.AmountCents),
		Currency: stripego.String(currency),
		Method:   stripego.String(string(method)),
	}
	params.Context = ctx
	params.SetStripeAccount(req.DestinationAccountRef)
	params.SetIdempotencyKey(req.IdempotencyKey)

	p, err := c.api.Payouts.New(params)
	if err != nil {
		return nil, c.wrap("payout", req.IdempotencyKey, err)
	}
	c.log.Debug().Str("payout_id", p.ID).Str("status", string(p.Status)).Msg("payout created")
	return &ports.LedgerPayoutResult{PayoutID: p.ID, Status: string(p.Status)}, nil
}

func (c *Client) sourceCharge(ctx context.Context, ref string) (string, error) {
	if !strings.HasPrefix(ref, "pi_") {
		return ref, nil
	}
	params := &stripego.PaymentIntentParams{}
	params.Context = ctx
	pi, err := c.api.PaymentIntents.Get(ref, params)
	if err != nil {
		return "", c.wrap("payment intent lookup", ref, err)
	}
	if pi.LatestCharge == nil || pi.LatestCharge.ID == "" {
		return "", fmt.Errorf("%w: payment intent %s has no charge", ports.ErrLedgerDeclined, ref)
	}
	return pi.LatestCharge.ID, nil
}

// wrap logs Stripe's error details and returns an error naming the operation.
// Client errors other than conflicts and rate limits are definite refusals and
// wrap ports.ErrLedgerDeclined.
func (c *Client) wrap(op, key string, err error) error {
	var se *stripego.Error
	if errors.As(err, &se) {
		c.log.Warn().
			Str("op", op).
			Str("idempotency_key", key).
			Str("type", string(se.Type)).
			Str("code", string(se.Code)).
			Int("http_status", se.HTTPStatusCode).
			Str("request_id", se.RequestID).
			Msg(se.Msg)
		if refused(se.HTTPStatusCode) {
			return fmt.Errorf("stripe %s: %s (%s): %w: %w", op, se.Msg, se.Code, ports.ErrLedgerDeclined, err)
		}
		return fmt.Errorf("stripe %s: %s (%s): %w", op, se.Msg, se.Code, err)
	}
	c.log.Warn().Err(err).Str("op", op).Str("idempotency_key", key).Msg("stripe call failed")
	return fmt.Errorf("stripe %s: %w", op, err)
}

func refused(status int) bool {
	switch status {
	case http.StatusConflict, http.StatusTooManyRequests:
		return false
	}
	return status >= 400 && status < 500
}

// leveledLogger routes stripe-go's internal logging to zerolog.
type leveledLogger struct {
	log zerolog.Logger
}

func (l *leveledLogger) Debugf(format string, v ...interface{}) { l.log.Debug().Msgf(format, v...) }
func (l *leveledLogger) Infof(format string, v ...interface{})  { l.log.Debug().Msgf(format, v...) }
func (l *leveledLogger) Warnf(format string, v ...interface{})  { l.log.Warn().Msgf(format, v...) }
func (l *leveledLogger) Errorf(format string, v ...interface{}) { l.log.Error().Msgf(format, v...) }
