package gateway

import (
	"context"
	"errors"
	"log"

	"creomart/internal/config"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/client"
)

// StripeProcessor implements Processor over the Stripe API. The API key is
// injected through config at construction; nothing reads process globals.
type StripeProcessor struct {
	api      *client.API
	currency string
}

func NewStripeProcessor(cfg *config.Stripe) *StripeProcessor {
	if cfg == nil || cfg.SecretKey == "" {
		panic("stripe config with secret key is required")
	}
	api := &client.API{}
	api.Init(cfg.SecretKey, nil)

	currency := cfg.Currency
	if currency == "" {
		currency = "usd"
	}
	return &StripeProcessor{api: api, currency: currency}
}

func (p *StripeProcessor) InitiateDeposit(ctx context.Context, amount decimal.Decimal, reference string) (*DepositIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(toCents(amount)),
		Currency: stripe.String(p.currency),
	}
	params.Context = ctx
	params.IdempotencyKey = stripe.String(reference)
	params.AddMetadata("reference", reference)

	pi, err := p.api.PaymentIntents.New(params)
	if err != nil {
		return nil, wrapStripeErr(err)
	}
	return &DepositIntent{
		ExternalID:   pi.ID,
		ClientSecret: pi.ClientSecret,
	}, nil
}

func (p *StripeProcessor) ConfirmDeposit(ctx context.Context, externalID string) (*DepositOutcome, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := p.api.PaymentIntents.Get(externalID, params)
	if err != nil {
		return nil, wrapStripeErr(err)
	}

	outcome := &DepositOutcome{ExternalID: pi.ID}
	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		outcome.State = OutcomeSucceeded
	case stripe.PaymentIntentStatusCanceled:
		outcome.State = OutcomeFailed
		outcome.FailureReason = "payment intent canceled"
	default:
		outcome.State = OutcomePending
	}
	if pi.LastPaymentError != nil {
		outcome.FailureReason = pi.LastPaymentError.Msg
	}
	return outcome, nil
}

func (p *StripeProcessor) InitiateWithdrawal(ctx context.Context, amount decimal.Decimal, dest Destination, reference string) (string, error) {
	if dest.AccountID == "" {
		return "", &ProcessorError{Message: "payment method has no payout destination"}
	}

	params := &stripe.TransferParams{
		Amount:      stripe.Int64(toCents(amount)),
		Currency:    stripe.String(p.currency),
		Destination: stripe.String(dest.AccountID),
	}
	params.Context = ctx
	params.IdempotencyKey = stripe.String(reference)
	params.AddMetadata("reference", reference)

	tr, err := p.api.Transfers.New(params)
	if err != nil {
		return "", wrapStripeErr(err)
	}
	return tr.ID, nil
}

// toCents converts a decimal amount in major units to the processor's
// integer minor units.
func toCents(amount decimal.Decimal) int64 {
	return amount.Round(2).Shift(2).IntPart()
}

func wrapStripeErr(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return &ProcessorError{
			Code:    string(stripeErr.Code),
			Message: stripeErr.Msg,
			Err:     err,
		}
	}
	log.Printf("unexpected processor error: %v", err)
	return &ProcessorError{Message: err.Error(), Err: err}
}
