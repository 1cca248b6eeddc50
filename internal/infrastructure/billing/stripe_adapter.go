package billing

import (
	"context"
	"fmt"

	domain "github.com/plfog/backoffice/internal/domain/billing"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"go.uber.org/zap"
)

// StripeGateway implements domain.InvoiceGateway on the Stripe API
type StripeGateway struct {
	config *StripeConfig
	api    *client.API
	logger *zap.Logger
}

var _ domain.InvoiceGateway = (*StripeGateway)(nil)

// NewStripeGateway creates a gateway bound to the configured key. The
// process-wide stripe backend is captured at construction.
func NewStripeGateway(config *StripeConfig, logger *zap.Logger) (*StripeGateway, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	api := &client.API{}
	api.Init(config.SecretKey, nil)

	return &StripeGateway{
		config: config,
		api:    api,
		logger: logger,
	}, nil
}

// FindCustomerByEmail returns the first customer with the email, or nil
func (g *StripeGateway) FindCustomerByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	params := &stripe.CustomerListParams{Email: stripe.String(email)}
	params.Limit = stripe.Int64(1)
	params.Context = ctx

	iter := g.api.Customers.List(params)
	if iter.Next() {
		c := iter.Customer()
		return &domain.Customer{ID: c.ID, Email: c.Email, Name: c.Name}, nil
	}
	if err := iter.Err(); err != nil {
		g.logger.Error("Failed to list Stripe customers", zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to list customers: %w", err)
	}
	return nil, nil
}

// CreateCustomer creates a new customer in Stripe
func (g *StripeGateway) CreateCustomer(ctx context.Context, email, name string) (*domain.Customer, error) {
	g.logger.Debug("Creating Stripe customer", zap.String("email", email))

	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
	}
	params.Context = ctx

	c, err := g.api.Customers.New(params)
	if err != nil {
		g.logger.Error("Failed to create Stripe customer",
			zap.String("email", email),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to create customer: %w", err)
	}

	g.logger.Info("Created Stripe customer", zap.String("customer_id", c.ID))
	return &domain.Customer{ID: c.ID, Email: c.Email, Name: c.Name}, nil
}

// CreateInvoiceItem adds a pending item of amount cents to the customer
func (g *StripeGateway) CreateInvoiceItem(ctx context.Context, customerID string, amount int64, description string) (string, error) {
	params := &stripe.InvoiceItemParams{
		Customer:    stripe.String(customerID),
		Amount:      stripe.Int64(amount),
		Currency:    stripe.String(g.config.Currency),
		Description: stripe.String(description),
	}
	params.Context = ctx

	item, err := g.api.InvoiceItems.New(params)
	if err != nil {
		g.logger.Error("Failed to create Stripe invoice item",
			zap.String("customer_id", customerID),
			zap.Error(err))
		return "", fmt.Errorf("stripe: failed to create invoice item: %w", err)
	}
	return item.ID, nil
}

// DeleteInvoiceItem deletes a pending or draft invoice item
func (g *StripeGateway) DeleteInvoiceItem(ctx context.Context, itemID string) error {
	params := &stripe.InvoiceItemParams{}
	params.Context = ctx

	if _, err := g.api.InvoiceItems.Del(itemID, params); err != nil {
		return fmt.Errorf("stripe: failed to delete invoice item %s: %w", itemID, err)
	}
	return nil
}

// CreateAndFinalizeInvoice gathers the customer's pending items into an
// auto-advancing invoice and finalizes it. A draft that fails to finalize
// is deleted so it cannot auto-advance later.
func (g *StripeGateway) CreateAndFinalizeInvoice(ctx context.Context, customerID string) (*domain.ProviderInvoice, error) {
	params := &stripe.InvoiceParams{
		Customer:                    stripe.String(customerID),
		AutoAdvance:                 stripe.Bool(true),
		PendingInvoiceItemsBehavior: stripe.String("include"),
	}
	params.Context = ctx

	inv, err := g.api.Invoices.New(params)
	if err != nil {
		g.logger.Error("Failed to create Stripe invoice",
			zap.String("customer_id", customerID),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to create invoice: %w", err)
	}

	finalizeParams := &stripe.InvoiceFinalizeInvoiceParams{}
	finalizeParams.Context = ctx
	finalized, err := g.api.Invoices.FinalizeInvoice(inv.ID, finalizeParams)
	if err != nil {
		g.logger.Error("Failed to finalize Stripe invoice",
			zap.String("invoice_id", inv.ID),
			zap.Error(err))
		g.discardDraft(ctx, inv.ID)
		return nil, fmt.Errorf("stripe: failed to finalize invoice: %w", err)
	}

	g.logger.Info("Finalized Stripe invoice",
		zap.String("invoice_id", finalized.ID),
		zap.String("status", string(finalized.Status)))

	return &domain.ProviderInvoice{
		ID:     finalized.ID,
		PDFURL: finalized.InvoicePDF,
		Status: string(finalized.Status),
	}, nil
}

func (g *StripeGateway) discardDraft(ctx context.Context, invoiceID string) {
	params := &stripe.InvoiceParams{}
	params.Context = ctx
	if _, err := g.api.Invoices.Del(invoiceID, params); err != nil {
		g.logger.Warn("Failed to delete Stripe draft invoice",
			zap.String("invoice_id", invoiceID),
			zap.Error(err))
	}
}
