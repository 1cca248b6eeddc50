package billing

import (
	"context"

	"github.com/plfog/backoffice/internal/domain/billing"
	"github.com/plfog/backoffice/internal/domain/identity"
	"go.uber.org/zap"
)

// Metrics receives billing activity counts
type Metrics interface {
	OrdersBilled(ctx context.Context, n int)
	InvoiceCreated(ctx context.Context, source string)
	StripeFailure(ctx context.Context, operation string)
	PayoutCreated(ctx context.Context, payeeType string, cents int64)
}

type noopMetrics struct{}

func (noopMetrics) OrdersBilled(context.Context, int)            {}
func (noopMetrics) InvoiceCreated(context.Context, string)       {}
func (noopMetrics) StripeFailure(context.Context, string)        {}
func (noopMetrics) PayoutCreated(context.Context, string, int64) {}

// Invoice sources reported to Metrics
const (
	SourceLocal  = "local"
	SourceStripe = "stripe"
)

// InvoiceService turns a user's orders into an invoice, through Stripe when
// a gateway is configured and locally otherwise
type InvoiceService struct {
	gateway     billing.InvoiceGateway
	invoiceRepo billing.InvoiceRepository
	metrics     Metrics
	logger      *zap.Logger
}

// NewInvoiceService creates an invoice service. gateway may be nil, which
// means no Stripe key is configured. metrics may be nil.
func NewInvoiceService(
	gateway billing.InvoiceGateway,
	invoiceRepo billing.InvoiceRepository,
	metrics Metrics,
	logger *zap.Logger,
) *InvoiceService {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &InvoiceService{
		gateway:     gateway,
		invoiceRepo: invoiceRepo,
		metrics:     metrics,
		logger:      logger,
	}
}

// StripeEnabled reports whether invoices go through the payment provider
func (s *InvoiceService) StripeEnabled() bool {
	return s.gateway != nil
}

// CreateInvoiceForUser bills orders to user.
//
// A payment provider failure is logged and reported as (nil, nil): there is
// no invoice, the orders stay on the tab, and any items already created
// for this attempt are deleted. Errors are returned only when
// the local invoice cannot be stored.
func (s *InvoiceService) CreateInvoiceForUser(ctx context.Context, user *identity.User, orders []billing.Order) (*billing.Invoice, error) {
	if s.gateway == nil {
		s.logger.Warn("No Stripe key configured, creating local invoice",
			zap.String("username", user.Username))
		return s.saveInvoice(ctx, billing.NewOpenInvoice(user.ID, orders), SourceLocal)
	}

	customer, op, err := s.customerFor(ctx, user)
	if err != nil {
		return s.gatewayFailed(ctx, user, op, err)
	}

	items := make([]string, 0, len(orders))
	for _, o := range orders {
		id, err := s.gateway.CreateInvoiceItem(ctx, customer.ID, o.Amount, o.Description)
		if err != nil {
			s.discardItems(ctx, user, items)
			return s.gatewayFailed(ctx, user, "create_invoice_item", err)
		}
		items = append(items, id)
	}

	remote, err := s.gateway.CreateAndFinalizeInvoice(ctx, customer.ID)
	if err != nil {
		s.discardItems(ctx, user, items)
		return s.gatewayFailed(ctx, user, "create_invoice", err)
	}

	invoice := billing.NewOpenInvoice(user.ID, orders)
	invoice.StripeInvoiceID = remote.ID
	invoice.PDFURL = remote.PDFURL
	return s.saveInvoice(ctx, invoice, SourceStripe)
}

func (s *InvoiceService) customerFor(ctx context.Context, user *identity.User) (*billing.Customer, string, error) {
	customer, err := s.gateway.FindCustomerByEmail(ctx, user.Email)
	if err != nil {
		return nil, "list_customers", err
	}
	if customer != nil {
		return customer, "", nil
	}
	customer, err = s.gateway.CreateCustomer(ctx, user.Email, user.DisplayName())
	if err != nil {
		return nil, "create_customer", err
	}
	s.logger.Info("Created Stripe customer",
		zap.String("username", user.Username),
		zap.String("customer_id", customer.ID))
	return customer, "", nil
}

// discardItems deletes the items created by a failed attempt. Left
// pending, they would be swept into the next invoice for the customer
// alongside the items of the retry.
func (s *InvoiceService) discardItems(ctx context.Context, user *identity.User, items []string) {
	for _, id := range items {
		if err := s.gateway.DeleteInvoiceItem(ctx, id); err != nil {
			s.metrics.StripeFailure(ctx, "delete_invoice_item")
			s.logger.Error("Failed to delete Stripe invoice item",
				zap.String("username", user.Username),
				zap.String("item_id", id),
				zap.Error(err))
		}
	}
}

func (s *InvoiceService) gatewayFailed(ctx context.Context, user *identity.User, op string, err error) (*billing.Invoice, error) {
	s.metrics.StripeFailure(ctx, op)
	s.logger.Error("Stripe error creating invoice",
		zap.String("username", user.Username),
		zap.String("operation", op),
		zap.Error(err))
	return nil, nil
}

func (s *InvoiceService) saveInvoice(ctx context.Context, invoice *billing.Invoice, source string) (*billing.Invoice, error) {
	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		s.logger.Error("Failed to save invoice", zap.String("user_id", invoice.UserID.String()), zap.Error(err))
		return nil, err
	}
	s.metrics.InvoiceCreated(ctx, source)
	s.logger.Info("Invoice created",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("source", source),
		zap.Int64("amount_due", invoice.AmountDue))
	return invoice, nil
}
