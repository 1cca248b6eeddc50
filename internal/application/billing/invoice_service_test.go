package billing

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/plfog/backoffice/internal/domain/billing"
	"github.com/plfog/backoffice/internal/domain/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestUser(t *testing.T, username, first, last string) *identity.User {
	t.Helper()
	u, err := identity.NewUser(username, username+"@example.com", first, last)
	require.NoError(t, err)
	return u
}

func newTabOrders(t *testing.T, userID uuid.UUID, amounts ...int64) []billing.Order {
	t.Helper()
	orders := make([]billing.Order, 0, len(amounts))
	for i, amount := range amounts {
		o, err := billing.NewOrder(userID, []string{"Lathe rental", "Glass class", "Kiln firing"}[i%3], amount, nil)
		require.NoError(t, err)
		orders = append(orders, *o)
	}
	return orders
}

func TestInvoiceService_LocalInvoice(t *testing.T) {
	ctx := context.Background()
	invoiceRepo := new(MockInvoiceRepository)
	metrics := newRecordingMetrics()
	svc := NewInvoiceService(nil, invoiceRepo, metrics, zap.NewNop())
	assert.False(t, svc.StripeEnabled())

	user := newTestUser(t, "ada", "Ada", "Lovelace")
	orders := newTabOrders(t, user.ID, 2500, 1000)
	invoiceRepo.On("Save", ctx, mock.AnythingOfType("*billing.Invoice")).Return(nil)

	invoice, err := svc.CreateInvoiceForUser(ctx, user, orders)
	require.NoError(t, err)
	require.NotNil(t, invoice)
	assert.Equal(t, user.ID, invoice.UserID)
	assert.Equal(t, int64(3500), invoice.AmountDue)
	assert.Equal(t, billing.InvoiceStatusOpen, invoice.Status)
	assert.Empty(t, invoice.StripeInvoiceID)
	assert.Equal(t, []billing.LineItem{
		{Description: "Lathe rental", Amount: 2500},
		{Description: "Glass class", Amount: 1000},
	}, invoice.LineItems)
	assert.Equal(t, 1, metrics.invoices[SourceLocal])
}

func TestInvoiceService_StripeInvoice(t *testing.T) {
	ctx := context.Background()

	t.Run("existing customer", func(t *testing.T) {
		gateway := new(MockInvoiceGateway)
		invoiceRepo := new(MockInvoiceRepository)
		metrics := newRecordingMetrics()
		svc := NewInvoiceService(gateway, invoiceRepo, metrics, zap.NewNop())

		user := newTestUser(t, "grace", "Grace", "Hopper")
		orders := newTabOrders(t, user.ID, 4200)

		gateway.On("FindCustomerByEmail", ctx, "grace@example.com").
			Return(&billing.Customer{ID: "cus_1", Email: "grace@example.com"}, nil)
		gateway.On("CreateInvoiceItem", ctx, "cus_1", int64(4200), "Lathe rental").Return("ii_1", nil)
		gateway.On("CreateAndFinalizeInvoice", ctx, "cus_1").
			Return(&billing.ProviderInvoice{ID: "in_1", PDFURL: "https://pay.example/in_1.pdf", Status: "open"}, nil)
		invoiceRepo.On("Save", ctx, mock.AnythingOfType("*billing.Invoice")).Return(nil)

		invoice, err := svc.CreateInvoiceForUser(ctx, user, orders)
		require.NoError(t, err)
		require.NotNil(t, invoice)
		assert.Equal(t, "in_1", invoice.StripeInvoiceID)
		assert.Equal(t, "https://pay.example/in_1.pdf", invoice.PDFURL)
		assert.Equal(t, int64(4200), invoice.AmountDue)
		assert.Equal(t, billing.InvoiceStatusOpen, invoice.Status)
		gateway.AssertNotCalled(t, "CreateCustomer", mock.Anything, mock.Anything, mock.Anything)
		assert.Equal(t, 1, metrics.invoices[SourceStripe])
	})

	t.Run("creates customer named after user", func(t *testing.T) {
		gateway := new(MockInvoiceGateway)
		invoiceRepo := new(MockInvoiceRepository)
		svc := NewInvoiceService(gateway, invoiceRepo, nil, zap.NewNop())

		user := newTestUser(t, "nameless", "", "")
		orders := newTabOrders(t, user.ID, 100, 200)

		gateway.On("FindCustomerByEmail", ctx, "nameless@example.com").Return(nil, nil)
		gateway.On("CreateCustomer", ctx, "nameless@example.com", "nameless").
			Return(&billing.Customer{ID: "cus_new"}, nil)
		gateway.On("CreateInvoiceItem", ctx, "cus_new", mock.Anything, mock.Anything).Return("ii_2", nil).Twice()
		gateway.On("CreateAndFinalizeInvoice", ctx, "cus_new").Return(&billing.ProviderInvoice{ID: "in_2"}, nil)
		invoiceRepo.On("Save", ctx, mock.Anything).Return(nil)

		invoice, err := svc.CreateInvoiceForUser(ctx, user, orders)
		require.NoError(t, err)
		assert.Equal(t, "in_2", invoice.StripeInvoiceID)
		gateway.AssertExpectations(t)
	})

	t.Run("gateway failure yields no invoice", func(t *testing.T) {
		gateway := new(MockInvoiceGateway)
		invoiceRepo := new(MockInvoiceRepository)
		metrics := newRecordingMetrics()
		svc := NewInvoiceService(gateway, invoiceRepo, metrics, zap.NewNop())

		user := newTestUser(t, "linus", "Linus", "")
		gateway.On("FindCustomerByEmail", ctx, "linus@example.com").Return(&billing.Customer{ID: "cus_3"}, nil)
		gateway.On("CreateInvoiceItem", ctx, "cus_3", mock.Anything, mock.Anything).Return("ii_3", nil)
		gateway.On("CreateAndFinalizeInvoice", ctx, "cus_3").Return(nil, errors.New("card_declined"))
		gateway.On("DeleteInvoiceItem", ctx, "ii_3").Return(nil)

		invoice, err := svc.CreateInvoiceForUser(ctx, user, newTabOrders(t, user.ID, 900))
		assert.NoError(t, err)
		assert.Nil(t, invoice)
		invoiceRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		gateway.AssertCalled(t, "DeleteInvoiceItem", ctx, "ii_3")
		assert.Equal(t, []string{"create_invoice"}, metrics.stripeFailures)
	})

	t.Run("item failure deletes the items already created", func(t *testing.T) {
		gateway := new(MockInvoiceGateway)
		metrics := newRecordingMetrics()
		svc := NewInvoiceService(gateway, new(MockInvoiceRepository), metrics, zap.NewNop())

		user := newTestUser(t, "barbara", "Barbara", "Liskov")
		orders := newTabOrders(t, user.ID, 100, 200, 300)
		gateway.On("FindCustomerByEmail", ctx, "barbara@example.com").Return(&billing.Customer{ID: "cus_4"}, nil)
		gateway.On("CreateInvoiceItem", ctx, "cus_4", int64(100), mock.Anything).Return("ii_a", nil)
		gateway.On("CreateInvoiceItem", ctx, "cus_4", int64(200), mock.Anything).Return("ii_b", nil)
		gateway.On("CreateInvoiceItem", ctx, "cus_4", int64(300), mock.Anything).Return("", errors.New("rate limited"))
		gateway.On("DeleteInvoiceItem", ctx, "ii_a").Return(nil)
		gateway.On("DeleteInvoiceItem", ctx, "ii_b").Return(errors.New("api down"))

		invoice, err := svc.CreateInvoiceForUser(ctx, user, orders)
		assert.NoError(t, err)
		assert.Nil(t, invoice)
		gateway.AssertNotCalled(t, "CreateAndFinalizeInvoice", mock.Anything, mock.Anything)
		gateway.AssertNumberOfCalls(t, "DeleteInvoiceItem", 2)
		assert.Equal(t, []string{"delete_invoice_item", "create_invoice_item"}, metrics.stripeFailures)
	})

	t.Run("customer lookup failure yields no invoice", func(t *testing.T) {
		gateway := new(MockInvoiceGateway)
		svc := NewInvoiceService(gateway, new(MockInvoiceRepository), nil, zap.NewNop())

		user := newTestUser(t, "ken", "Ken", "Thompson")
		gateway.On("FindCustomerByEmail", ctx, "ken@example.com").Return(nil, errors.New("api down"))

		invoice, err := svc.CreateInvoiceForUser(ctx, user, newTabOrders(t, user.ID, 100))
		assert.NoError(t, err)
		assert.Nil(t, invoice)
	})

	t.Run("storage failure is returned", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		svc := NewInvoiceService(nil, invoiceRepo, nil, zap.NewNop())

		user := newTestUser(t, "dennis", "Dennis", "Ritchie")
		invoiceRepo.On("Save", ctx, mock.Anything).Return(errors.New("disk full"))

		invoice, err := svc.CreateInvoiceForUser(ctx, user, newTabOrders(t, user.ID, 100))
		assert.EqualError(t, err, "disk full")
		assert.Nil(t, invoice)
	})
}

// pendingGateway keeps Stripe's pending item semantics: an invoice sweeps
// in every pending item of the customer
type pendingGateway struct {
	pending   map[string]int64
	next      int
	failNext  bool
	finalized []int64
}

func (g *pendingGateway) FindCustomerByEmail(_ context.Context, email string) (*billing.Customer, error) {
	return &billing.Customer{ID: "cus_" + email}, nil
}

func (g *pendingGateway) CreateCustomer(_ context.Context, email, _ string) (*billing.Customer, error) {
	return &billing.Customer{ID: "cus_" + email}, nil
}

func (g *pendingGateway) CreateInvoiceItem(_ context.Context, _ string, amount int64, _ string) (string, error) {
	g.next++
	id := fmt.Sprintf("ii_%d", g.next)
	g.pending[id] = amount
	return id, nil
}

func (g *pendingGateway) DeleteInvoiceItem(_ context.Context, id string) error {
	delete(g.pending, id)
	return nil
}

func (g *pendingGateway) CreateAndFinalizeInvoice(context.Context, string) (*billing.ProviderInvoice, error) {
	if g.failNext {
		g.failNext = false
		return nil, errors.New("stripe unavailable")
	}
	var total int64
	for id, amount := range g.pending {
		total += amount
		delete(g.pending, id)
	}
	g.finalized = append(g.finalized, total)
	return &billing.ProviderInvoice{ID: fmt.Sprintf("in_%d", len(g.finalized)), Status: "open"}, nil
}

func TestInvoiceService_RetryAfterFailureBillsOnce(t *testing.T) {
	ctx := context.Background()
	gateway := &pendingGateway{pending: map[string]int64{}, failNext: true}
	invoiceRepo := new(MockInvoiceRepository)
	invoiceRepo.On("Save", ctx, mock.Anything).Return(nil)
	svc := NewInvoiceService(gateway, invoiceRepo, nil, zap.NewNop())

	user := newTestUser(t, "margaret", "Margaret", "Hamilton")
	orders := newTabOrders(t, user.ID, 2500, 1000)

	invoice, err := svc.CreateInvoiceForUser(ctx, user, orders)
	require.NoError(t, err)
	require.Nil(t, invoice)
	assert.Empty(t, gateway.pending)

	invoice, err = svc.CreateInvoiceForUser(ctx, user, orders)
	require.NoError(t, err)
	require.NotNil(t, invoice)
	assert.Equal(t, []int64{3500}, gateway.finalized)
	assert.Equal(t, int64(3500), invoice.AmountDue)
}
