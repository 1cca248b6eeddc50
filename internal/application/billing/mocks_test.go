package billing

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/plfog/backoffice/internal/domain/billing"
	"github.com/plfog/backoffice/internal/domain/identity"
	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Order), args.Error(1)
}

func (m *MockOrderRepository) FindPaidWithSplitBetween(ctx context.Context, start, end time.Time) ([]billing.Order, error) {
	args := m.Called(ctx, start, end)
	return args.Get(0).([]billing.Order), args.Error(1)
}

func (m *MockOrderRepository) FindUserIDsWithTab(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockOrderRepository) FindOnTabByUser(ctx context.Context, userID uuid.UUID) ([]billing.Order, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]billing.Order), args.Error(1)
}

func (m *MockOrderRepository) MarkBilled(ctx context.Context, ids []uuid.UUID, at time.Time) (int64, error) {
	args := m.Called(ctx, ids, at)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, order *billing.Order) error {
	return m.Called(ctx, order).Error(0)
}

type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]billing.Invoice, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	return m.Called(ctx, invoice).Error(0)
}

type MockPayoutRepository struct {
	mock.Mock
}

func (m *MockPayoutRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Payout, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Payout), args.Error(1)
}

func (m *MockPayoutRepository) SaveAll(ctx context.Context, payouts []*billing.Payout) error {
	return m.Called(ctx, payouts).Error(0)
}

func (m *MockPayoutRepository) Save(ctx context.Context, payout *billing.Payout) error {
	return m.Called(ctx, payout).Error(0)
}

type MockInvoiceGateway struct {
	mock.Mock
}

func (m *MockInvoiceGateway) FindCustomerByEmail(ctx context.Context, email string) (*billing.Customer, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Customer), args.Error(1)
}

func (m *MockInvoiceGateway) CreateCustomer(ctx context.Context, email, name string) (*billing.Customer, error) {
	args := m.Called(ctx, email, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Customer), args.Error(1)
}

func (m *MockInvoiceGateway) CreateInvoiceItem(ctx context.Context, customerID string, amount int64, description string) (string, error) {
	args := m.Called(ctx, customerID, amount, description)
	return args.String(0), args.Error(1)
}

func (m *MockInvoiceGateway) DeleteInvoiceItem(ctx context.Context, itemID string) error {
	return m.Called(ctx, itemID).Error(0)
}

func (m *MockInvoiceGateway) CreateAndFinalizeInvoice(ctx context.Context, customerID string) (*billing.ProviderInvoice, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.ProviderInvoice), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]identity.User, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserRepository) DeleteNonSuperusers(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// recordingMetrics counts calls for assertions
type recordingMetrics struct {
	mu             sync.Mutex
	ordersBilled   int
	invoices       map[string]int
	stripeFailures []string
	payoutCents    int64
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{invoices: map[string]int{}}
}

func (r *recordingMetrics) OrdersBilled(_ context.Context, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ordersBilled += n
}

func (r *recordingMetrics) InvoiceCreated(_ context.Context, source string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invoices[source]++
}

func (r *recordingMetrics) StripeFailure(_ context.Context, op string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stripeFailures = append(r.stripeFailures, op)
}

func (r *recordingMetrics) PayoutCreated(_ context.Context, _ string, cents int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payoutCents += cents
}
