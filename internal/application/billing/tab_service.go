package billing

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/plfog/backoffice/internal/domain/billing"
	"github.com/plfog/backoffice/internal/domain/identity"
	"github.com/plfog/backoffice/internal/domain/shared"
	"github.com/plfog/backoffice/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// BillTabsJob is the lock name held while tabs are being billed
const BillTabsJob = "bill-tabs"

// ErrBillTabsRunning is returned when another process is already billing tabs
var ErrBillTabsRunning = shared.NewDomainError("JOB_RUNNING", "Tab billing is already running")

// BillTabsResult summarizes one run
type BillTabsResult struct {
	Billed []BilledTab `json:"billed"`
	Failed []string    `json:"failed"`
}

// BilledTab is one user's successfully billed tab
type BilledTab struct {
	Username  string    `json:"username"`
	Orders    int       `json:"orders"`
	AmountDue int64     `json:"amount_due"`
	InvoiceID uuid.UUID `json:"invoice_id"`
}

// TabService bills every outstanding tab
type TabService struct {
	orderRepo billing.OrderRepository
	userRepo  identity.UserRepository
	invoices  *InvoiceService
	lock      shared.JobLock
	lockTTL   time.Duration
	metrics   Metrics
	logger    *zap.Logger
	now       func() time.Time
}

// NewTabService creates a tab service. lock may be nil for single-process
// use; lockTTL bounds how long a crashed run can hold the lock.
func NewTabService(
	orderRepo billing.OrderRepository,
	userRepo identity.UserRepository,
	invoices *InvoiceService,
	lock shared.JobLock,
	lockTTL time.Duration,
	logger *zap.Logger,
) *TabService {
	if lockTTL <= 0 {
		lockTTL = 30 * time.Minute
	}
	return &TabService{
		orderRepo: orderRepo,
		userRepo:  userRepo,
		invoices:  invoices,
		lock:      lock,
		lockTTL:   lockTTL,
		metrics:   invoices.metrics,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// BillTabs invoices every user with on-tab orders and flips those orders to
// billed. Progress lines go to out. A user whose invoice fails keeps the
// tab for the next run. Storage errors are collected and returned together
// after every user has been tried.
func (s *TabService) BillTabs(ctx context.Context, out io.Writer) (*BillTabsResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "billing", "bill_tabs")
	defer span.End()

	if s.lock != nil {
		acquired, err := s.lock.TryAcquire(ctx, BillTabsJob, s.lockTTL)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("acquire %s lock: %w", BillTabsJob, err)
		}
		if !acquired {
			return nil, ErrBillTabsRunning
		}
		defer func() {
			if err := s.lock.Release(context.WithoutCancel(ctx), BillTabsJob); err != nil {
				s.logger.Warn("Failed to release job lock", zap.String("job", BillTabsJob), zap.Error(err))
			}
		}()
	}

	userIDs, err := s.orderRepo.FindUserIDsWithTab(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	result := &BillTabsResult{Billed: []BilledTab{}, Failed: []string{}}
	if len(userIDs) == 0 {
		fmt.Fprintln(out, "No outstanding tabs to bill")
		return result, nil
	}

	users, err := s.userRepo.FindByIDs(ctx, userIDs)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	byID := make(map[uuid.UUID]*identity.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}

	var errs *multierror.Error
	for _, id := range userIDs {
		user, ok := byID[id]
		if !ok {
			continue
		}
		orders, err := s.orderRepo.FindOnTabByUser(ctx, user.ID)
		if err == nil && len(orders) == 0 {
			continue
		}
		var billed *BilledTab
		if err == nil {
			billed, err = s.billOrders(ctx, user, orders)
		}
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("bill %s: %w", user.Username, err))
		}
		if billed == nil {
			result.Failed = append(result.Failed, user.Username)
			fmt.Fprintf(out, "Failed to bill %s\n", user.Username)
			continue
		}
		result.Billed = append(result.Billed, *billed)
		fmt.Fprintf(out, "Billed %s: %d orders, total %s\n",
			user.Username, billed.Orders, shared.FormatCents(billed.AmountDue))
	}

	fmt.Fprintf(out, "\nBilled %d users total\n", len(result.Billed))
	telemetry.SetAttributes(span, "billed", len(result.Billed), "failed", len(result.Failed))
	s.logger.Info("Tab billing finished",
		zap.Int("billed", len(result.Billed)),
		zap.Int("failed", len(result.Failed)))

	if err := errs.ErrorOrNil(); err != nil {
		telemetry.RecordError(span, err)
		return result, err
	}
	return result, nil
}

// billOrders returns nil when no invoice could be created
func (s *TabService) billOrders(ctx context.Context, user *identity.User, orders []billing.Order) (*BilledTab, error) {
	invoice, err := s.invoices.CreateInvoiceForUser(ctx, user, orders)
	if err != nil || invoice == nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	if _, err := s.orderRepo.MarkBilled(ctx, ids, s.now()); err != nil {
		return nil, err
	}
	s.metrics.OrdersBilled(ctx, len(orders))

	return &BilledTab{
		Username:  user.Username,
		Orders:    len(orders),
		AmountDue: invoice.AmountDue,
		InvoiceID: invoice.ID,
	}, nil
}
