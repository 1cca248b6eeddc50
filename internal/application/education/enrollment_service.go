package education

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/plfog/backoffice/internal/application/commerce"
	"github.com/plfog/backoffice/internal/domain/billing"
	"github.com/plfog/backoffice/internal/domain/education"
	"github.com/plfog/backoffice/internal/domain/shared"
	"github.com/plfog/backoffice/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderableStudent is the orderable type recorded on enrollment orders
const OrderableStudent = "education.student"

var (
	ErrClassNotOpen        = shared.NewDomainError("CLASS_NOT_OPEN", "Class is not open for registration")
	ErrClassFull           = shared.NewDomainError("CLASS_FULL", "Class is full")
	ErrInvalidDiscountCode = shared.NewDomainError("INVALID_DISCOUNT_CODE", "Discount code is not valid for this class")
)

// EnrollInput describes the person registering. UserID is set for members.
type EnrollInput struct {
	UserID       *uuid.UUID
	Name         string
	Email        string
	Phone        string
	DiscountCode string
}

// EnrollResult is the saved registration and, for members, the tab order
type EnrollResult struct {
	Student  *education.Student `json:"student"`
	Discount decimal.Decimal    `json:"discount"`
	Order    *billing.Order     `json:"order,omitempty"`
}

// EnrollmentService registers students for classes
type EnrollmentService struct {
	scope  commerce.TransactionScope
	logger *zap.Logger
	now    func() time.Time
}

// NewEnrollmentService creates an enrollment service
func NewEnrollmentService(scope commerce.TransactionScope, logger *zap.Logger) *EnrollmentService {
	return &EnrollmentService{
		scope:  scope,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Enroll registers a student for a published class with room left. A
// discount code must be active and attached to the class. The discounted
// price is recorded as amount paid; members are charged through their tab.
func (s *EnrollmentService) Enroll(ctx context.Context, classID uuid.UUID, in EnrollInput) (*EnrollResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "education", "enroll", "class_id", classID.String())
	defer span.End()

	var result *EnrollResult
	err := s.scope.Execute(ctx, func(repos commerce.TransactionalRepositories) error {
		class, err := repos.Classes().FindByID(ctx, classID)
		if err != nil {
			return err
		}
		if !class.IsPublished() {
			return ErrClassNotOpen
		}
		enrolled, err := repos.Classes().CountStudents(ctx, class.ID)
		if err != nil {
			return err
		}
		if !class.HasAvailableSpots(enrolled) {
			return ErrClassFull
		}

		student, err := education.NewStudent(class.ID, in.Name, in.Email)
		if err != nil {
			return err
		}
		student.UserID = in.UserID
		student.Phone = in.Phone
		student.RegisteredAt = s.now()

		discount := decimal.Zero
		if code := strings.TrimSpace(in.DiscountCode); code != "" {
			dc, err := repos.Classes().FindDiscountCode(ctx, code)
			if err != nil && !errors.Is(err, shared.ErrNotFound) {
				return err
			}
			if !class.AcceptsCode(dc) {
				return ErrInvalidDiscountCode
			}
			discount = dc.CalculateDiscount(class.Price)
			student.DiscountCodeID = &dc.ID
		}
		student.AmountPaid = class.Price.Sub(discount)

		if err := repos.Classes().SaveStudent(ctx, student); err != nil {
			return err
		}
		result = &EnrollResult{Student: student, Discount: discount}

		if !student.IsMember() || !student.AmountPaid.IsPositive() {
			return nil
		}
		order, err := commerce.TabOrder(*student.UserID, "Class: "+class.Name, student.AmountPaid,
			class.RevenueSplitID, OrderableStudent, student.ID)
		if err != nil {
			return err
		}
		if err := repos.Orders().Save(ctx, order); err != nil {
			return err
		}
		result.Order = order
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("Student enrolled",
		zap.String("class_id", classID.String()),
		zap.String("student_id", result.Student.ID.String()),
		zap.String("amount_paid", shared.FormatDecimal(result.Student.AmountPaid)),
		zap.Bool("member", result.Student.IsMember()))
	return result, nil
}
