package education

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/plfog/backoffice/internal/domain/billing"
	"github.com/plfog/backoffice/internal/domain/education"
	"github.com/plfog/backoffice/internal/domain/identity"
	"github.com/plfog/backoffice/internal/domain/shared"
	"github.com/plfog/backoffice/internal/infrastructure/config"
	"github.com/plfog/backoffice/internal/infrastructure/persistence"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type enrollmentFixture struct {
	db      *gorm.DB
	classes *persistence.GormClassRepository
	orders  *persistence.GormOrderRepository
	service *EnrollmentService
	class   *education.MakerClass
	split   *billing.RevenueSplit
	user    *identity.User
}

func newEnrollmentFixture(t *testing.T, price string, maxStudents *int) *enrollmentFixture {
	t.Helper()
	ctx := context.Background()
	database, err := persistence.NewDatabase(&config.DatabaseConfig{Driver: "sqlite", DBName: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(ctx))
	t.Cleanup(func() { _ = database.Close() })
	db := database.DB

	f := &enrollmentFixture{
		db:      db,
		classes: persistence.NewGormClassRepository(db),
		orders:  persistence.NewGormOrderRepository(db),
		service: NewEnrollmentService(persistence.NewGormTransactionScope(db), zap.NewNop()),
	}

	f.user, err = identity.NewUser("maker", "maker@example.com", "Mae", "Ker")
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormUserRepository(db).Save(ctx, f.user))

	f.split, err = billing.NewRevenueSplit("Class split", []billing.SplitEntry{
		{EntityType: billing.EntityTypeOrg, Percentage: decimal.NewFromInt(100)},
	})
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormRevenueSplitRepository(db).Save(ctx, f.split))

	f.class, err = education.NewMakerClass("Intro to Welding", decimal.RequireFromString(price))
	require.NoError(t, err)
	f.class.MaxStudents = maxStudents
	f.class.RevenueSplitID = &f.split.ID
	require.NoError(t, f.class.Publish(f.class.CreatedAt))
	require.NoError(t, f.classes.Save(ctx, f.class))
	return f
}

func (f *enrollmentFixture) attachCode(t *testing.T, code string, kind education.DiscountType, value string) *education.ClassDiscountCode {
	t.Helper()
	ctx := context.Background()
	dc, err := education.NewClassDiscountCode(code, kind, decimal.RequireFromString(value))
	require.NoError(t, err)
	require.NoError(t, f.classes.SaveDiscountCode(ctx, dc))
	f.class.DiscountCodes = append(f.class.DiscountCodes, *dc)
	require.NoError(t, f.classes.Save(ctx, f.class))
	return dc
}

func (f *enrollmentFixture) countOrders(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&billing.Order{}).Count(&n).Error)
	return n
}

func intPtr(n int) *int { return &n }

func TestEnroll_MemberGetsTabOrder(t *testing.T) {
	f := newEnrollmentFixture(t, "120.00", nil)
	ctx := context.Background()

	result, err := f.service.Enroll(ctx, f.class.ID, EnrollInput{
		UserID: &f.user.ID,
		Name:   "Mae Ker",
		Email:  "maker@example.com",
	})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("120").Equal(result.Student.AmountPaid))
	assert.True(t, result.Discount.IsZero())

	require.NotNil(t, result.Order)
	order, err := f.orders.FindByID(ctx, result.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(12000), order.Amount)
	assert.Equal(t, billing.OrderStatusOnTab, order.Status)
	assert.Equal(t, "Class: Intro to Welding", order.Description)
	assert.Equal(t, OrderableStudent, order.OrderableType)
	assert.Equal(t, result.Student.ID, *order.OrderableID)
	assert.Equal(t, f.split.ID, *order.RevenueSplitID)

	enrolled, err := f.classes.CountStudents(ctx, f.class.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), enrolled)
}

func TestEnroll_WalkInHasNoOrder(t *testing.T) {
	f := newEnrollmentFixture(t, "60.00", nil)

	result, err := f.service.Enroll(context.Background(), f.class.ID, EnrollInput{Name: "Guest", Email: "guest@example.com"})
	require.NoError(t, err)
	assert.Nil(t, result.Order)
	assert.False(t, result.Student.IsMember())
	assert.Equal(t, int64(0), f.countOrders(t))
}

func TestEnroll_AppliesDiscountCode(t *testing.T) {
	tests := []struct {
		name     string
		kind     education.DiscountType
		value    string
		wantPaid string
		wantCut  string
	}{
		{"percentage", education.DiscountTypePercentage, "25", "75", "25"},
		{"fixed", education.DiscountTypeFixed, "30", "70", "30"},
		{"fixed above price", education.DiscountTypeFixed, "150", "0", "100"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newEnrollmentFixture(t, "100.00", nil)
			f.attachCode(t, "SAVE", tt.kind, tt.value)

			result, err := f.service.Enroll(context.Background(), f.class.ID, EnrollInput{
				UserID:       &f.user.ID,
				Name:         "Mae Ker",
				Email:        "maker@example.com",
				DiscountCode: "save",
			})
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.wantPaid).Equal(result.Student.AmountPaid))
			assert.True(t, decimal.RequireFromString(tt.wantCut).Equal(result.Discount))
			require.NotNil(t, result.Student.DiscountCodeID)
			if result.Student.AmountPaid.IsZero() {
				assert.Nil(t, result.Order)
			} else {
				assert.Equal(t, shared.ToCents(result.Student.AmountPaid), result.Order.Amount)
			}
		})
	}
}

func TestEnroll_RejectsUnknownOrDetachedCode(t *testing.T) {
	f := newEnrollmentFixture(t, "100.00", nil)
	other, err := education.NewClassDiscountCode("OTHER", education.DiscountTypeFixed, decimal.NewFromInt(5))
	require.NoError(t, err)
	require.NoError(t, f.classes.SaveDiscountCode(context.Background(), other))

	for _, code := range []string{"NOPE", "OTHER"} {
		_, err := f.service.Enroll(context.Background(), f.class.ID, EnrollInput{Name: "Guest", Email: "g@example.com", DiscountCode: code})
		assert.ErrorIs(t, err, ErrInvalidDiscountCode, code)
	}
	enrolled, err := f.classes.CountStudents(context.Background(), f.class.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), enrolled)
}

func TestEnroll_InactiveCodeRejected(t *testing.T) {
	f := newEnrollmentFixture(t, "100.00", nil)
	dc := f.attachCode(t, "OLD", education.DiscountTypeFixed, "10")
	dc.IsActive = false
	require.NoError(t, f.classes.SaveDiscountCode(context.Background(), dc))

	_, err := f.service.Enroll(context.Background(), f.class.ID, EnrollInput{Name: "Guest", Email: "g@example.com", DiscountCode: "OLD"})
	assert.ErrorIs(t, err, ErrInvalidDiscountCode)
}

func TestEnroll_FullClass(t *testing.T) {
	f := newEnrollmentFixture(t, "100.00", intPtr(1))
	ctx := context.Background()

	_, err := f.service.Enroll(ctx, f.class.ID, EnrollInput{Name: "First", Email: "first@example.com"})
	require.NoError(t, err)
	_, err = f.service.Enroll(ctx, f.class.ID, EnrollInput{UserID: &f.user.ID, Name: "Second", Email: "second@example.com"})
	assert.ErrorIs(t, err, ErrClassFull)
	assert.Equal(t, int64(0), f.countOrders(t))
}

func TestEnroll_DraftClassClosed(t *testing.T) {
	f := newEnrollmentFixture(t, "100.00", nil)
	draft, err := education.NewMakerClass("Draft", decimal.NewFromInt(10))
	require.NoError(t, err)
	require.NoError(t, f.classes.Save(context.Background(), draft))

	_, err = f.service.Enroll(context.Background(), draft.ID, EnrollInput{Name: "Guest", Email: "g@example.com"})
	assert.ErrorIs(t, err, ErrClassNotOpen)
}

func TestEnroll_UnknownClass(t *testing.T) {
	f := newEnrollmentFixture(t, "100.00", nil)
	_, err := f.service.Enroll(context.Background(), uuid.New(), EnrollInput{Name: "Guest", Email: "g@example.com"})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
