package persistence

import (
	"github.com/plfog/backoffice/internal/domain/billing"
	"github.com/plfog/backoffice/internal/domain/core"
	"github.com/plfog/backoffice/internal/domain/education"
	"github.com/plfog/backoffice/internal/domain/identity"
	"github.com/plfog/backoffice/internal/domain/membership"
	"github.com/plfog/backoffice/internal/domain/outreach"
	"github.com/plfog/backoffice/internal/domain/tools"
)

// AllModels lists every persisted entity in dependency order. The order is
// also the reverse of the seed flush order.
func AllModels() []any {
	return []any{
		&identity.Permission{},
		&identity.Group{},
		&identity.User{},

		&membership.MembershipPlan{},
		&membership.Member{},
		&membership.Guild{},
		&membership.Space{},
		&membership.Lease{},
		&membership.GuildVote{},
		&membership.GuildMembership{},
		&membership.GuildDocument{},
		&membership.GuildWishlistItem{},
		&membership.MemberSchedule{},
		&membership.ScheduleBlock{},

		&billing.RevenueSplit{},
		&billing.Order{},
		&billing.Invoice{},
		&billing.Payout{},
		&billing.SubscriptionPlan{},
		&billing.MemberSubscription{},

		&tools.Tool{},
		&tools.ToolReservation{},
		&tools.Document{},
		&tools.Rentable{},
		&tools.Rental{},

		&education.ClassDiscountCode{},
		&education.MakerClass{},
		&education.ClassSession{},
		&education.ClassImage{},
		&education.Student{},
		&education.Orientation{},
		&education.ScheduledOrientation{},

		&outreach.Lead{},
		&outreach.Tour{},
		&outreach.Event{},
		&outreach.Buyable{},
		&outreach.BuyablePurchase{},

		&core.Setting{},
		&core.PushSubscription{},
	}
}
