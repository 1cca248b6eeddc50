package seed

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/plfog/backoffice/internal/domain/billing"
	"github.com/plfog/backoffice/internal/domain/core"
	"github.com/plfog/backoffice/internal/domain/education"
	"github.com/plfog/backoffice/internal/domain/identity"
	"github.com/plfog/backoffice/internal/domain/membership"
	"github.com/plfog/backoffice/internal/domain/outreach"
	"github.com/plfog/backoffice/internal/domain/shared"
	"github.com/plfog/backoffice/internal/domain/tools"
	"gorm.io/gorm"
)

const (
	toolDocumentable = "tool"
	leaseAgeDays     = 365
	classStartHour   = 10
	classEndHour     = 14
)

// run holds the rows created so far, keyed by natural key, so later
// sections can resolve references
type run struct {
	ctx   context.Context
	tx    *gorm.DB
	ds    *Dataset
	files shared.ObjectStorage
	out   io.Writer
	now   time.Time
	today time.Time

	users     map[string]*identity.User
	plans     map[string]*membership.MembershipPlan
	members   map[string]*membership.Member
	guilds    map[string]*membership.Guild
	spaces    map[string]*membership.Space
	tools     map[string]*tools.Tool
	splits    map[string]*billing.RevenueSplit
	rentables map[string]*tools.Rentable
	orders    map[OrderRef]*billing.Order
	subPlans  map[string]*billing.SubscriptionPlan
	codes     map[string]*education.ClassDiscountCode
	leads     map[string]*outreach.Lead
	buyables  map[string]*outreach.Buyable
}

func newRun(ctx context.Context, tx *gorm.DB, ds *Dataset, files shared.ObjectStorage, out io.Writer, now time.Time) *run {
	return &run{
		ctx:       ctx,
		tx:        tx,
		ds:        ds,
		files:     files,
		out:       out,
		now:       now,
		today:     shared.DateOf(now),
		users:     make(map[string]*identity.User),
		plans:     make(map[string]*membership.MembershipPlan),
		members:   make(map[string]*membership.Member),
		guilds:    make(map[string]*membership.Guild),
		spaces:    make(map[string]*membership.Space),
		tools:     make(map[string]*tools.Tool),
		splits:    make(map[string]*billing.RevenueSplit),
		rentables: make(map[string]*tools.Rentable),
		orders:    make(map[OrderRef]*billing.Order),
		subPlans:  make(map[string]*billing.SubscriptionPlan),
		codes:     make(map[string]*education.ClassDiscountCode),
		leads:     make(map[string]*outreach.Lead),
		buyables:  make(map[string]*outreach.Buyable),
	}
}

func (r *run) steps() []func() error {
	return []func() error{
		r.settings,
		r.seedUsers,
		r.seedPlans,
		r.seedMembers,
		r.seedGuilds,
		r.guildMemberships,
		r.guildVotes,
		r.guildDocuments,
		r.wishlist,
		r.seedSpaces,
		r.leases,
		r.seedTools,
		r.reservations,
		r.revenueSplits,
		r.seedRentables,
		r.seedOrders,
		r.rentals,
		r.invoices,
		r.payouts,
		r.subscriptionPlans,
		r.memberSubscriptions,
		r.discountCodes,
		r.classes,
		r.orientations,
		r.seedLeads,
		r.tours,
		r.events,
		r.seedBuyables,
		r.purchases,
		r.schedules,
		r.toolDocuments,
	}
}

func (r *run) seeded(n int, what string) {
	fmt.Fprintf(r.out, "Seeded %d %s\n", n, what)
}

func (r *run) user(username string) (*identity.User, error) {
	return lookup(r.users, "user", username)
}

func (r *run) guild(name string) (*membership.Guild, error) {
	return lookup(r.guilds, "guild", name)
}

func (r *run) tool(name string) (*tools.Tool, error) {
	return lookup(r.tools, "tool", name)
}

// optionalGuild resolves an empty name to no guild
func (r *run) optionalGuild(name string) (*uuid.UUID, error) {
	if name == "" {
		return nil, nil
	}
	g, err := r.guild(name)
	if err != nil {
		return nil, err
	}
	return idPtr(g.ID), nil
}

func (r *run) optionalSplit(name string) (*uuid.UUID, error) {
	if name == "" {
		return nil, nil
	}
	s, err := lookup(r.splits, "revenue split", name)
	if err != nil {
		return nil, err
	}
	return idPtr(s.ID), nil
}

func (r *run) optionalOrder(ref *OrderRef) (*uuid.UUID, error) {
	if ref == nil {
		return nil, nil
	}
	o, ok := r.orders[*ref]
	if !ok {
		return nil, fmt.Errorf("unknown order %q for %s", ref.Description, ref.User)
	}
	return idPtr(o.ID), nil
}

func (r *run) settings() error {
	for _, row := range r.ds.Settings {
		kind := core.SettingType(row.Type)
		st, created, err := getOrCreate(r.tx, map[string]any{"key": row.Key}, func() (*core.Setting, error) {
			return core.NewSetting(row.Key, row.Value, kind)
		})
		if err != nil {
			return fmt.Errorf("setting %s: %w", row.Key, err)
		}
		if !created {
			st.Value = row.Value
			st.Type = kind
			st.Touch()
			if err := r.tx.Save(st).Error; err != nil {
				return fmt.Errorf("setting %s: %w", row.Key, err)
			}
		}
	}
	r.seeded(len(r.ds.Settings), "settings")
	return nil
}

func (r *run) seedUsers() error {
	admin := r.ds.Admin
	u, _, err := getOrCreate(r.tx, map[string]any{"username": admin.Username}, func() (*identity.User, error) {
		u, err := identity.NewUser(admin.Username, admin.Email, admin.FirstName, admin.LastName)
		if err != nil {
			return nil, err
		}
		if err := u.SetPassword(admin.Password); err != nil {
			return nil, err
		}
		u.PromoteToSuperuser()
		return u, nil
	})
	if err != nil {
		return fmt.Errorf("admin %s: %w", admin.Username, err)
	}
	r.users[u.Username] = u

	// every demo account shares one hash
	var hashed identity.User
	if err := hashed.SetPassword(r.ds.DemoPassword); err != nil {
		return fmt.Errorf("demo password: %w", err)
	}
	for _, row := range r.ds.Users {
		u, _, err := getOrCreate(r.tx, map[string]any{"username": row.Username}, func() (*identity.User, error) {
			u, err := identity.NewUser(row.Username, row.Email, row.FirstName, row.LastName)
			if err != nil {
				return nil, err
			}
			u.PasswordHash = hashed.PasswordHash
			return u, nil
		})
		if err != nil {
			return fmt.Errorf("user %s: %w", row.Username, err)
		}
		r.users[u.Username] = u
	}
	fmt.Fprintf(r.out, "Seeded %d demo users + admin\n", len(r.ds.Users))
	return nil
}

func (r *run) seedPlans() error {
	for _, row := range r.ds.Plans {
		p, _, err := getOrCreate(r.tx, map[string]any{"name": row.Name}, func() (*membership.MembershipPlan, error) {
			price, err := parseDecimal("monthly_price", row.MonthlyPrice)
			if err != nil {
				return nil, err
			}
			p, err := membership.NewMembershipPlan(row.Name, price)
			if err != nil {
				return nil, err
			}
			if p.DepositRequired, err = parseDecimalPtr("deposit_required", row.DepositRequired); err != nil {
				return nil, err
			}
			return p, nil
		})
		if err != nil {
			return fmt.Errorf("plan %s: %w", row.Name, err)
		}
		r.plans[p.Name] = p
	}
	r.seeded(len(r.ds.Plans), "membership plans")
	return nil
}

func (r *run) seedMembers() error {
	for _, row := range r.ds.Members {
		u, err := r.user(row.User)
		if err != nil {
			return err
		}
		plan, err := lookup(r.plans, "plan", row.Plan)
		if err != nil {
			return err
		}
		m, _, err := getOrCreate(r.tx, map[string]any{"user_id": u.ID}, func() (*membership.Member, error) {
			m, err := membership.NewMember(row.LegalName, plan.ID)
			if err != nil {
				return nil, err
			}
			joined := r.today.AddDate(0, 0, -row.JoinedDaysAgo)
			m.UserID = idPtr(u.ID)
			m.PreferredName = row.PreferredName
			m.Email = u.Email
			m.Phone = row.Phone
			m.BillingName = row.LegalName
			m.EmergencyContactName = row.PreferredName + " Emergency Contact"
			m.EmergencyContactPhone = "503-555-9999"
			m.EmergencyContactRelationship = "Partner"
			m.Status = membership.MemberStatus(row.Status)
			m.Role = membership.MemberRole(row.Role)
			m.JoinDate = shared.DatePtr(joined)
			if m.Status == membership.MemberStatusFormer {
				m.CancellationDate = shared.DatePtr(joined.AddDate(0, 0, 365))
			}
			return m, nil
		})
		if err != nil {
			return fmt.Errorf("member %s: %w", row.User, err)
		}
		r.members[row.User] = m
	}
	r.seeded(len(r.ds.Members), "members")
	return nil
}

func (r *run) seedGuilds() error {
	for _, row := range r.ds.Guilds {
		lead, err := lookup(r.members, "member", row.Lead)
		if err != nil {
			return err
		}
		g, _, err := getOrCreate(r.tx, map[string]any{"name": row.Name}, func() (*membership.Guild, error) {
			g, err := membership.NewGuild(row.Name)
			if err != nil {
				return nil, err
			}
			g.Intro = row.Intro
			g.Description = row.Description
			g.Icon = row.Icon
			g.GuildLeadID = idPtr(lead.ID)
			return g, nil
		})
		if err != nil {
			return fmt.Errorf("guild %s: %w", row.Name, err)
		}
		r.guilds[g.Name] = g
	}
	r.seeded(len(r.ds.Guilds), "guilds")
	return nil
}

func (r *run) guildMemberships() error {
	for _, row := range r.ds.GuildMemberships {
		g, err := r.guild(row.Guild)
		if err != nil {
			return err
		}
		u, err := r.user(row.User)
		if err != nil {
			return err
		}
		_, _, err = getOrCreate(r.tx, map[string]any{"guild_id": g.ID, "user_id": u.ID}, func() (*membership.GuildMembership, error) {
			return membership.NewGuildMembership(g.ID, u.ID, row.Lead), nil
		})
		if err != nil {
			return fmt.Errorf("guild membership %s/%s: %w", row.Guild, row.User, err)
		}
	}
	r.seeded(len(r.ds.GuildMemberships), "guild memberships")
	return nil
}

func (r *run) guildVotes() error {
	var n int
	for _, row := range r.ds.GuildVotes {
		m, err := lookup(r.members, "member", row.Member)
		if err != nil {
			return err
		}
		for i, name := range row.Guilds {
			g, err := r.guild(name)
			if err != nil {
				return err
			}
			priority := i + 1
			_, _, err = getOrCreate(r.tx, map[string]any{"member_id": m.ID, "guild_id": g.ID}, func() (*membership.GuildVote, error) {
				return membership.NewGuildVote(m.ID, g.ID, priority)
			})
			if err != nil {
				return fmt.Errorf("guild vote %s/%s: %w", row.Member, name, err)
			}
			n++
		}
	}
	r.seeded(n, "guild votes")
	return nil
}

func (r *run) guildDocuments() error {
	for _, row := range r.ds.GuildDocuments {
		g, err := r.guild(row.Owner)
		if err != nil {
			return err
		}
		uploader, err := r.user(row.UploadedBy)
		if err != nil {
			return err
		}
		doc, created, err := getOrCreate(r.tx, map[string]any{"guild_id": g.ID, "name": row.Name}, func() (*membership.GuildDocument, error) {
			doc := &membership.GuildDocument{
				BaseEntity:   shared.NewBaseEntity(),
				GuildID:      g.ID,
				Name:         row.Name,
				UploadedByID: idPtr(uploader.ID),
			}
			doc.FilePath = guildDocumentKey(g.ID, doc.ID, row.Name)
			return doc, nil
		})
		if err != nil {
			return fmt.Errorf("guild document %s: %w", row.Name, err)
		}
		if created {
			if err := r.putPlaceholder(doc.FilePath); err != nil {
				return err
			}
		}
	}
	r.seeded(len(r.ds.GuildDocuments), "guild documents")
	return nil
}

func (r *run) wishlist() error {
	for _, row := range r.ds.Wishlist {
		g, err := r.guild(row.Guild)
		if err != nil {
			return err
		}
		creator, err := r.user(row.CreatedBy)
		if err != nil {
			return err
		}
		_, _, err = getOrCreate(r.tx, map[string]any{"guild_id": g.ID, "name": row.Name}, func() (*membership.GuildWishlistItem, error) {
			cost, err := parseDecimal("cost", row.Cost)
			if err != nil {
				return nil, err
			}
			return &membership.GuildWishlistItem{
				BaseEntity:    shared.NewBaseEntity(),
				GuildID:       g.ID,
				Name:          row.Name,
				Description:   row.Description,
				Link:          row.Link,
				EstimatedCost: &cost,
				IsFulfilled:   row.Fulfilled,
				CreatedByID:   idPtr(creator.ID),
			}, nil
		})
		if err != nil {
			return fmt.Errorf("wishlist item %s: %w", row.Name, err)
		}
	}
	r.seeded(len(r.ds.Wishlist), "guild wishlist items")
	return nil
}

func (r *run) seedSpaces() error {
	for _, row := range r.ds.Spaces {
		sublet, err := r.optionalGuild(row.SubletGuild)
		if err != nil {
			return err
		}
		s, _, err := getOrCreate(r.tx, map[string]any{"space_id": row.SpaceID}, func() (*membership.Space, error) {
			s, err := membership.NewSpace(row.SpaceID, row.Name, membership.SpaceType(row.Type))
			if err != nil {
				return nil, err
			}
			if s.SizeSqft, err = parseDecimalPtr("size_sqft", row.SizeSqft); err != nil {
				return nil, err
			}
			if s.RatePerSqft, err = parseDecimalPtr("rate_per_sqft", row.RatePerSqft); err != nil {
				return nil, err
			}
			if s.ManualPrice, err = parseDecimalPtr("manual_price", row.ManualPrice); err != nil {
				return nil, err
			}
			if err := s.SetStatus(membership.SpaceStatus(row.Status)); err != nil {
				return nil, err
			}
			s.SubletGuildID = sublet
			return s, nil
		})
		if err != nil {
			return fmt.Errorf("space %s: %w", row.SpaceID, err)
		}
		r.spaces[s.SpaceID] = s
	}
	r.seeded(len(r.ds.Spaces), "spaces")
	return nil
}

func (r *run) leases() error {
	start := r.today.AddDate(0, 0, -leaseAgeDays)
	for _, row := range r.ds.Leases {
		space, err := lookup(r.spaces, "space", row.Space)
		if err != nil {
			return err
		}
		var tenant membership.TenantRef
		switch {
		case row.Guild != "" && row.Member == "":
			g, err := r.guild(row.Guild)
			if err != nil {
				return err
			}
			tenant = membership.TenantRef{Type: membership.TenantTypeGuild, ID: g.ID}
		case row.Member != "" && row.Guild == "":
			m, err := lookup(r.members, "member", row.Member)
			if err != nil {
				return err
			}
			tenant = membership.TenantRef{Type: membership.TenantTypeMember, ID: m.ID}
		default:
			return fmt.Errorf("lease %s: exactly one of guild or member is required", row.Space)
		}
		where := map[string]any{"tenant_type": tenant.Type, "tenant_id": tenant.ID, "space_id": space.ID}
		_, _, err = getOrCreate(r.tx, where, func() (*membership.Lease, error) {
			base, err := parseDecimal("base_price", row.BasePrice)
			if err != nil {
				return nil, err
			}
			rent, err := parseDecimal("monthly_rent", row.MonthlyRent)
			if err != nil {
				return nil, err
			}
			l, err := membership.NewLease(tenant, space.ID, membership.LeaseType(row.Type), base, rent, start)
			if err != nil {
				return nil, err
			}
			deposit := base
			l.DepositRequired = &deposit
			l.DepositPaidAmount = &deposit
			l.DepositPaidDate = shared.DatePtr(start)
			return l, nil
		})
		if err != nil {
			return fmt.Errorf("lease %s: %w", row.Space, err)
		}
	}
	r.seeded(len(r.ds.Leases), "leases")
	return nil
}

func (r *run) seedTools() error {
	for _, row := range r.ds.Tools {
		guildID, err := r.optionalGuild(row.Guild)
		if err != nil {
			return err
		}
		t, _, err := getOrCreate(r.tx, map[string]any{"name": row.Name}, func() (*tools.Tool, error) {
			value, err := parseDecimal("value", row.Value)
			if err != nil {
				return nil, err
			}
			t, err := tools.NewTool(row.Name, guildID)
			if err != nil {
				return nil, err
			}
			t.Description = row.Description
			t.EstimatedValue = &value
			t.IsReservable = row.Reservable
			t.IsRentable = row.Rentable
			if guildID != nil {
				t.OwnerType = tools.OwnerTypeGuild
				t.OwnerID = guildID
			}
			return t, nil
		})
		if err != nil {
			return fmt.Errorf("tool %s: %w", row.Name, err)
		}
		r.tools[t.Name] = t
	}
	r.seeded(len(r.ds.Tools), "tools")
	return nil
}

func (r *run) reservations() error {
	for _, row := range r.ds.Reservations {
		t, err := r.tool(row.Tool)
		if err != nil {
			return err
		}
		u, err := r.user(row.User)
		if err != nil {
			return err
		}
		_, _, err = getOrCreate(r.tx, map[string]any{"tool_id": t.ID, "user_id": u.ID}, func() (*tools.ToolReservation, error) {
			res, err := tools.NewToolReservation(t.ID, u.ID, row.Starts.From(r.now), row.Ends.From(r.now))
			if err != nil {
				return nil, err
			}
			res.Status = tools.ReservationStatus(row.Status)
			return res, nil
		})
		if err != nil {
			return fmt.Errorf("reservation %s/%s: %w", row.Tool, row.User, err)
		}
	}
	r.seeded(len(r.ds.Reservations), "tool reservations")
	return nil
}

func (r *run) revenueSplits() error {
	for _, row := range r.ds.RevenueSplits {
		s, _, err := getOrCreate(r.tx, map[string]any{"name": row.Name}, func() (*billing.RevenueSplit, error) {
			entries := make([]billing.SplitEntry, 0, len(row.Entries))
			for _, e := range row.Entries {
				pct, err := parseDecimal("percentage", e.Percentage)
				if err != nil {
					return nil, err
				}
				entry := billing.SplitEntry{EntityType: billing.EntityType(e.Type), Percentage: pct}
				switch entry.EntityType {
				case billing.EntityTypeUser:
					u, err := r.user(e.Payee)
					if err != nil {
						return nil, err
					}
					entry.EntityID = u.ID
				case billing.EntityTypeGuild:
					g, err := r.guild(e.Payee)
					if err != nil {
						return nil, err
					}
					entry.EntityID = g.ID
				case billing.EntityTypeOrg:
				default:
					return nil, fmt.Errorf("unknown payee type %q", e.Type)
				}
				entries = append(entries, entry)
			}
			s, err := billing.NewRevenueSplit(row.Name, entries)
			if err != nil {
				return nil, err
			}
			s.Notes = row.Notes
			return s, nil
		})
		if err != nil {
			return fmt.Errorf("revenue split %s: %w", row.Name, err)
		}
		r.splits[s.Name] = s
	}
	r.seeded(len(r.ds.RevenueSplits), "revenue splits")
	return nil
}

func (r *run) seedRentables() error {
	for _, row := range r.ds.Rentables {
		t, err := r.tool(row.Tool)
		if err != nil {
			return err
		}
		split, err := r.optionalSplit(row.Split)
		if err != nil {
			return err
		}
		rb, _, err := getOrCreate(r.tx, map[string]any{"tool_id": t.ID}, func() (*tools.Rentable, error) {
			cost, err := parseDecimal("cost", row.Cost)
			if err != nil {
				return nil, err
			}
			rb, err := tools.NewRentable(t.ID, tools.RentalPeriod(row.Period), cost)
			if err != nil {
				return nil, err
			}
			rb.RevenueSplitID = split
			return rb, nil
		})
		if err != nil {
			return fmt.Errorf("rentable %s: %w", row.Tool, err)
		}
		r.rentables[row.Tool] = rb
	}
	r.seeded(len(r.ds.Rentables), "rentables")
	return nil
}

func (r *run) seedOrders() error {
	for _, row := range r.ds.Orders {
		u, err := r.user(row.User)
		if err != nil {
			return err
		}
		split, err := r.optionalSplit(row.Split)
		if err != nil {
			return err
		}
		o, _, err := getOrCreate(r.tx, map[string]any{"user_id": u.ID, "description": row.Description}, func() (*billing.Order, error) {
			o, err := billing.NewOrder(u.ID, row.Description, row.Amount, split)
			if err != nil {
				return nil, err
			}
			o.Status = billing.OrderStatus(row.Status)
			o.IssuedAt = row.Issued.From(r.now)
			return o, nil
		})
		if err != nil {
			return fmt.Errorf("order %s/%s: %w", row.User, row.Description, err)
		}
		r.orders[OrderRef{User: row.User, Description: row.Description}] = o
	}
	r.seeded(len(r.ds.Orders), "orders")
	return nil
}

func (r *run) rentals() error {
	for _, row := range r.ds.Rentals {
		rb, err := lookup(r.rentables, "rentable", row.Rentable)
		if err != nil {
			return err
		}
		u, err := r.user(row.User)
		if err != nil {
			return err
		}
		order, err := r.optionalOrder(row.Order)
		if err != nil {
			return err
		}
		_, _, err = getOrCreate(r.tx, map[string]any{"rentable_id": rb.ID, "user_id": u.ID}, func() (*tools.Rental, error) {
			rental, err := tools.NewRental(rb.ID, u.ID, row.CheckedOut.From(r.now), row.Due.From(r.now))
			if err != nil {
				return nil, err
			}
			rental.Status = tools.RentalStatus(row.Status)
			if rental.Status == tools.RentalStatusReturned {
				rental.ReturnedAt = timePtr(rental.DueAt)
			}
			rental.OrderID = order
			return rental, nil
		})
		if err != nil {
			return fmt.Errorf("rental %s/%s: %w", row.Rentable, row.User, err)
		}
	}
	r.seeded(len(r.ds.Rentals), "rentals")
	return nil
}

func (r *run) invoices() error {
	for _, row := range r.ds.Invoices {
		u, err := r.user(row.User)
		if err != nil {
			return err
		}
		_, _, err = getOrCreate(r.tx, map[string]any{"stripe_invoice_id": row.StripeID}, func() (*billing.Invoice, error) {
			inv := &billing.Invoice{
				BaseEntity:      shared.NewBaseEntity(),
				UserID:          u.ID,
				StripeInvoiceID: row.StripeID,
				AmountDue:       row.AmountDue,
				AmountPaid:      row.AmountPaid,
				Status:          billing.InvoiceStatus(row.Status),
				LineItems:       []billing.LineItem{{Description: "Monthly dues", Amount: row.AmountDue}},
				IssuedAt:        row.Issued.From(r.now),
			}
			if row.Paid != nil {
				inv.PaidAt = timePtr(row.Paid.From(r.now))
			}
			return inv, nil
		})
		if err != nil {
			return fmt.Errorf("invoice %s: %w", row.StripeID, err)
		}
	}
	r.seeded(len(r.ds.Invoices), "invoices")
	return nil
}

func (r *run) payouts() error {
	start, err := time.Parse(shared.DateLayout, r.ds.PayoutPeriod.Start)
	if err != nil {
		return fmt.Errorf("payout period start: %w", err)
	}
	end, err := time.Parse(shared.DateLayout, r.ds.PayoutPeriod.End)
	if err != nil {
		return fmt.Errorf("payout period end: %w", err)
	}
	distributedAt := r.now.AddDate(0, 0, -15)
	for _, row := range r.ds.Payouts {
		payee := billing.PayeeKey{Type: billing.EntityType(row.PayeeType)}
		switch payee.Type {
		case billing.EntityTypeUser:
			u, err := r.user(row.Payee)
			if err != nil {
				return err
			}
			payee.ID = u.ID
		case billing.EntityTypeGuild:
			g, err := r.guild(row.Payee)
			if err != nil {
				return err
			}
			payee.ID = g.ID
		default:
			return fmt.Errorf("payout %s: unsupported payee type %q", row.Payee, row.PayeeType)
		}
		where := map[string]any{
			"payee_type":   payee.Type,
			"payee_id":     payee.ID,
			"period_start": shared.DateOf(start),
			"period_end":   shared.DateOf(end),
		}
		_, _, err = getOrCreate(r.tx, where, func() (*billing.Payout, error) {
			p := billing.NewPendingPayout(payee, row.Amount, start, end)
			p.Status = billing.PayoutStatus(row.Status)
			if p.Status == billing.PayoutStatusDistributed {
				p.DistributedAt = timePtr(distributedAt)
			}
			return p, nil
		})
		if err != nil {
			return fmt.Errorf("payout %s: %w", row.Payee, err)
		}
	}
	r.seeded(len(r.ds.Payouts), "payouts")
	return nil
}

func (r *run) subscriptionPlans() error {
	for _, row := range r.ds.SubscriptionPlans {
		p, _, err := getOrCreate(r.tx, map[string]any{"name": row.Name}, func() (*billing.SubscriptionPlan, error) {
			price, err := parseDecimal("price", row.Price)
			if err != nil {
				return nil, err
			}
			p, err := billing.NewSubscriptionPlan(row.Name, price, billing.Interval(row.Interval))
			if err != nil {
				return nil, err
			}
			p.Description = row.Description
			p.PlanType = row.PlanType
			return p, nil
		})
		if err != nil {
			return fmt.Errorf("subscription plan %s: %w", row.Name, err)
		}
		r.subPlans[p.Name] = p
	}
	r.seeded(len(r.ds.SubscriptionPlans), "subscription plans")
	return nil
}

func (r *run) memberSubscriptions() error {
	for _, row := range r.ds.MemberSubscriptions {
		u, err := r.user(row.User)
		if err != nil {
			return err
		}
		plan, err := lookup(r.subPlans, "subscription plan", row.Plan)
		if err != nil {
			return err
		}
		where := map[string]any{"user_id": u.ID, "subscription_plan_id": plan.ID}
		_, _, err = getOrCreate(r.tx, where, func() (*billing.MemberSubscription, error) {
			sub := &billing.MemberSubscription{
				BaseEntity:         shared.NewBaseEntity(),
				UserID:             u.ID,
				SubscriptionPlanID: plan.ID,
				Status:             billing.SubscriptionStatus(row.Status),
				StartsAt:           row.Starts.From(r.now),
			}
			if row.Ends != nil {
				sub.EndsAt = timePtr(row.Ends.From(r.now))
			}
			if row.Cancelled != nil {
				sub.CancelledAt = timePtr(row.Cancelled.From(r.now))
			}
			if sub.Status == billing.SubscriptionStatusActive {
				sub.NextBillingAt = timePtr(r.now.AddDate(0, 0, 30))
			}
			return sub, nil
		})
		if err != nil {
			return fmt.Errorf("subscription %s/%s: %w", row.User, row.Plan, err)
		}
	}
	r.seeded(len(r.ds.MemberSubscriptions), "member subscriptions")
	return nil
}

func (r *run) discountCodes() error {
	for _, row := range r.ds.DiscountCodes {
		c, _, err := getOrCreate(r.tx, map[string]any{"code": row.Code}, func() (*education.ClassDiscountCode, error) {
			value, err := parseDecimal("value", row.Value)
			if err != nil {
				return nil, err
			}
			c, err := education.NewClassDiscountCode(row.Code, education.DiscountType(row.Type), value)
			if err != nil {
				return nil, err
			}
			c.IsActive = row.Active
			return c, nil
		})
		if err != nil {
			return fmt.Errorf("discount code %s: %w", row.Code, err)
		}
		r.codes[c.Code] = c
	}
	r.seeded(len(r.ds.DiscountCodes), "discount codes")
	return nil
}

func (r *run) classes() error {
	for _, row := range r.ds.Classes {
		guildID, err := r.optionalGuild(row.Guild)
		if err != nil {
			return err
		}
		split, err := r.optionalSplit(row.Split)
		if err != nil {
			return err
		}
		instructor, err := r.user(row.Instructor)
		if err != nil {
			return err
		}
		codes := make([]education.ClassDiscountCode, 0, len(row.DiscountCodes))
		for _, code := range row.DiscountCodes {
			c, err := lookup(r.codes, "discount code", code)
			if err != nil {
				return err
			}
			codes = append(codes, *c)
		}

		c, created, err := getOrCreate(r.tx, map[string]any{"name": row.Name}, func() (*education.MakerClass, error) {
			price, err := parseDecimal("price", row.Price)
			if err != nil {
				return nil, err
			}
			c, err := education.NewMakerClass(row.Name, price)
			if err != nil {
				return nil, err
			}
			maxStudents := row.MaxStudents
			c.Description = row.Description
			c.Location = row.Location
			c.MaxStudents = &maxStudents
			c.GuildID = guildID
			c.RevenueSplitID = split
			c.Status = education.ClassStatus(row.Status)
			c.CreatedByID = idPtr(instructor.ID)
			if c.Status == education.ClassStatusPublished {
				c.PublishedAt = timePtr(r.now.AddDate(0, 0, -30))
			}
			c.Instructors = []identity.User{*instructor}
			c.DiscountCodes = codes
			return c, nil
		}, "Instructors.*", "DiscountCodes.*")
		if err != nil {
			return fmt.Errorf("class %s: %w", row.Name, err)
		}
		if !created {
			continue
		}

		day := row.SessionIn.From(r.now)
		starts := time.Date(day.Year(), day.Month(), day.Day(), classStartHour, 0, 0, 0, time.UTC)
		ends := time.Date(day.Year(), day.Month(), day.Day(), classEndHour, 0, 0, 0, time.UTC)
		session, err := education.NewClassSession(c.ID, starts, ends)
		if err != nil {
			return fmt.Errorf("class %s: %w", row.Name, err)
		}
		if err := r.tx.Create(session).Error; err != nil {
			return fmt.Errorf("class %s session: %w", row.Name, err)
		}

		for _, username := range row.Students {
			u, err := r.user(username)
			if err != nil {
				return err
			}
			_, _, err = getOrCreate(r.tx, map[string]any{"maker_class_id": c.ID, "email": u.Email}, func() (*education.Student, error) {
				st, err := education.NewStudent(c.ID, u.FullName(), u.Email)
				if err != nil {
					return nil, err
				}
				st.UserID = idPtr(u.ID)
				st.AmountPaid = c.Price
				return st, nil
			})
			if err != nil {
				return fmt.Errorf("class %s student %s: %w", row.Name, username, err)
			}
		}
	}
	r.seeded(len(r.ds.Classes), "maker classes")
	return nil
}

func (r *run) orientations() error {
	for _, row := range r.ds.Orientations {
		g, err := r.guild(row.Guild)
		if err != nil {
			return err
		}
		split, err := r.optionalSplit(row.Split)
		if err != nil {
			return err
		}
		orienter, err := r.user(row.Orienter)
		if err != nil {
			return err
		}
		covered := make([]tools.Tool, 0, len(row.Tools))
		for _, name := range row.Tools {
			t, err := r.tool(name)
			if err != nil {
				return err
			}
			covered = append(covered, *t)
		}

		o, created, err := getOrCreate(r.tx, map[string]any{"name": row.Name}, func() (*education.Orientation, error) {
			price, err := parseDecimal("price", row.Price)
			if err != nil {
				return nil, err
			}
			o, err := education.NewOrientation(g.ID, row.Name, row.Minutes, price)
			if err != nil {
				return nil, err
			}
			o.Description = row.Description
			o.RevenueSplitID = split
			o.Tools = covered
			o.Orienters = []identity.User{*orienter}
			return o, nil
		}, "Tools.*", "Orienters.*")
		if err != nil {
			return fmt.Errorf("orientation %s: %w", row.Name, err)
		}
		if !created {
			continue
		}

		for _, slot := range row.Scheduled {
			u, err := r.user(slot.User)
			if err != nil {
				return err
			}
			at := slot.In.From(r.now)
			_, _, err = getOrCreate(r.tx, map[string]any{"orientation_id": o.ID, "user_id": u.ID}, func() (*education.ScheduledOrientation, error) {
				return education.NewScheduledOrientation(o.ID, u.ID, at), nil
			})
			if err != nil {
				return fmt.Errorf("orientation %s booking %s: %w", row.Name, slot.User, err)
			}
		}
	}
	r.seeded(len(r.ds.Orientations), "orientations with scheduled sessions")
	return nil
}

func (r *run) seedLeads() error {
	for _, row := range r.ds.Leads {
		l, _, err := getOrCreate(r.tx, map[string]any{"email": row.Email}, func() (*outreach.Lead, error) {
			l, err := outreach.NewLead(row.Name, row.Email)
			if err != nil {
				return nil, err
			}
			l.Phone = row.Phone
			l.Status = outreach.LeadStatus(row.Status)
			l.Source = row.Source
			l.Interests = row.Interests
			l.GreenlightedForMembership = l.Status == outreach.LeadStatusConverted
			return l, nil
		})
		if err != nil {
			return fmt.Errorf("lead %s: %w", row.Email, err)
		}
		r.leads[l.Email] = l
	}
	r.seeded(len(r.ds.Leads), "leads")
	return nil
}

func (r *run) tours() error {
	for _, row := range r.ds.Tours {
		l, err := lookup(r.leads, "lead", row.Lead)
		if err != nil {
			return err
		}
		_, _, err = getOrCreate(r.tx, map[string]any{"lead_id": l.ID}, func() (*outreach.Tour, error) {
			at := row.At.From(r.now)
			t := outreach.NewTour(l.ID, at)
			t.Status = outreach.TourStatus(row.Status)
			t.CompletionNotes = row.Notes
			if t.Status == outreach.TourStatusCompleted {
				t.CompletedAt = timePtr(at)
			}
			return t, nil
		})
		if err != nil {
			return fmt.Errorf("tour %s: %w", row.Lead, err)
		}
	}
	r.seeded(len(r.ds.Tours), "tours")
	return nil
}

func (r *run) events() error {
	for _, row := range r.ds.Events {
		guildID, err := r.optionalGuild(row.Guild)
		if err != nil {
			return err
		}
		creator, err := r.user(row.Creator)
		if err != nil {
			return err
		}
		_, _, err = getOrCreate(r.tx, map[string]any{"name": row.Name}, func() (*outreach.Event, error) {
			return &outreach.Event{
				BaseEntity:     shared.NewBaseEntity(),
				GuildID:        guildID,
				Name:           row.Name,
				Description:    row.Description,
				StartsAt:       row.Starts.From(r.now),
				EndsAt:         timePtr(row.Ends.From(r.now)),
				Location:       row.Location,
				IsRecurring:    row.RecurrenceRule != "",
				RecurrenceRule: row.RecurrenceRule,
				CreatedByID:    idPtr(creator.ID),
				IsPublished:    row.Published,
			}, nil
		})
		if err != nil {
			return fmt.Errorf("event %s: %w", row.Name, err)
		}
	}
	r.seeded(len(r.ds.Events), "events")
	return nil
}

func (r *run) seedBuyables() error {
	for _, row := range r.ds.Buyables {
		guildID, err := r.optionalGuild(row.Guild)
		if err != nil {
			return err
		}
		split, err := r.optionalSplit(row.Split)
		if err != nil {
			return err
		}
		b, _, err := getOrCreate(r.tx, map[string]any{"name": row.Name}, func() (*outreach.Buyable, error) {
			price, err := parseDecimal("price", row.Price)
			if err != nil {
				return nil, err
			}
			b, err := outreach.NewBuyable(row.Name, price)
			if err != nil {
				return nil, err
			}
			b.Description = row.Description
			b.IsActive = row.Active
			b.GuildID = guildID
			b.RevenueSplitID = split
			return b, nil
		})
		if err != nil {
			return fmt.Errorf("buyable %s: %w", row.Name, err)
		}
		r.buyables[b.Name] = b
	}
	r.seeded(len(r.ds.Buyables), "buyables")
	return nil
}

func (r *run) purchases() error {
	for _, row := range r.ds.Purchases {
		b, err := lookup(r.buyables, "buyable", row.Buyable)
		if err != nil {
			return err
		}
		u, err := r.user(row.User)
		if err != nil {
			return err
		}
		order, err := r.optionalOrder(row.Order)
		if err != nil {
			return err
		}
		_, created, err := getOrCreate(r.tx, map[string]any{"buyable_id": b.ID, "user_id": u.ID}, func() (*outreach.BuyablePurchase, error) {
			p, err := outreach.NewBuyablePurchase(b.ID, u.ID, row.Quantity)
			if err != nil {
				return nil, err
			}
			p.PurchasedAt = row.Purchased.From(r.now)
			p.OrderID = order
			return p, nil
		})
		if err != nil {
			return fmt.Errorf("purchase %s/%s: %w", row.Buyable, row.User, err)
		}
		if created {
			err := r.tx.Model(&outreach.Buyable{}).Where("id = ?", b.ID).
				UpdateColumn("total_quantity_sold", gorm.Expr("total_quantity_sold + ?", row.Quantity)).Error
			if err != nil {
				return fmt.Errorf("purchase %s/%s: %w", row.Buyable, row.User, err)
			}
		}
	}
	r.seeded(len(r.ds.Purchases), "buyable purchases")
	return nil
}

func (r *run) schedules() error {
	var blocks int
	for _, row := range r.ds.Schedules {
		u, err := r.user(row.User)
		if err != nil {
			return err
		}
		sched, _, err := getOrCreate(r.tx, map[string]any{"user_id": u.ID}, func() (*membership.MemberSchedule, error) {
			return membership.NewMemberSchedule(u.ID), nil
		})
		if err != nil {
			return fmt.Errorf("schedule %s: %w", row.User, err)
		}
		for _, b := range row.Blocks {
			block, err := membership.NewScheduleBlock(sched.ID, b.Day, b.Start, b.End)
			if err != nil {
				return fmt.Errorf("schedule %s: %w", row.User, err)
			}
			where := map[string]any{"schedule_id": sched.ID, "day_of_week": block.DayOfWeek, "start_time": block.StartTime}
			_, _, err = getOrCreate(r.tx, where, func() (*membership.ScheduleBlock, error) {
				return block, nil
			})
			if err != nil {
				return fmt.Errorf("schedule %s: %w", row.User, err)
			}
			blocks++
		}
	}
	fmt.Fprintf(r.out, "Seeded %d member schedules with %d schedule blocks\n", len(r.ds.Schedules), blocks)
	return nil
}

func (r *run) toolDocuments() error {
	for _, row := range r.ds.ToolDocuments {
		t, err := r.tool(row.Owner)
		if err != nil {
			return err
		}
		uploader, err := r.user(row.UploadedBy)
		if err != nil {
			return err
		}
		where := map[string]any{"documentable_type": toolDocumentable, "documentable_id": t.ID, "name": row.Name}
		doc, created, err := getOrCreate(r.tx, where, func() (*tools.Document, error) {
			doc := &tools.Document{
				BaseEntity:       shared.NewBaseEntity(),
				DocumentableType: toolDocumentable,
				DocumentableID:   t.ID,
				Name:             row.Name,
				UploadedByID:     idPtr(uploader.ID),
			}
			doc.FilePath = toolDocumentKey(t.ID, doc.ID, row.Name)
			return doc, nil
		})
		if err != nil {
			return fmt.Errorf("tool document %s: %w", row.Name, err)
		}
		if created {
			if err := r.putPlaceholder(doc.FilePath); err != nil {
				return err
			}
		}
	}
	r.seeded(len(r.ds.ToolDocuments), "tool documents")
	return nil
}
