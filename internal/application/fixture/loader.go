package fixture

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/plfog/backoffice/internal/domain/membership"
	"github.com/plfog/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Namespace seeds the deterministic ids of loaded records
var Namespace = uuid.NewSHA1(uuid.NameSpaceDNS, []byte("fixtures.plfog"))

// RecordID is the id a fixture record is stored under when no existing
// row matches its natural key
func RecordID(model string, pk int) uuid.UUID {
	return uuid.NewSHA1(Namespace, []byte(fmt.Sprintf("%s:%d", model, pk)))
}

// Repositories are the stores a fixture is loaded into
type Repositories struct {
	Plans   membership.PlanRepository
	Guilds  membership.GuildRepository
	Members membership.MemberRepository
	Spaces  membership.SpaceRepository
	Leases  membership.LeaseRepository
}

// Loader upserts fixture records. Each record is matched to an existing
// row by natural key (plan name, guild name, legal name, space id, lease
// tenant+space+start) so loading the same file twice changes nothing.
type Loader struct {
	repos    Repositories
	validate *validator.Validate
	logger   *zap.Logger

	// fixture pk key ("model:pk") -> stored id
	ids map[string]uuid.UUID
}

// NewLoader creates a fixture loader
func NewLoader(repos Repositories, logger *zap.Logger) *Loader {
	return &Loader{
		repos:    repos,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// LoadResult counts stored records per model
type LoadResult struct {
	Loaded map[string]int
	Failed int
}

// Total is the number of stored records
func (r *LoadResult) Total() int {
	n := 0
	for _, c := range r.Loaded {
		n += c
	}
	return n
}

type rawRecord struct {
	Model  string          `json:"model"`
	PK     int             `json:"pk"`
	Fields json.RawMessage `json:"fields"`
}

// Load reads a fixture file and stores every record in file order. A
// record that fails is reported and skipped; the others still load.
func (l *Loader) Load(ctx context.Context, r io.Reader) (*LoadResult, error) {
	var records []rawRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}

	l.ids = make(map[string]uuid.UUID, len(records))
	result := &LoadResult{Loaded: make(map[string]int)}
	var errs *multierror.Error

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := l.loadRecord(ctx, rec); err != nil {
			result.Failed++
			errs = multierror.Append(errs, fmt.Errorf("%s pk=%d: %w", rec.Model, rec.PK, err))
			continue
		}
		result.Loaded[rec.Model]++
	}

	l.logger.Info("Fixture loaded",
		zap.Int("records", result.Total()),
		zap.Int("failed", result.Failed))
	return result, errs.ErrorOrNil()
}

func (l *Loader) loadRecord(ctx context.Context, rec rawRecord) error {
	switch rec.Model {
	case ModelPlan:
		var f PlanFields
		if err := l.decode(rec, &f); err != nil {
			return err
		}
		return l.loadPlan(ctx, rec.PK, f)
	case ModelGuild:
		var f GuildFields
		if err := l.decode(rec, &f); err != nil {
			return err
		}
		return l.loadGuild(ctx, rec.PK, f)
	case ModelMember:
		var f MemberFields
		if err := l.decode(rec, &f); err != nil {
			return err
		}
		return l.loadMember(ctx, rec.PK, f)
	case ModelSpace:
		var f SpaceFields
		if err := l.decode(rec, &f); err != nil {
			return err
		}
		return l.loadSpace(ctx, rec.PK, f)
	case ModelLease:
		var f LeaseFields
		if err := l.decode(rec, &f); err != nil {
			return err
		}
		return l.loadLease(ctx, rec.PK, f)
	default:
		return fmt.Errorf("unsupported model %q", rec.Model)
	}
}

func (l *Loader) decode(rec rawRecord, fields any) error {
	if err := json.Unmarshal(rec.Fields, fields); err != nil {
		return fmt.Errorf("decode fields: %w", err)
	}
	if err := l.validate.Struct(fields); err != nil {
		return fmt.Errorf("invalid fields: %w", err)
	}
	return nil
}

func key(model string, pk int) string {
	return fmt.Sprintf("%s:%d", model, pk)
}

// resolve picks the id of the existing row, or the deterministic id
func (l *Loader) resolve(model string, pk int, existing uuid.UUID, err error) (uuid.UUID, error) {
	switch {
	case err == nil:
		l.ids[key(model, pk)] = existing
		return existing, nil
	case errors.Is(err, shared.ErrNotFound):
		id := RecordID(model, pk)
		l.ids[key(model, pk)] = id
		return id, nil
	default:
		return uuid.Nil, err
	}
}

func (l *Loader) ref(model string, pk int) (uuid.UUID, error) {
	id, ok := l.ids[key(model, pk)]
	if !ok {
		return uuid.Nil, fmt.Errorf("unknown %s pk %d", model, pk)
	}
	return id, nil
}

func entity(id uuid.UUID, createdAt string) (shared.BaseEntity, error) {
	e := shared.NewBaseEntityWithID(id)
	if createdAt == "" {
		return e, nil
	}
	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return e, fmt.Errorf("invalid created_at %q", createdAt)
	}
	e.CreatedAt = t.UTC()
	return e, nil
}

func decimalOf(s string) decimal.Decimal {
	// numeric was validated
	return decimal.RequireFromString(s)
}

func optionalDecimal(s *string) *decimal.Decimal {
	if s == nil {
		return nil
	}
	d := decimalOf(*s)
	return &d
}

func optionalDate(s *string) *time.Time {
	if s == nil {
		return nil
	}
	d, err := shared.ParseDate(*s)
	if err != nil {
		return nil
	}
	return &d
}

func (l *Loader) loadPlan(ctx context.Context, pk int, f PlanFields) error {
	var existing uuid.UUID
	found, err := l.repos.Plans.FindByName(ctx, f.Name)
	if found != nil {
		existing = found.ID
	}
	id, err := l.resolve(ModelPlan, pk, existing, err)
	if err != nil {
		return err
	}
	base, err := entity(id, f.CreatedAt)
	if err != nil {
		return err
	}
	return l.repos.Plans.Save(ctx, &membership.MembershipPlan{
		BaseEntity:      base,
		Name:            f.Name,
		MonthlyPrice:    decimalOf(f.MonthlyPrice),
		DepositRequired: optionalDecimal(f.DepositRequired),
		Notes:           f.Notes,
	})
}

func (l *Loader) loadGuild(ctx context.Context, pk int, f GuildFields) error {
	var existing uuid.UUID
	found, err := l.repos.Guilds.FindByName(ctx, f.Name)
	if found != nil {
		existing = found.ID
	}
	id, err := l.resolve(ModelGuild, pk, existing, err)
	if err != nil {
		return err
	}
	base, err := entity(id, f.CreatedAt)
	if err != nil {
		return err
	}
	guild := &membership.Guild{
		BaseEntity: base,
		Name:       f.Name,
		IsActive:   true,
		Notes:      f.Notes,
	}
	if found != nil {
		// keep fields the fixture does not carry
		guild.Slug = found.Slug
		guild.Intro = found.Intro
		guild.Description = found.Description
		guild.Icon = found.Icon
		guild.IsActive = found.IsActive
	}
	if f.GuildLead != nil {
		lead, err := l.ref(ModelMember, *f.GuildLead)
		if err != nil {
			return err
		}
		guild.GuildLeadID = &lead
	}
	return l.repos.Guilds.Save(ctx, guild)
}

func (l *Loader) loadMember(ctx context.Context, pk int, f MemberFields) error {
	if f.User != nil {
		return errors.New("members linked to users cannot be loaded from a fixture")
	}
	plan, err := l.ref(ModelPlan, f.MembershipPlan)
	if err != nil {
		return err
	}

	var existing uuid.UUID
	found, err := l.repos.Members.FindByLegalName(ctx, f.FullLegalName)
	if found != nil {
		existing = found.ID
	}
	id, err := l.resolve(ModelMember, pk, existing, err)
	if err != nil {
		return err
	}
	base, err := entity(id, f.CreatedAt)
	if err != nil {
		return err
	}
	member := &membership.Member{
		BaseEntity:                   base,
		FullLegalName:                f.FullLegalName,
		PreferredName:                f.PreferredName,
		Email:                        f.Email,
		Phone:                        f.Phone,
		BillingName:                  f.BillingName,
		EmergencyContactName:         f.EmergencyContactName,
		EmergencyContactPhone:        f.EmergencyContactPhone,
		EmergencyContactRelationship: f.EmergencyContactRelationship,
		MembershipPlanID:             plan,
		Status:                       membership.MemberStatus(f.Status),
		Role:                         membership.MemberRole(f.Role),
		JoinDate:                     optionalDate(f.JoinDate),
		CancellationDate:             optionalDate(f.CancellationDate),
		CommittedUntil:               optionalDate(f.CommittedUntil),
		Notes:                        f.Notes,
	}
	if found != nil {
		member.UserID = found.UserID
	}
	return l.repos.Members.Save(ctx, member)
}

func (l *Loader) loadSpace(ctx context.Context, pk int, f SpaceFields) error {
	var existing uuid.UUID
	found, err := l.repos.Spaces.FindBySpaceID(ctx, f.SpaceID)
	if found != nil {
		existing = found.ID
	}
	id, err := l.resolve(ModelSpace, pk, existing, err)
	if err != nil {
		return err
	}
	base, err := entity(id, f.CreatedAt)
	if err != nil {
		return err
	}
	space := &membership.Space{
		BaseEntity:   base,
		SpaceID:      f.SpaceID,
		Name:         f.Name,
		SpaceType:    membership.SpaceType(f.SpaceType),
		SizeSqft:     optionalDecimal(f.SizeSqft),
		Width:        optionalDecimal(f.Width),
		Depth:        optionalDecimal(f.Depth),
		RatePerSqft:  optionalDecimal(f.RatePerSqft),
		IsRentable:   f.IsRentable,
		ManualPrice:  optionalDecimal(f.ManualPrice),
		Status:       membership.SpaceStatus(f.Status),
		FloorplanRef: f.FloorplanRef,
		Notes:        f.Notes,
	}
	if found != nil {
		space.SubletGuildID = found.SubletGuildID
	}
	return l.repos.Spaces.Save(ctx, space)
}

func (l *Loader) loadLease(ctx context.Context, pk int, f LeaseFields) error {
	tenantType := membership.TenantType(f.ContentType[1])
	var tenantModel string
	switch tenantType {
	case membership.TenantTypeMember:
		tenantModel = ModelMember
	case membership.TenantTypeGuild:
		tenantModel = ModelGuild
	default:
		return fmt.Errorf("unsupported lease tenant %q", f.ContentType[1])
	}
	tenantID, err := l.ref(tenantModel, f.ObjectID)
	if err != nil {
		return err
	}
	spaceID, err := l.ref(ModelSpace, f.Space)
	if err != nil {
		return err
	}
	start, err := shared.ParseDate(f.StartDate)
	if err != nil {
		return err
	}
	tenant := membership.TenantRef{Type: tenantType, ID: tenantID}

	var existing uuid.UUID
	found, err := l.repos.Leases.FindByTenantAndSpace(ctx, tenant, spaceID, start)
	if found != nil {
		existing = found.ID
	}
	id, err := l.resolve(ModelLease, pk, existing, err)
	if err != nil {
		return err
	}
	base, err := entity(id, f.CreatedAt)
	if err != nil {
		return err
	}
	return l.repos.Leases.Save(ctx, &membership.Lease{
		BaseEntity:        base,
		TenantType:        tenant.Type,
		TenantID:          tenant.ID,
		SpaceID:           spaceID,
		LeaseType:         membership.LeaseType(f.LeaseType),
		BasePrice:         decimalOf(f.BasePrice),
		MonthlyRent:       decimalOf(f.MonthlyRent),
		StartDate:         start,
		EndDate:           optionalDate(f.EndDate),
		CommittedUntil:    optionalDate(f.CommittedUntil),
		DepositRequired:   optionalDecimal(f.DepositRequired),
		DepositPaidDate:   optionalDate(f.DepositPaidDate),
		DepositPaidAmount: optionalDecimal(f.DepositPaidAmount),
		DiscountReason:    f.DiscountReason,
		IsSplit:           f.IsSplit,
		PrepaidThrough:    optionalDate(f.PrepaidThrough),
		Notes:             f.Notes,
	})
}
