package membership

import (
	"context"
	"time"

	"github.com/plfog/backoffice/internal/domain/membership"
	"github.com/plfog/backoffice/internal/domain/shared"
	"github.com/plfog/backoffice/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SpaceRevenueLine is one space in the revenue report. FullPrice and
// RevenueLoss are nil for unpriced spaces.
type SpaceRevenueLine struct {
	Space         membership.Space
	FullPrice     *decimal.Decimal
	ActualRevenue decimal.Decimal
	VacancyValue  decimal.Decimal
	RevenueLoss   *decimal.Decimal
}

// RevenueReport compares what every space could earn with what it does
type RevenueReport struct {
	AsOf               time.Time
	Lines              []SpaceRevenueLine
	TotalFullPrice     decimal.Decimal
	TotalActualRevenue decimal.Decimal
	TotalVacancyValue  decimal.Decimal
	TotalRevenueLoss   decimal.Decimal
	Occupied           int
	Available          int
}

// SpaceService reports on spaces
type SpaceService struct {
	spaceRepo membership.SpaceRepository
	logger    *zap.Logger
}

// NewSpaceService creates a space service
func NewSpaceService(spaceRepo membership.SpaceRepository, logger *zap.Logger) *SpaceService {
	return &SpaceService{spaceRepo: spaceRepo, logger: logger}
}

// RevenueReport builds the per-space revenue picture as of asOf. A zero
// asOf means today.
func (s *SpaceService) RevenueReport(ctx context.Context, asOf time.Time) (*RevenueReport, error) {
	if asOf.IsZero() {
		asOf = shared.Today()
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "membership", "revenue_report", "as_of", asOf.Format(shared.DateLayout))
	defer span.End()

	rows, err := s.spaceRepo.WithRevenue(ctx, asOf)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	report := &RevenueReport{
		AsOf:               asOf,
		Lines:              make([]SpaceRevenueLine, 0, len(rows)),
		TotalFullPrice:     decimal.Zero,
		TotalActualRevenue: decimal.Zero,
		TotalVacancyValue:  decimal.Zero,
		TotalRevenueLoss:   decimal.Zero,
	}
	for _, row := range rows {
		line := SpaceRevenueLine{
			Space:         row.Space,
			FullPrice:     row.Space.FullPrice(),
			ActualRevenue: row.ActiveLeaseRentTotal,
			VacancyValue:  row.Space.VacancyValue(),
		}
		if line.FullPrice != nil {
			loss := line.FullPrice.Sub(line.ActualRevenue)
			line.RevenueLoss = &loss
			report.TotalFullPrice = report.TotalFullPrice.Add(*line.FullPrice)
			report.TotalRevenueLoss = report.TotalRevenueLoss.Add(loss)
		}
		report.TotalActualRevenue = report.TotalActualRevenue.Add(line.ActualRevenue)
		report.TotalVacancyValue = report.TotalVacancyValue.Add(line.VacancyValue)

		switch row.Space.Status {
		case membership.SpaceStatusOccupied:
			report.Occupied++
		case membership.SpaceStatusAvailable:
			report.Available++
		}
		report.Lines = append(report.Lines, line)
	}

	telemetry.SetAttributes(span, "spaces", len(report.Lines))
	s.logger.Debug("Revenue report built",
		zap.Int("spaces", len(report.Lines)),
		zap.String("actual", shared.FormatDecimal(report.TotalActualRevenue)),
		zap.String("loss", shared.FormatDecimal(report.TotalRevenueLoss)))
	return report, nil
}

// Available lists spaces whose status is available
func (s *SpaceService) Available(ctx context.Context) ([]membership.Space, error) {
	return s.spaceRepo.FindAvailable(ctx)
}
