package handler

import (
	"time"

	"github.com/google/uuid"
	appmembership "github.com/plfog/backoffice/internal/application/membership"
	"github.com/plfog/backoffice/internal/domain/membership"
)

// MemberSummaryResponse is a member's standing and monthly spend
type MemberSummaryResponse struct {
	ID                 uuid.UUID          `json:"id"`
	DisplayName        string             `json:"display_name"`
	Status             string             `json:"status"`
	Plan               string             `json:"plan,omitempty"`
	MembershipDues     string             `json:"membership_dues"`
	StudioStorageTotal string             `json:"studio_storage_total"`
	TotalMonthlySpend  string             `json:"total_monthly_spend"`
	CurrentSpaces      []SpaceRefResponse `json:"current_spaces"`
	ActiveLeases       int                `json:"active_leases"`
	AsOf               string             `json:"as_of"`
}

// SpaceRefResponse identifies a space
type SpaceRefResponse struct {
	ID      uuid.UUID `json:"id"`
	SpaceID string    `json:"space_id"`
	Name    string    `json:"name"`
}

// RevenueLineResponse is one row of the space revenue report
type RevenueLineResponse struct {
	Space         SpaceRefResponse `json:"space"`
	Status        string           `json:"status"`
	FullPrice     *string          `json:"full_price"`
	ActualRevenue string           `json:"actual_revenue"`
	VacancyValue  string           `json:"vacancy_value"`
	RevenueLoss   *string          `json:"revenue_loss"`
}

// RevenueReportResponse totals potential against actual rent
type RevenueReportResponse struct {
	AsOf               string                `json:"as_of"`
	Lines              []RevenueLineResponse `json:"lines"`
	TotalFullPrice     string                `json:"total_full_price"`
	TotalActualRevenue string                `json:"total_actual_revenue"`
	TotalVacancyValue  string                `json:"total_vacancy_value"`
	TotalRevenueLoss   string                `json:"total_revenue_loss"`
	Occupied           int                   `json:"occupied"`
	Available          int                   `json:"available"`
}

// GuildDocumentResponse describes an uploaded document
type GuildDocumentResponse struct {
	ID         uuid.UUID  `json:"id"`
	GuildID    uuid.UUID  `json:"guild_id"`
	Name       string     `json:"name"`
	FilePath   string     `json:"file_path"`
	UploadedBy *uuid.UUID `json:"uploaded_by,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func spaceRef(s membership.Space) SpaceRefResponse {
	return SpaceRefResponse{ID: s.ID, SpaceID: s.SpaceID, Name: s.Name}
}

func toMemberSummaryResponse(s *appmembership.MemberSummary) MemberSummaryResponse {
	resp := MemberSummaryResponse{
		ID:                 s.Member.ID,
		DisplayName:        s.Member.DisplayName(),
		Status:             string(s.Member.Status),
		MembershipDues:     money(s.MembershipDues),
		StudioStorageTotal: money(s.StudioStorageTotal),
		TotalMonthlySpend:  money(s.TotalMonthlySpend),
		CurrentSpaces:      make([]SpaceRefResponse, 0, len(s.CurrentSpaces)),
		ActiveLeases:       len(s.ActiveLeases),
		AsOf:               s.AsOf.Format(time.DateOnly),
	}
	if s.Member.MembershipPlan != nil {
		resp.Plan = s.Member.MembershipPlan.Name
	}
	for _, sp := range s.CurrentSpaces {
		resp.CurrentSpaces = append(resp.CurrentSpaces, spaceRef(sp))
	}
	return resp
}

func toRevenueReportResponse(r *appmembership.RevenueReport) RevenueReportResponse {
	resp := RevenueReportResponse{
		AsOf:               r.AsOf.Format(time.DateOnly),
		Lines:              make([]RevenueLineResponse, 0, len(r.Lines)),
		TotalFullPrice:     money(r.TotalFullPrice),
		TotalActualRevenue: money(r.TotalActualRevenue),
		TotalVacancyValue:  money(r.TotalVacancyValue),
		TotalRevenueLoss:   money(r.TotalRevenueLoss),
		Occupied:           r.Occupied,
		Available:          r.Available,
	}
	for _, l := range r.Lines {
		resp.Lines = append(resp.Lines, RevenueLineResponse{
			Space:         spaceRef(l.Space),
			Status:        string(l.Space.Status),
			FullPrice:     moneyPtr(l.FullPrice),
			ActualRevenue: money(l.ActualRevenue),
			VacancyValue:  money(l.VacancyValue),
			RevenueLoss:   moneyPtr(l.RevenueLoss),
		})
	}
	return resp
}

func toGuildDocumentResponse(d *membership.GuildDocument) GuildDocumentResponse {
	return GuildDocumentResponse{
		ID:         d.ID,
		GuildID:    d.GuildID,
		Name:       d.Name,
		FilePath:   d.FilePath,
		UploadedBy: d.UploadedByID,
		CreatedAt:  d.CreatedAt,
	}
}
