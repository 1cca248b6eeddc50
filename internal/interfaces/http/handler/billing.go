package handler

import (
	"bytes"
	"strings"

	"github.com/gin-gonic/gin"
	appbilling "github.com/plfog/backoffice/internal/application/billing"
	"github.com/plfog/backoffice/internal/domain/billing"
	"github.com/plfog/backoffice/internal/domain/shared"
)

// BillingHandler runs the billing jobs over HTTP
type BillingHandler struct {
	BaseHandler
	tabService    *appbilling.TabService
	payoutService *appbilling.PayoutService
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(tabService *appbilling.TabService, payoutService *appbilling.PayoutService) *BillingHandler {
	return &BillingHandler{tabService: tabService, payoutService: payoutService}
}

// PayoutReportRequest bounds the report, both dates inclusive
type PayoutReportRequest struct {
	Start string `json:"start" binding:"required,date"`
	End   string `json:"end" binding:"required,date"`
}

// PayoutResponse is one pending or distributed payout
type PayoutResponse struct {
	*billing.Payout
	AmountDisplay string `json:"amount_display"`
}

// BillTabsResponse is the run summary plus its progress lines
type BillTabsResponse struct {
	*appbilling.BillTabsResult
	Log []string `json:"log"`
}

// PayoutReport handles POST /api/v1/billing/payout-report
func (h *BillingHandler) PayoutReport(c *gin.Context) {
	var req PayoutReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}
	start, err := parseDay("start", req.Start)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	end, err := parseDay("end", req.End)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if end.Before(start) {
		h.BadRequest(c, "end must not be before start")
		return
	}

	payouts, err := h.payoutService.ProcessPayoutReport(c.Request.Context(), start, end)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out := make([]PayoutResponse, 0, len(payouts))
	for _, p := range payouts {
		out = append(out, toPayoutResponse(p))
	}
	h.Created(c, out)
}

// BillTabs handles POST /api/v1/billing/bill-tabs
func (h *BillingHandler) BillTabs(c *gin.Context) {
	var progress bytes.Buffer
	result, err := h.tabService.BillTabs(c.Request.Context(), &progress)
	if err != nil && result == nil {
		h.HandleError(c, err)
		return
	}
	if err != nil {
		_ = c.Error(err)
	}
	lines := strings.Split(strings.TrimRight(progress.String(), "\n"), "\n")
	if len(lines) == 1 && lines[0] == "" {
		lines = []string{}
	}
	h.Success(c, BillTabsResponse{BillTabsResult: result, Log: lines})
}

// DistributePayout handles POST /api/v1/billing/payouts/:id/distribute
func (h *BillingHandler) DistributePayout(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	payout, err := h.payoutService.DistributePayout(c.Request.Context(), id, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPayoutResponse(payout))
}

func toPayoutResponse(p *billing.Payout) PayoutResponse {
	return PayoutResponse{Payout: p, AmountDisplay: shared.FormatCents(p.Amount)}
}
