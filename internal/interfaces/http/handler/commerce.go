package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/plfog/backoffice/internal/application/education"
	"github.com/plfog/backoffice/internal/application/outreach"
	"github.com/plfog/backoffice/internal/application/tools"
)

// CommerceHandler covers the flows that put an order on a member's tab:
// class enrollment, tool rental and counter purchases
type CommerceHandler struct {
	BaseHandler
	enrollments *education.EnrollmentService
	rentals     *tools.RentalService
	purchases   *outreach.PurchaseService
}

// NewCommerceHandler creates a new commerce handler
func NewCommerceHandler(enrollments *education.EnrollmentService, rentals *tools.RentalService, purchases *outreach.PurchaseService) *CommerceHandler {
	return &CommerceHandler{enrollments: enrollments, rentals: rentals, purchases: purchases}
}

// EnrollRequest registers a student. UserID links a member account and
// charges their tab; without it the registration is a walk-in.
type EnrollRequest struct {
	UserID       *uuid.UUID `json:"user_id"`
	Name         string     `json:"name" binding:"required,max=255"`
	Email        string     `json:"email" binding:"required,email,max=254"`
	Phone        string     `json:"phone" binding:"max=20"`
	DiscountCode string     `json:"discount_code" binding:"max=50"`
}

// CheckoutRequest starts a rental. UserID defaults to the caller.
type CheckoutRequest struct {
	RentableID uuid.UUID  `json:"rentable_id" binding:"required"`
	UserID     *uuid.UUID `json:"user_id"`
	DueAt      time.Time  `json:"due_at" binding:"required"`
}

// PurchaseRequest buys a quantity of an item. UserID defaults to the caller.
type PurchaseRequest struct {
	UserID   *uuid.UUID `json:"user_id"`
	Quantity int        `json:"quantity" binding:"omitempty,min=1"`
}

// Enroll handles POST /api/v1/classes/:id/enroll
func (h *CommerceHandler) Enroll(c *gin.Context) {
	classID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}
	result, err := h.enrollments.Enroll(c.Request.Context(), classID, education.EnrollInput{
		UserID:       req.UserID,
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		DiscountCode: req.DiscountCode,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Checkout handles POST /api/v1/rentals/checkout
func (h *CommerceHandler) Checkout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}
	userID, ok := h.subject(c, req.UserID)
	if !ok {
		return
	}
	rental, err := h.rentals.Checkout(c.Request.Context(), req.RentableID, userID, req.DueAt)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, rental)
}

// Return handles POST /api/v1/rentals/:id/return
func (h *CommerceHandler) Return(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	result, err := h.rentals.Return(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Purchase handles POST /api/v1/buyables/:id/purchase
func (h *CommerceHandler) Purchase(c *gin.Context) {
	buyableID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req PurchaseRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.bindError(c, err)
			return
		}
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	userID, ok := h.subject(c, req.UserID)
	if !ok {
		return
	}
	result, err := h.purchases.Purchase(c.Request.Context(), buyableID, userID, req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// subject is the user an action is for: the named user or the caller
func (h *CommerceHandler) subject(c *gin.Context, named *uuid.UUID) (uuid.UUID, bool) {
	if named != nil && *named != uuid.Nil {
		return *named, true
	}
	return h.requireUser(c)
}
