package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	appmembership "github.com/plfog/backoffice/internal/application/membership"
)

// MemberHandler serves member reports
type MemberHandler struct {
	BaseHandler
	memberService *appmembership.MemberService
	spaceService  *appmembership.SpaceService
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(memberService *appmembership.MemberService, spaceService *appmembership.SpaceService) *MemberHandler {
	return &MemberHandler{memberService: memberService, spaceService: spaceService}
}

// Summary handles GET /api/v1/members/:id/summary
func (h *MemberHandler) Summary(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	summary, err := h.memberService.Summary(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toMemberSummaryResponse(summary))
}

// SpaceRevenue handles GET /api/v1/spaces/revenue?as_of=YYYY-MM-DD
func (h *MemberHandler) SpaceRevenue(c *gin.Context) {
	var req struct {
		AsOf string `form:"as_of"`
	}
	_ = c.ShouldBindQuery(&req)

	var asOf time.Time
	if req.AsOf != "" {
		t, err := parseDay("as_of", req.AsOf)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		asOf = t
	}
	report, err := h.spaceService.RevenueReport(c.Request.Context(), asOf)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toRevenueReportResponse(report))
}

// GuildHandler handles guild documents
type GuildHandler struct {
	BaseHandler
	guildService *appmembership.GuildService
}

// NewGuildHandler creates a new guild handler
func NewGuildHandler(guildService *appmembership.GuildService) *GuildHandler {
	return &GuildHandler{guildService: guildService}
}

// UploadDocument handles POST /api/v1/guilds/:id/documents as a multipart
// form with a "file" part and an optional "name" field
func (h *GuildHandler) UploadDocument(c *gin.Context) {
	guildID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "Missing file")
		return
	}
	file, err := header.Open()
	if err != nil {
		h.BadRequest(c, "Unreadable file")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	doc, err := h.guildService.UploadDocument(c.Request.Context(), guildID, appmembership.UploadInput{
		Name:        c.PostForm("name"),
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Body:        file,
		UploadedBy:  &userID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toGuildDocumentResponse(doc))
}

// ListDocuments handles GET /api/v1/guilds/:id/documents
func (h *GuildHandler) ListDocuments(c *gin.Context) {
	guildID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	docs, err := h.guildService.Documents(c.Request.Context(), guildID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out := make([]GuildDocumentResponse, 0, len(docs))
	for i := range docs {
		out = append(out, toGuildDocumentResponse(&docs[i]))
	}
	h.Success(c, out)
}

// DownloadDocument handles GET /api/v1/guild-documents/:id/download by
// redirecting to a presigned URL
func (h *GuildHandler) DownloadDocument(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	link, err := h.guildService.DownloadLink(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Redirect(http.StatusFound, link.URL)
}
