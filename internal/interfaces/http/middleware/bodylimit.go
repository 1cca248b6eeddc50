package middleware

import (
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"github.com/plfog/backoffice/internal/interfaces/http/dto"
)

// BodyLimit caps request bodies at maxBytes. routes raises (or lowers) the
// cap for individual routes, keyed by gin route pattern such as
// "/api/v1/guilds/:id/documents". A limit of zero or less disables the
// check.
func BodyLimit(maxBytes int64, routes map[string]int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := maxBytes
		if l, ok := routes[c.FullPath()]; ok {
			limit = l
		}
		if limit <= 0 || c.Request.Body == nil || c.Request.Body == http.NoBody {
			c.Next()
			return
		}
		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
				dto.ErrCodePayloadTooLarge,
				"Request body exceeds "+humanize.IBytes(uint64(limit)),
				GetRequestID(c),
			))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
