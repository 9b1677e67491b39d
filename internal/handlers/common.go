// internal/handlers/common.go
package handlers

import (
	"mime/multipart"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lokapasar/lokapasar-backend/internal/utils"
)

// parseUUIDParam reads a path parameter as a UUID, answering 400 itself when
// the value is malformed.
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid "+name+" format", nil)
		return uuid.Nil, false
	}
	return id, true
}

// unexpectedFileField returns the first file field name not in the allowed
// set, or "" when the form only uses expected fields.
func unexpectedFileField(form *multipart.Form, allowed ...string) string {
	allowedSet := make(map[string]bool, len(allowed))
	for _, name := range allowed {
		allowedSet[name] = true
	}
	for field := range form.File {
		if !allowedSet[field] {
			return field
		}
	}
	return ""
}
