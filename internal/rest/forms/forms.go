// Package forms parses and validates request bodies before they reach the
// services. A form reports structural problems (unreadable body, missing
// required values) itself; domain constraints are enforced by the services,
// which report every violated field at once.
package forms

import (
	"encoding/json"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/nhle/taskboard/pkg/rest/response"
)

// MissedValue is the message used for absent required fields.
const MissedValue = "missed value"

// DecodeJSON reads and unmarshals the request body into dst, resolving
// failures to the appropriate response error.
func DecodeJSON(c *gin.Context, dst interface{}) (response.Error, bool) {
	body, err := io.ReadAll(c.Request.Body)
	defer c.Request.Body.Close()
	if err != nil {
		return response.NewInternalError(), false
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return response.NewValidationError(map[string]string{
			"body": "invalid request structure",
		}), false
	}
	return response.Error{}, true
}
