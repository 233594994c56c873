package tasks

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/rest/forms"
	"github.com/nhle/taskboard/pkg/rest/response"
)

type AddTimeEntryRequest struct {
	StartedAt       *time.Time `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at"`
	DurationMinutes int        `json:"duration_minutes"`
	Description     string     `json:"description"`
}

// AddTimeEntryForm parses a time entry body. Required: started_at.
type AddTimeEntryForm struct {
	Entry model.TimeEntry
}

func NewAddTimeEntryForm() *AddTimeEntryForm {
	return &AddTimeEntryForm{}
}

func (f *AddTimeEntryForm) ParseAndValidate(c *gin.Context) (response.Error, bool) {
	var request AddTimeEntryRequest
	if verr, ok := forms.DecodeJSON(c, &request); !ok {
		return verr, false
	}

	if request.StartedAt == nil {
		return response.NewValidationError(map[string]string{
			"started_at": forms.MissedValue,
		}), false
	}

	f.Entry = model.TimeEntry{
		StartedAt:       *request.StartedAt,
		EndedAt:         request.EndedAt,
		DurationMinutes: request.DurationMinutes,
		Description:     request.Description,
	}
	return response.Error{}, true
}
