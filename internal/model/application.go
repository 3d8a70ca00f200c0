package model

import (
	"math"
	"time"
)

// Application statuses. The first three move forward through a user's own
// actions; the rest are asserted by the admin panel and accepted as-is.
const (
	AppDraft      = "draft"
	AppInProgress = "in_progress"
	AppSubmitted  = "submitted"
	AppProcessing = "processing"
	AppApproved   = "approved"
	AppRejected   = "rejected"
	AppExpired    = "expired"
)

type VisaApplication struct {
	ID                 string          `json:"id"`
	UserID             int64           `json:"user_id"`
	DestinationCountry string          `json:"destination_country"`
	VisaType           string          `json:"visa_type"`
	Status             string          `json:"status"`
	CurrentStep        int             `json:"current_step"`
	TotalSteps         int             `json:"total_steps"`
	ProgressPercentage int             `json:"progress_percentage"`
	DocumentsInfo      map[string]bool `json:"documents_info,omitempty"`
	SubmittedAt        *time.Time      `json:"submitted_at,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

func ValidAppStatus(s string) bool {
	switch s {
	case AppDraft, AppInProgress, AppSubmitted, AppProcessing, AppApproved, AppRejected, AppExpired:
		return true
	}
	return false
}

// Progress returns round(step/total*100). Total <= 0 yields 0 rather than
// dividing by zero.
func Progress(step, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(step) / float64(total) * 100))
}

// StatusForStep derives the status an application moves to when its current
// step changes. Reaching the final step submits; anything past the first step
// is in progress; otherwise the current status is kept.
func StatusForStep(step, total int, current string) string {
	if total > 0 && step == total {
		return AppSubmitted
	}
	if step > 1 {
		return AppInProgress
	}
	return current
}
