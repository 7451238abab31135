// Package entry builds and appends water quality readings. Entries are
// append-only: nothing in this app mutates or deletes a submitted row.
package entry

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SamplingPoints are the stages a reading can be taken at, in process order.
var SamplingPoints = []string{"Raw", "Settling", "Filter 1", "Filter 2", "Final"}

// ValidSamplingPoint reports whether p names a known stage.
func ValidSamplingPoint(p string) bool {
	for _, sp := range SamplingPoints {
		if sp == p {
			return true
		}
	}
	return false
}

// Fields is the submitted form content before validation.
type Fields struct {
	FacilityName  string
	SamplingPoint string
	Passcode      string
	PH            float64
	Turbidity     float64
	FreeChlorine  float64
}

// Entry is one persisted reading.
type Entry struct {
	ID             uuid.UUID
	Timestamp      time.Time // always UTC
	FacilityName   string
	SamplingPoint  string
	SubmitterEmail string
	PasscodeUsed   string
	PH             float64
	Turbidity      float64
	FreeChlorine   float64
}

// ValidationError rejects a submission before any store contact. Field names
// match the form so the UI can render inline messages.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// RowInsertError surfaces store row-level rejections verbatim. The entry is
// not retried; the submitter decides whether to resubmit.
type RowInsertError struct {
	Messages []string
}

func (e *RowInsertError) Error() string {
	return fmt.Sprintf("store rejected the record: %v", e.Messages)
}
