package entry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Garnistarr/water-data-app/internal/directory"
	"github.com/Garnistarr/water-data-app/internal/store"
)

// Writer appends validated readings to the backing store.
type Writer struct {
	st store.Store

	now   func() time.Time
	newID func() uuid.UUID
}

func NewWriter(st store.Store) *Writer {
	return &Writer{st: st, now: time.Now, newID: uuid.New}
}

// Submit validates fields against the submitting user, then appends a single
// row. Validation failures never touch the store. Row-level store errors are
// surfaced verbatim as *RowInsertError; there is no automatic retry, so a
// resubmission after an ambiguous failure may produce a duplicate reading.
func (w *Writer) Submit(ctx context.Context, fields Fields, user directory.UserRecord) (uuid.UUID, error) {
	// Trim once so the validated facility is also the persisted one.
	fields.FacilityName = strings.TrimSpace(fields.FacilityName)
	if err := validate(fields, user); err != nil {
		return uuid.Nil, err
	}

	e := Entry{
		ID:             w.newID(),
		Timestamp:      w.now().UTC(),
		FacilityName:   fields.FacilityName,
		SamplingPoint:  fields.SamplingPoint,
		SubmitterEmail: directory.NormalizeEmail(user.Email),
		PasscodeUsed:   fields.Passcode,
		PH:             fields.PH,
		Turbidity:      fields.Turbidity,
		FreeChlorine:   fields.FreeChlorine,
	}

	rowErrs, err := w.st.InsertEntries(ctx, []store.EntryRow{{
		EntryID:       e.ID.String(),
		Timestamp:     e.Timestamp,
		FacilityName:  e.FacilityName,
		SamplingPoint: e.SamplingPoint,
		UserEmail:     e.SubmitterEmail,
		PasscodeUsed:  e.PasscodeUsed,
		PH:            e.PH,
		Turbidity:     e.Turbidity,
		FreeChlorine:  e.FreeChlorine,
	}})
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert entry: %w", err)
	}
	if len(rowErrs) > 0 {
		msgs := make([]string, 0, len(rowErrs))
		for _, re := range rowErrs {
			msgs = append(msgs, re.Message)
		}
		return uuid.Nil, &RowInsertError{Messages: msgs}
	}
	return e.ID, nil
}

func validate(fields Fields, user directory.UserRecord) error {
	if user.Role != directory.RoleProcessController {
		return &ValidationError{Field: "role", Reason: "only Process Controllers may submit readings"}
	}
	facility := fields.FacilityName
	if facility == "" {
		return &ValidationError{Field: "wtw_name", Reason: "facility selection is required"}
	}
	assigned := false
	for _, f := range user.Facilities {
		if f == facility {
			assigned = true
			break
		}
	}
	if !assigned {
		return &ValidationError{Field: "wtw_name", Reason: "facility is not assigned to you"}
	}
	if !ValidSamplingPoint(fields.SamplingPoint) {
		return &ValidationError{Field: "sampling_point", Reason: "unknown sampling point"}
	}
	if strings.TrimSpace(fields.Passcode) == "" {
		return &ValidationError{Field: "passcode", Reason: "passcode is required"}
	}
	if fields.PH < 0 || fields.PH > 14 {
		return &ValidationError{Field: "ph", Reason: "pH must be between 0 and 14"}
	}
	if fields.Turbidity < 0 {
		return &ValidationError{Field: "turbidity", Reason: "turbidity cannot be negative"}
	}
	if fields.FreeChlorine < 0 {
		return &ValidationError{Field: "free_chlorine", Reason: "free chlorine cannot be negative"}
	}
	return nil
}
