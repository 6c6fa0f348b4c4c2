package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	DoctorID int64  `json:"doctor_id" validate:"required,gt=0"`
	Date     string `json:"appointment_date" validate:"required,date"`
	Reason   string `json:"reason" validate:"required,min=5,max=500"`
	Payment  string `json:"payment_status" validate:"omitempty,oneof=PENDING PROCESSING"`
}

func TestValidateUsesJSONFieldNames(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&sampleRequest{DoctorID: 1, Date: "2030-01-07", Reason: "ok"})
	require.Error(t, err)

	fields := v.FormatValidationErrors(err)
	assert.Equal(t, map[string]string{"reason": "reason must be at least 5 characters"}, fields)
}

func TestValidateReportsEveryField(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&sampleRequest{DoctorID: 0, Date: "07/01/2030", Reason: "chest pain", Payment: "PAID"})
	require.Error(t, err)

	fields := v.FormatValidationErrors(err)
	assert.Equal(t, "doctor_id is required", fields["doctor_id"])
	assert.Equal(t, "appointment_date must be a date in YYYY-MM-DD format", fields["appointment_date"])
	assert.Equal(t, "payment_status must be one of: PENDING PROCESSING", fields["payment_status"])
	assert.NotContains(t, fields, "reason")
}

func TestValidateCountsRunes(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&sampleRequest{DoctorID: 3, Date: "2030-01-07", Reason: "dolor"})
	assert.NoError(t, err)

	// five runes, ten bytes
	err = v.Validate(&sampleRequest{DoctorID: 3, Date: "2030-01-07", Reason: "ñáéíó"})
	assert.NoError(t, err)
}

func TestFormatValidationErrorsIgnoresOtherErrors(t *testing.T) {
	v := NewValidator()
	assert.Empty(t, v.FormatValidationErrors(assert.AnError))
}
