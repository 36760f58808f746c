package validation

import (
	"testing"

	"github.com/jobboard/apiserver/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type jobForm struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required"`
	State       string `json:"state" validate:"omitempty,len=2"`
	Payment     string `json:"payment" validate:"omitempty,payment"`
}

func TestValidateStructNamesMissingFields(t *testing.T) {
	err := ValidateStruct(jobForm{})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, "missing required fields: title, description", err.Error())

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, []string{"title", "description"}, appErr.Fields)
}

func TestValidateStructRuleViolations(t *testing.T) {
	err := ValidateStruct(jobForm{Title: "x", Description: "y", State: "SPX", Payment: "semana"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "state must have length 2")
	assert.Contains(t, err.Error(), "payment must be one of hora, dia, servico")
}

func TestValidateStructOK(t *testing.T) {
	assert.NoError(t, ValidateStruct(jobForm{Title: "x", Description: "y", Payment: "hora"}))
}
