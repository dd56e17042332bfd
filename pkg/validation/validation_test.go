package validation

import (
	"testing"

	"github.com/sangkips/invoicely-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type line struct {
	Description string `json:"description" validate:"required"`
}

type draft struct {
	Email string `json:"email" validate:"required,email"`
	Lines []line `json:"items" validate:"dive"`
}

func TestStructReportsJSONFieldPaths(t *testing.T) {
	err := Struct(draft{
		Email: "not-an-email",
		Lines: []line{{Description: "ok"}, {}},
	})
	require.Error(t, err)
	require.True(t, apperror.IsKind(err, apperror.KindValidation))

	fields := map[string]string{}
	for _, fe := range apperror.GetAppError(err).Errors {
		fields[fe.Field] = fe.Message
	}
	assert.Equal(t, "must be a valid email address", fields["email"])
	assert.Equal(t, "is required", fields["items[1].description"])
	assert.Len(t, fields, 2)
}

func TestStructAcceptsValidInput(t *testing.T) {
	assert.NoError(t, Struct(draft{Email: "a@b.co", Lines: []line{{Description: "x"}}}))
}
