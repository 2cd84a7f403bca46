package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type groupForm struct {
	Title string `json:"title" validate:"required,max=200"`
	Slug  string `json:"slug" validate:"required,max=250,slug"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name   string
		form   groupForm
		fields map[string]string
	}{
		{
			name: "valid",
			form: groupForm{Title: "Cats", Slug: "cats_and-dogs1"},
		},
		{
			name:   "missing title",
			form:   groupForm{Slug: "cats"},
			fields: map[string]string{"title": "This field is required."},
		},
		{
			name:   "bad slug",
			form:   groupForm{Title: "Cats", Slug: "cats and dogs"},
			fields: map[string]string{"slug": "Enter a valid slug consisting of letters, numbers, underscores or hyphens."},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateStruct(tc.form)
			if tc.fields == nil {
				require.NoError(t, err)
				return
			}
			ve, ok := IsValidation(err)
			require.True(t, ok, "expected validation error, got %v", err)
			for field, msg := range tc.fields {
				assert.Equal(t, []string{msg}, ve.Fields[field])
			}
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	ve := NewValidationError("text", "This field is required.")
	ve.Add(NonFieldErrors, "boom")
	assert.Equal(t, "validation failed: non_field_errors: boom, text: This field is required.", ve.Error())
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "cats-and-dogs", Slugify("  Cats and   Dogs "))
	assert.Equal(t, "leo_tolstoy", Slugify("Leo_Tolstoy!"))
	assert.Equal(t, "", Slugify("!!!"))
}
