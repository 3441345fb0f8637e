package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type createInput struct {
	Kind string `json:"kind" validate:"required,oneof=audio video"`
	URL  string `json:"url" validate:"required,url"`
}

func TestValidate(t *testing.T) {
	v := NewValidator()

	errs, ok := v.Validate(createInput{Kind: "audio", URL: "https://example.com/a.mp3"})
	assert.True(t, ok)
	assert.Empty(t, errs)

	errs, ok = v.Validate(createInput{Kind: "image", URL: "nope"})
	assert.False(t, ok)
	require.Len(t, errs, 2)
	assert.Equal(t, ValidationError{Field: "kind", Code: "ONEOF", Message: "kind must be one of: audio video"}, errs[0])
	assert.Equal(t, ValidationError{Field: "url", Code: "URL", Message: "url must be a valid URL"}, errs[1])
}
