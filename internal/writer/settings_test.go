package writer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSettings_Validate(t *testing.T) {
	assert.NoError(t, DefaultSettings().Validate())
	assert.Equal(t, 1000, DefaultSettings().BufferThreshold)
	assert.NoError(t, Settings{BufferThreshold: 1}.Validate())
	assert.ErrorIs(t, Settings{}.Validate(), ErrInvalidThreshold)
}
