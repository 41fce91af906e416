package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserAgent(t *testing.T) {
	assert.NotEmpty(t, Revision())
	assert.True(t, strings.HasPrefix(UserAgent(), "ideo/"))
}
