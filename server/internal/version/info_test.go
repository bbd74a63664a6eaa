package version_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/recordstore/server/internal/version"
)

func TestGetInfo(t *testing.T) {
	info, err := version.GetInfo()
	require.NoError(t, err)
	require.NotNil(t, info)
}

func TestInfoString(t *testing.T) {
	assert.Equal(t, "v1.2.0", (&version.Info{Version: "v1.2.0"}).String())
	assert.Equal(t, "v1.2.0 (abc123+dirty)", (&version.Info{
		Version:  "v1.2.0",
		Revision: "abc123+dirty",
	}).String())
}
