//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestDetectActor ensures both fields are populated on a normal host.
func TestDetectActor(t *testing.T) {
	t.Parallel()

	actor, err := DetectActor()
	require.NoError(t, err)
	require.NotEmpty(t, actor.Hostname)
	require.NotEmpty(t, actor.Username)
}
