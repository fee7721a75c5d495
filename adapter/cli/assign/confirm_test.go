package assign

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskpilot/taskpilot/internal/allocation/application/commands"
)

func TestParsePair(t *testing.T) {
	pair, err := parsePair("12:3")
	require.NoError(t, err)
	assert.Equal(t, commands.ConfirmPair{TaskID: 12, PersonID: 3}, pair)
}

func TestParsePairRejectsMalformed(t *testing.T) {
	cases := []string{"12", "12:", ":3", "a:3", "12:b", "12-3"}
	for _, raw := range cases {
		_, err := parsePair(raw)
		assert.Error(t, err, "input %q", raw)
	}
}
