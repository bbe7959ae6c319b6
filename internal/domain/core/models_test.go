package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidStatus(t *testing.T) {
	require.True(t, ValidStatus(StatusActive))
	require.True(t, ValidStatus(StatusTerminated))
	require.False(t, ValidStatus(""))
	require.False(t, ValidStatus("retired"))
	require.False(t, ValidStatus("Active"))
}
