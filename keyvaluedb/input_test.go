package keyvaluedb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckKeyAndValue(t *testing.T) {
	var nilPtr *uint64
	value := uint64(1)

	require.ErrorIs(t, CheckKeyAndValue(nil, &value), errInvalidKey)
	require.ErrorIs(t, CheckKeyAndValue([]byte{}, &value), errInvalidKey)
	require.ErrorIs(t, CheckKeyAndValue([]byte{1}, nil), errValueIsNil)
	require.ErrorIs(t, CheckKeyAndValue([]byte{1}, nilPtr), errValueIsNil)
	require.NoError(t, CheckKeyAndValue([]byte{1}, &value))
	require.NoError(t, CheckKeyAndValue([]byte{1}, value))
}
