package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAccountID_JSON(t *testing.T) {
	type wrapper struct {
		ID AccountID `json:"id"`
	}
	src := wrapper{ID: AccountID{0xAB, 0x01}}
	b, err := json.Marshal(src)
	require.NoError(t, err)
	require.JSONEq(t, `{"id":"0xab01"}`, string(b))

	var dst wrapper
	require.NoError(t, json.Unmarshal(b, &dst))
	require.Equal(t, src, dst)

	require.ErrorContains(t, json.Unmarshal([]byte(`{"id":"ab01"}`), &dst), "hex string without 0x prefix")
}

func TestAccountID_String(t *testing.T) {
	require.Equal(t, "AB01", AccountID{0xAB, 0x01}.String())
	require.True(t, AccountID{1}.Eq(AccountID{1}))
	require.False(t, AccountID{1}.Eq(AccountID{2}))
	require.Equal(t, -1, AccountID{1}.Compare(AccountID{2}))
}

func TestCallID(t *testing.T) {
	id := CallID{Module: "generic_asset", Method: "transfer"}
	require.Equal(t, "generic_asset.transfer", id.String())
	require.NoError(t, id.IsValid())
	require.EqualError(t, CallID{Method: "transfer"}.IsValid(), `call ".transfer": module name is empty`)
	require.EqualError(t, CallID{Module: "m"}.IsValid(), `call "m.": method name is empty`)
}
