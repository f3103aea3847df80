package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical(t *testing.T) {
	data, err := MarshalCanonical(map[string]any{
		"b": []any{"x<y", 2, true},
		"a": int64(-1),
	})
	require.NoError(t, err)
	assert.Equal(t, `{"a":-1,"b":["x<y",2,true]}`, string(data))
}

func TestMarshalCanonical_Rejects(t *testing.T) {
	_, err := MarshalCanonical(1.5)
	assert.Error(t, err)

	_, err = MarshalCanonical([]any{nil})
	assert.Error(t, err)
}

func TestListingFingerprint_OrderSensitive(t *testing.T) {
	a := []ListingRow{{"A", 0, "1!A"}, {"B", 1, "1!A!1!B"}}
	b := []ListingRow{{"B", 1, "1!A!1!B"}, {"A", 0, "1!A"}}

	fa, err := ListingFingerprint(a)
	require.NoError(t, err)
	fb, err := ListingFingerprint(b)
	require.NoError(t, err)

	assert.Len(t, fa, 64)
	assert.NotEqual(t, fa, fb)

	again, err := ListingFingerprint(a)
	require.NoError(t, err)
	assert.Equal(t, fa, again)
}

func TestClosureFingerprint_OrderInsensitive(t *testing.T) {
	x := []ClosureEntry{{"a", "b", "k"}, {"a", "c", "k"}}
	y := []ClosureEntry{{"a", "c", "k"}, {"a", "b", "k"}}

	fx, err := ClosureFingerprint(x)
	require.NoError(t, err)
	fy, err := ClosureFingerprint(y)
	require.NoError(t, err)
	assert.Equal(t, fx, fy)
}
