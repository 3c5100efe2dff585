package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealOpenRoundTrip(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")
	jar := []byte(`[{"name":"sessionid","value":"abc123","domain":".instagram.com"}]`)

	sealed, err := Seal(jar, key)
	require.NoError(t, err)
	assert.NotEqual(t, jar, sealed)

	opened, err := Open(sealed, key)
	require.NoError(t, err)
	assert.Equal(t, jar, opened)
}

func TestOpenRejectsWrongKey(t *testing.T) {
	sealed, err := Seal([]byte("cookie payload"), []byte("0123456789abcdef"))
	require.NoError(t, err)

	_, err = Open(sealed, []byte("fedcba9876543210"))
	assert.Error(t, err)
}

func TestOpenRejectsTamperedBlob(t *testing.T) {
	key := []byte("0123456789abcdef")
	sealed, err := Seal([]byte("cookie payload"), key)
	require.NoError(t, err)

	sealed[len(sealed)-1] ^= 0xff
	_, err = Open(sealed, key)
	assert.Error(t, err)
}

func TestOpenRejectsShortBlob(t *testing.T) {
	_, err := Open([]byte("short"), []byte("0123456789abcdef"))
	assert.ErrorContains(t, err, "too short")
}

func TestSealRejectsBadKeyLength(t *testing.T) {
	_, err := Seal([]byte("data"), []byte("tooshort"))
	assert.ErrorContains(t, err, "bad key")
}
