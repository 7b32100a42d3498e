package bank

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankist-dev/bankist/internal/session"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"100", "100", false},
		{" 250.75 ", "250.75", false},
		{"-3", "-3", false},
		{"1e3", "1000", false},
		{"", "", true},
		{"abc", "", true},
		{"12abc", "", true},
		{"NaN", "", true},
		{"1e20", "100000000000000000000", false},
		{"1.5e-3", "0.0015", false},
		{"1e21", "", true},
		{"1e400000000", "", true},
		{"1e-400000000", "", true},
		{"0.0000000000000000000001", "", true},
	}
	for _, tt := range tests {
		got, err := ParseAmount(tt.in)
		if tt.wantErr {
			require.Error(t, err, "ParseAmount(%q)", tt.in)
			assert.ErrorIs(t, err, ErrInvalidAmount)
			continue
		}
		require.NoError(t, err, "ParseAmount(%q)", tt.in)
		assert.Equal(t, tt.want, got.String())
	}
}

func TestParsePIN(t *testing.T) {
	pin, err := ParsePIN("1111")
	require.NoError(t, err)
	assert.Equal(t, 1111, pin)

	pin, err = ParsePIN(" 2222\n")
	require.NoError(t, err)
	assert.Equal(t, 2222, pin)

	for _, in := range []string{
		"", "pin", "11.5", "12ab",
		"18446744073709552727",  // 2^64 + 1111
		"-18446744073709550505", // -(2^64) + 1111
		"9223372036854775808",   // MaxInt64 + 1
		"1e400000000",
		"1e-400000000",
	} {
		_, err := ParsePIN(in)
		assert.ErrorIs(t, err, session.ErrAuthentication, "ParsePIN(%q)", in)
	}
}

func TestParsePINBounds(t *testing.T) {
	pin, err := ParsePIN("9223372036854775807")
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt64, pin)

	pin, err = ParsePIN("1.1111e3")
	require.NoError(t, err)
	assert.Equal(t, 1111, pin)
}

func TestWrappedPINCannotLogIn(t *testing.T) {
	f := setup(t, Options{})

	_, err := ParsePIN("18446744073709552727")
	require.ErrorIs(t, err, session.ErrAuthentication)
	assert.Equal(t, session.LoggedOut, f.sess.State())

	pin, err := ParsePIN("1111")
	require.NoError(t, err)
	_, err = f.sess.Login("js", pin)
	assert.NoError(t, err)
}
