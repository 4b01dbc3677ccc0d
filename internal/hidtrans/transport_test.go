package hidtrans

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress("046d:c52b")
	require.NoError(t, err)
	assert.Equal(t, Address{VendorID: 0x046d, ProductID: 0xc52b}, addr)
	assert.Equal(t, "046d:c52b", addr.String())
}

func TestParseAddressInvalid(t *testing.T) {
	for _, s := range []string{"", "046d", "046dc52b", "zzzz:c52b"} {
		_, err := ParseAddress(s)
		assert.Error(t, err, "input %q", s)
	}
}
