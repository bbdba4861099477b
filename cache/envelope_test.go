package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudlint/go-common/api"
)

func TestEnvelopeValueRoundTrip(t *testing.T) {
	type instance struct {
		Name string `msgpack:"name"`
		Zone string `msgpack:"zone"`
	}
	data, err := encodeValue(instance{Name: "vm-1", Zone: "us-central1-a"})
	require.NoError(t, err)

	var out instance
	failure, err := decode(data, &out)
	require.NoError(t, err)
	assert.Nil(t, failure)
	assert.Equal(t, instance{Name: "vm-1", Zone: "us-central1-a"}, out)
}

func TestEnvelopeFailureRoundTrip(t *testing.T) {
	apiErr := &api.Error{Method: "GET", URL: "https://example.com/v1/p", Status: 403, Body: "forbidden"}
	data, err := encodeFailure(apiErr)
	require.NoError(t, err)

	var out string
	failure, err := decode(data, &out)
	require.NoError(t, err)
	require.NotNil(t, failure)
	assert.Equal(t, apiErr, failure)
}

func TestDecodeCorruptData(t *testing.T) {
	var out string
	_, err := decode([]byte{0xff, 0x00, 0x01}, &out)
	assert.Error(t, err)
}
