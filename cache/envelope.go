package cache

import (
	"github.com/vmihailenco/msgpack/v5"

	"github.com/cloudlint/go-common/api"
)

// envelope is what actually gets persisted for a cache key: either the
// msgpack-encoded result of the computation, or the recoverable API failure
// it ended in. Storing the failure means later callers replay the identical
// error without re-issuing the call.
type envelope struct {
	Value   msgpack.RawMessage `msgpack:"v,omitempty"`
	Failure *api.Error         `msgpack:"f,omitempty"`
}

func encodeValue(v any) ([]byte, error) {
	raw, err := msgpack.Marshal(v)
	if err != nil {
		return nil, err
	}
	return msgpack.Marshal(envelope{Value: raw})
}

func encodeFailure(apiErr *api.Error) ([]byte, error) {
	return msgpack.Marshal(envelope{Failure: apiErr})
}

// decode unmarshals an envelope and, for a value entry, decodes the payload
// into out. It returns the cached failure, if any.
func decode(data []byte, out any) (*api.Error, error) {
	var env envelope
	if err := msgpack.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	if env.Failure != nil {
		return env.Failure, nil
	}
	return nil, msgpack.Unmarshal(env.Value, out)
}
