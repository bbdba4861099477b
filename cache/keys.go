package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// deriveKey turns a query name and its arguments into a deterministic cache
// key: the query name as a readable prefix, then a SHA-256 digest over the
// canonical JSON encoding of the arguments. The name is mixed into the
// hashed bytes as well, so two queries called with identical arguments can
// never share an entry. encoding/json sorts map keys, which makes the
// encoding canonical for the JSON-shaped values rule queries pass around.
func deriveKey(name string, args []any) (string, error) {
	canonical, err := json.Marshal(args)
	if err != nil {
		return "", fmt.Errorf("cache: cannot serialize arguments of %s: %w", name, err)
	}
	h := sha256.New()
	h.Write([]byte(name))
	h.Write([]byte{0})
	h.Write(canonical)
	return name + ":" + hex.EncodeToString(h.Sum(nil)[:16]), nil
}
