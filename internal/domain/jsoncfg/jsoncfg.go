package jsoncfg

import "encoding/json"

// MustMarshal serializes v, falling back to an empty object on error so that
// jsonb columns never receive invalid input.
func MustMarshal(v any) []byte {
	raw, err := json.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return raw
}
