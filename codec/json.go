package codec

import "encoding/json"

// JSON keeps records as plain JSON text, the default for the SQLite doc
// column. Instants inside event maps decode as RFC 3339 strings.
type JSON[V any] struct{}

func (JSON[V]) Encode(v V) ([]byte, error) { return json.Marshal(v) }

func (JSON[V]) Decode(b []byte) (V, error) {
	var v V
	if err := json.Unmarshal(b, &v); err != nil {
		return v, err
	}
	return v, nil
}
