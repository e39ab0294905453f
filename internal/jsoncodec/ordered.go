package jsoncodec

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// orderedEntry is one key/value pair of an orderedMap, in the order it
// was appended on encode or appeared on the wire on decode.
type orderedEntry[V any] struct {
	Key   string
	Value V
}

// orderedMap is a JSON object that preserves key order on both encode
// and decode. A native Go map can't do this: encoding/json always
// sorts map keys when marshaling, and map iteration order is
// randomized when decoding. textures/compositions need their wire
// order to match the model's slice order, so that decoding what was
// just encoded reproduces the original asset order exactly.
type orderedMap[V any] []orderedEntry[V]

func (m orderedMap[V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (m *orderedMap[V]) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected a JSON object, got %v", tok)
	}

	var entries orderedMap[V]
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("expected a string key, got %v", keyTok)
		}
		var value V
		if err := dec.Decode(&value); err != nil {
			return err
		}
		entries = append(entries, orderedEntry[V]{Key: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*m = entries
	return nil
}
