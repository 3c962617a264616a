package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// object is a decoded JSON object that remembers its key order.
type object = orderedmap.OrderedMap[string, any]

// DecodeCollection decodes a JSON collection into records. The collection
// may be an array of objects or an object whose values are objects; in the
// latter case the source's key order is kept. null and scalars decode to an
// empty collection.
func DecodeCollection(data []byte) ([]Record, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	if data[0] != '[' && data[0] != '{' {
		return nil, nil
	}

	v, err := decodeOrdered(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode collection: %w", err)
	}
	return ToRecords(v), nil
}

// DecodeField decodes the collection found under key in a JSON object
// payload such as {"books": [...]}. When the payload is itself an array, or
// an object without key, the whole payload is treated as the collection.
func DecodeField(data []byte, key string) ([]Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return nil, fmt.Errorf("failed to decode payload: %w", err)
		}
		if raw, ok := wrapper[key]; ok {
			return DecodeCollection(raw)
		}
	}
	return DecodeCollection(trimmed)
}

// DecodeObject decodes a JSON object into a record. Nested objects keep
// their key order, so collections read from them with List come out in
// document order. Anything else yields an empty record.
func DecodeObject(data []byte) (Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Record{}, nil
	}
	v, err := decodeOrdered(trimmed)
	if err != nil {
		return nil, fmt.Errorf("failed to decode object: %w", err)
	}
	r, _ := asRecord(v)
	return r, nil
}

// decodeOrdered decodes a single JSON value. Objects become ordered maps;
// a repeated key keeps its first position and its last value.
func decodeOrdered(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after JSON value")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}

	switch delim {
	case '{':
		om := orderedmap.New[string, any]()
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, _ := keyTok.(string)
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			om.Set(key, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return om, nil
	case '[':
		items := []any{}
		for dec.More() {
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return items, nil
	}
	return nil, fmt.Errorf("unexpected delimiter %s", delim)
}

// asRecord converts a decoded object of either kind into a record.
func asRecord(v any) (Record, bool) {
	switch t := v.(type) {
	case Record:
		return t, true
	case map[string]any:
		return Record(t), true
	case *object:
		r := make(Record, t.Len())
		for pair := t.Oldest(); pair != nil; pair = pair.Next() {
			r[pair.Key] = pair.Value
		}
		return r, true
	default:
		return nil, false
	}
}
