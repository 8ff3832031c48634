package docstore

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// EncodeDocument serializes a document to msgpack.
func EncodeDocument(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeDocument deserializes a msgpack document produced by EncodeDocument.
func DecodeDocument(b []byte) (Document, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(b))
	dec.SetMapDecoder(decodeStringMap)
	v, err := dec.DecodeInterface()
	if err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	doc, ok := v.(Document)
	if !ok {
		return nil, fmt.Errorf("decode document: expected map, got %T", v)
	}
	return doc, nil
}

// decodeStringMap makes every nested map decode as a Document.
func decodeStringMap(dec *msgpack.Decoder) (any, error) {
	n, err := dec.DecodeMapLen()
	if err != nil {
		return nil, err
	}
	if n == -1 {
		return nil, nil
	}
	m := make(Document, n)
	for i := 0; i < n; i++ {
		k, err := dec.DecodeString()
		if err != nil {
			return nil, err
		}
		v, err := dec.DecodeInterface()
		if err != nil {
			return nil, err
		}
		m[k] = v
	}
	return m, nil
}

// Clone returns a deep copy of doc by round-tripping it through msgpack, so
// stored documents never alias caller memory.
func Clone(doc Document) (Document, error) {
	if doc == nil {
		return nil, nil
	}
	b, err := EncodeDocument(doc)
	if err != nil {
		return nil, err
	}
	return DecodeDocument(b)
}
