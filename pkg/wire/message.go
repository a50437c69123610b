package wire

import "google.golang.org/protobuf/encoding/protowire"

// Element field numbers.
const (
	fieldElementType protowire.Number = 1
	fieldElementData protowire.Number = 2
)

// Element is one link of a message chain: a typed, loosely-shaped entry
// (text, at, face, image, video, ...). Data is intentionally a flat string
// map rather than a variant struct per element kind — the chain's element
// vocabulary grows independently of the envelope/codec and a flat map lets
// a plugin read fields it knows about and ignore the rest, the same
// tolerance the Frame envelope gives unknown top-level fields.
type Element struct {
	Type string
	Data map[string]string
}

// Encode serializes e to its wire form.
func (e *Element) Encode() []byte {
	var b []byte
	b = appendStringField(b, fieldElementType, e.Type)
	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		keys = append(keys, k)
	}
	for _, k := range keys {
		var entry []byte
		entry = appendStringField(entry, fieldMapEntryKey, k)
		entry = appendStringField(entry, fieldMapEntryValue, e.Data[k])
		b = appendMessageField(b, fieldElementData, entry)
	}
	return b
}

// DecodeElement parses a wire-form Element.
func DecodeElement(b []byte) (*Element, error) {
	e := &Element{}
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		switch num {
		case fieldElementType:
			v, n, err := consumeString(rest)
			e.Type = v
			return n, err
		case fieldElementData:
			entry, n, err := consumeBytes(rest)
			if err != nil {
				return n, err
			}
			if e.Data == nil {
				e.Data = make(map[string]string)
			}
			var key, value string
			if err := consumeFields(entry, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
				switch num {
				case fieldMapEntryKey:
					v, n, err := consumeString(rest)
					key = v
					return n, err
				case fieldMapEntryValue:
					v, n, err := consumeString(rest)
					value = v
					return n, err
				default:
					return skipUnknown(typ, rest)
				}
			}); err != nil {
				return n, err
			}
			e.Data[key] = value
			return n, nil
		default:
			return skipUnknown(typ, rest)
		}
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Chain is an ordered message chain.
type Chain []Element

// EncodeChain serializes a full chain as a sequence of length-prefixed
// Element sub-messages, each under the same field number so a decoder can
// walk it as a repeated field.
func EncodeChain(chain Chain) []byte {
	var b []byte
	for i := range chain {
		b = appendMessageField(b, 1, chain[i].Encode())
	}
	return b
}

// DecodeChain parses a wire-form Chain.
func DecodeChain(b []byte) (Chain, error) {
	var chain Chain
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		if num != 1 {
			return skipUnknown(typ, rest)
		}
		raw, n, err := consumeBytes(rest)
		if err != nil {
			return n, err
		}
		el, err := DecodeElement(raw)
		if err != nil {
			return n, err
		}
		chain = append(chain, *el)
		return n, nil
	})
	if err != nil {
		return nil, err
	}
	return chain, nil
}
