// Package wire implements the protocol-buffer wire codec for the plugin
// WebSocket protocol: the Frame envelope, the generic Message chain element,
// and the MessageReceipt opaque message identifier. Encoding uses the raw
// varint/length-delimited primitives from protowire directly — there is no
// protoc-generated code here, so this package doubles as its own schema.
package wire

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// appendVarintField appends a varint-typed field (used for int64, int32,
// bool, and enum field kinds — protobuf encodes them identically on the
// wire).
func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendInt64Field(b []byte, num protowire.Number, v int64) []byte {
	if v == 0 {
		return b
	}
	return appendVarintField(b, num, uint64(v))
}

func appendBoolField(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	return appendVarintField(b, num, 1)
}

func appendStringField(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendBytesField(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

// appendMessageField appends a length-delimited embedded message.
func appendMessageField(b []byte, num protowire.Number, payload []byte) []byte {
	if len(payload) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, payload)
}

// appendInt64SliceField appends a repeated int64 field as unpacked varints
// (valid, if non-canonical, protobuf wire — decoders must accept both forms).
func appendInt64SliceField(b []byte, num protowire.Number, vs []int64) []byte {
	for _, v := range vs {
		b = appendVarintField(b, num, uint64(v))
	}
	return b
}

// fieldVisitor is called once per top-level field encountered while
// decoding. It must return the number of bytes consumed for variable-length
// types (n) or -1 on malformed input.
type fieldVisitor func(num protowire.Number, typ protowire.Type, b []byte) (n int, err error)

// consumeFields walks every tag/value pair in b, invoking visit for each.
func consumeFields(b []byte, visit fieldVisitor) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("wire: malformed tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		consumed, err := visit(num, typ, b)
		if err != nil {
			return err
		}
		if consumed < 0 {
			return fmt.Errorf("wire: unhandled field %d", num)
		}
		b = b[consumed:]
	}
	return nil
}

// consumeVarint reads a varint value at the head of b, returning the value
// and bytes consumed.
func consumeVarint(b []byte) (uint64, int, error) {
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, 0, fmt.Errorf("wire: malformed varint: %w", protowire.ParseError(n))
	}
	return v, n, nil
}

func consumeString(b []byte) (string, int, error) {
	v, n := protowire.ConsumeString(b)
	if n < 0 {
		return "", 0, fmt.Errorf("wire: malformed string: %w", protowire.ParseError(n))
	}
	return v, n, nil
}

func consumeBytes(b []byte) ([]byte, int, error) {
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, fmt.Errorf("wire: malformed bytes: %w", protowire.ParseError(n))
	}
	return append([]byte(nil), v...), n, nil
}
