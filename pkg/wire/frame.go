package wire

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Frame field numbers.
const (
	fieldFrameBotID     protowire.Number = 1
	fieldFrameType      protowire.Number = 2
	fieldFrameEcho      protowire.Number = 3
	fieldFrameOK        protowire.Number = 4
	fieldFrameData      protowire.Number = 5
	fieldFrameExtra     protowire.Number = 6
	fieldMapEntryKey    protowire.Number = 1
	fieldMapEntryValue  protowire.Number = 2
)

// Frame is the envelope every message on the plugin WebSocket connection is
// wrapped in, request, response, or event alike. Data holds the
// variant-specific sub-message already serialized by one of this package's
// request/response/event types; FrameType says how to interpret it — there
// is no wire-level oneof tag per field, the discriminator lives in
// FrameType instead, which keeps the envelope itself fixed-shape regardless
// of how many variants the protocol grows to cover.
type Frame struct {
	BotID     int64
	FrameType FrameType
	Echo      string // correlates a response back to its request; empty for events
	OK        bool   // only meaningful on responses
	Data      []byte
	Extra     map[string]string
}

// Encode serializes f to its wire form.
func (f *Frame) Encode() []byte {
	var b []byte
	b = appendInt64Field(b, fieldFrameBotID, f.BotID)
	b = appendVarintField(b, fieldFrameType, uint64(f.FrameType))
	b = appendStringField(b, fieldFrameEcho, f.Echo)
	b = appendBoolField(b, fieldFrameOK, f.OK)
	b = appendBytesField(b, fieldFrameData, f.Data)
	for k, v := range f.Extra {
		var entry []byte
		entry = appendStringField(entry, fieldMapEntryKey, k)
		entry = appendStringField(entry, fieldMapEntryValue, v)
		b = appendMessageField(b, fieldFrameExtra, entry)
	}
	return b
}

// DecodeFrame parses a wire-form Frame.
func DecodeFrame(b []byte) (*Frame, error) {
	f := &Frame{}
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		switch num {
		case fieldFrameBotID:
			v, n, err := consumeVarint(rest)
			f.BotID = int64(v)
			return n, err
		case fieldFrameType:
			v, n, err := consumeVarint(rest)
			f.FrameType = FrameType(v)
			return n, err
		case fieldFrameEcho:
			v, n, err := consumeString(rest)
			f.Echo = v
			return n, err
		case fieldFrameOK:
			v, n, err := consumeVarint(rest)
			f.OK = v != 0
			return n, err
		case fieldFrameData:
			v, n, err := consumeBytes(rest)
			f.Data = v
			return n, err
		case fieldFrameExtra:
			entry, n, err := consumeBytes(rest)
			if err != nil {
				return n, err
			}
			if f.Extra == nil {
				f.Extra = make(map[string]string)
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
			f.Extra[key] = value
			return n, nil
		default:
			return skipUnknown(typ, rest)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("wire: decode frame: %w", err)
	}
	return f, nil
}

// skipUnknown advances past a field this version of the codec does not
// recognize, so older plugins and newer gateways stay forward compatible.
func skipUnknown(typ protowire.Type, b []byte) (int, error) {
	n := protowire.ConsumeFieldValue(0, typ, b)
	if n < 0 {
		return 0, fmt.Errorf("wire: malformed unknown field: %w", protowire.ParseError(n))
	}
	return n, nil
}
