package wire

import "google.golang.org/protobuf/encoding/protowire"

// MessageReceipt field numbers.
const (
	fieldReceiptSenderID protowire.Number = 1
	fieldReceiptTime     protowire.Number = 2
	fieldReceiptSeqs     protowire.Number = 3
	fieldReceiptRands    protowire.Number = 4
	fieldReceiptGroupID  protowire.Number = 5
)

// MessageReceipt is the opaque identifier handed back as a message_id after
// a send, and accepted back in delete/recall requests. It round-trips the
// sender-side bookkeeping a send needed (the per-recipient seq/rand pairs
// a Zalo-style transport assigns per fragment) without the caller ever
// needing to understand that shape — a plugin just stores the bytes and
// replays them verbatim.
type MessageReceipt struct {
	SenderID int64
	Time     int64
	Seqs     []int64
	Rands    []int64
	GroupID  int64 // 0 for a private message receipt
}

// Encode serializes r to its wire form.
func (r *MessageReceipt) Encode() []byte {
	var b []byte
	b = appendInt64Field(b, fieldReceiptSenderID, r.SenderID)
	b = appendInt64Field(b, fieldReceiptTime, r.Time)
	b = appendInt64SliceField(b, fieldReceiptSeqs, r.Seqs)
	b = appendInt64SliceField(b, fieldReceiptRands, r.Rands)
	b = appendInt64Field(b, fieldReceiptGroupID, r.GroupID)
	return b
}

// DecodeMessageReceipt parses a wire-form MessageReceipt.
func DecodeMessageReceipt(b []byte) (*MessageReceipt, error) {
	r := &MessageReceipt{}
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, rest []byte) (int, error) {
		switch num {
		case fieldReceiptSenderID:
			v, n, err := consumeVarint(rest)
			r.SenderID = int64(v)
			return n, err
		case fieldReceiptTime:
			v, n, err := consumeVarint(rest)
			r.Time = int64(v)
			return n, err
		case fieldReceiptSeqs:
			v, n, err := consumeVarint(rest)
			r.Seqs = append(r.Seqs, int64(v))
			return n, err
		case fieldReceiptRands:
			v, n, err := consumeVarint(rest)
			r.Rands = append(r.Rands, int64(v))
			return n, err
		case fieldReceiptGroupID:
			v, n, err := consumeVarint(rest)
			r.GroupID = int64(v)
			return n, err
		default:
			return skipUnknown(typ, rest)
		}
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}
