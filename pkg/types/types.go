package types

// Key is an immutable byte slice type alias used for clarity.
type Key = []byte

// Value is an immutable byte slice type alias used for clarity.
type Value = []byte

// SeqNum is a monotonically increasing sequence number identifying a
// mutation's global write order.
type SeqNum = uint64

// TimestampMs is a millisecond-precision timestamp for time-based policies.
type TimestampMs int64
