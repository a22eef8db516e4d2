package core

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

const GenesisHashSeed = "PaymentLedger:genesis:v1"

// StateHasher chains a SHA-256 digest over every accepted event, so two
// replays of the same input can be compared by their final hash alone.
type StateHasher struct {
	tip [32]byte
}

// NewStateHasher initializes the chain with the genesis hash
func NewStateHasher() *StateHasher {
	return &StateHasher{
		tip: sha256.Sum256([]byte(GenesisHashSeed)),
	}
}

// Advance computes hash[n] = SHA-256(hash[n-1] || seq || len(p0) || p0 || ...)
// and makes it the new tip.
func (h *StateHasher) Advance(sequence int64, parts ...[]byte) [32]byte {
	d := sha256.New()
	d.Write(h.tip[:])

	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(sequence))
	d.Write(buf[:])

	for _, p := range parts {
		binary.LittleEndian.PutUint32(buf[:4], uint32(len(p)))
		d.Write(buf[:4])
		d.Write(p)
	}

	copy(h.tip[:], d.Sum(nil))
	return h.tip
}

// Tip returns the current chain head
func (h *StateHasher) Tip() [32]byte {
	return h.tip
}

// TipHex returns the chain head hex-encoded, for logs and exports
func (h *StateHasher) TipHex() string {
	return hex.EncodeToString(h.tip[:])
}
