package book

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/veilex/darkpool/internal/models"
)

// snapshotVersion guards the fixed-width wire layout below.
const snapshotVersion = 1

// slotSize is the encoded size of one order slot: price, amount, owner,
// order id, side, active flag, timestamp.
const slotSize = 8 + 8 + 32 + 8 + 1 + 1 + 8

// snapshotSize is the plaintext size of an encoded book. Every snapshot is
// exactly this long regardless of occupancy.
const snapshotSize = 1 + 8 + models.MaxOrders*slotSize

// Sealer encrypts order-book snapshots before they leave the process, so the
// book is never persisted in plaintext.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer builds a Sealer from a 32-byte key.
func NewSealer(key []byte) (*Sealer, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("failed to init book sealer: %w", err)
	}
	return &Sealer{aead: aead}, nil
}

// encode serializes the book into its fixed-width binary layout.
func encode(b models.OrderBook) []byte {
	buf := make([]byte, 0, snapshotSize)
	buf = append(buf, snapshotVersion)
	buf = binary.LittleEndian.AppendUint64(buf, b.OrderCount)
	for i := 0; i < models.MaxOrders; i++ {
		s := &b.Slots[i]
		buf = binary.LittleEndian.AppendUint64(buf, s.Price)
		buf = binary.LittleEndian.AppendUint64(buf, s.Amount)
		buf = append(buf, s.Owner[:]...)
		buf = binary.LittleEndian.AppendUint64(buf, s.OrderID)
		buf = append(buf, encodeBool(s.Side), encodeBool(s.Active))
		buf = binary.LittleEndian.AppendUint64(buf, uint64(s.Timestamp))
	}
	return buf
}

// decode parses a fixed-width snapshot produced by encode.
func decode(buf []byte) (models.OrderBook, error) {
	var b models.OrderBook
	if len(buf) != snapshotSize {
		return b, fmt.Errorf("invalid book snapshot: expected %d bytes, got %d", snapshotSize, len(buf))
	}
	if buf[0] != snapshotVersion {
		return b, fmt.Errorf("invalid book snapshot: unknown version %d", buf[0])
	}
	b.OrderCount = binary.LittleEndian.Uint64(buf[1:])
	off := 9
	for i := 0; i < models.MaxOrders; i++ {
		s := &b.Slots[i]
		s.Price = binary.LittleEndian.Uint64(buf[off:])
		s.Amount = binary.LittleEndian.Uint64(buf[off+8:])
		copy(s.Owner[:], buf[off+16:off+48])
		s.OrderID = binary.LittleEndian.Uint64(buf[off+48:])
		s.Side = buf[off+56] == 1
		s.Active = buf[off+57] == 1
		s.Timestamp = int64(binary.LittleEndian.Uint64(buf[off+58:]))
		off += slotSize
	}
	return b, nil
}

// Seal encrypts a snapshot of the book. The output is nonce || ciphertext.
func (s *Sealer) Seal(b models.OrderBook) ([]byte, error) {
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return s.aead.Seal(nonce, nonce, encode(b), nil), nil
}

// Open decrypts and decodes a sealed snapshot. Tampered or truncated blobs
// are rejected by the AEAD before decoding.
func (s *Sealer) Open(sealed []byte) (models.OrderBook, error) {
	if len(sealed) < chacha20poly1305.NonceSizeX {
		return models.OrderBook{}, fmt.Errorf("invalid sealed snapshot: too short")
	}
	nonce, ciphertext := sealed[:chacha20poly1305.NonceSizeX], sealed[chacha20poly1305.NonceSizeX:]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return models.OrderBook{}, fmt.Errorf("failed to open sealed snapshot: %w", err)
	}
	return decode(plaintext)
}

func encodeBool(v bool) byte {
	if v {
		return 1
	}
	return 0
}
