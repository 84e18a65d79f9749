package snapshot

import (
	"bytes"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/l1jgo/bullets/internal/factory"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/crypto/blake2b"
)

// Envelope layout: magic (4) | version (1) | blake2b-256 of body (32) | body.
// The body is the msgpack encoding of a factory.Snapshot.
const (
	magic   = "BLST"
	version = 1
	header  = len(magic) + 1 + blake2b.Size256
)

var (
	// ErrCorrupt is returned when the digest does not match the body.
	ErrCorrupt = errors.New("snapshot corrupt")
	// ErrFormat is returned for data that is not a snapshot envelope.
	ErrFormat = errors.New("not a snapshot")
)

// Encode serializes s into a self-checking envelope.
func Encode(s *factory.Snapshot) ([]byte, error) {
	body, err := msgpack.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	sum := blake2b.Sum256(body)
	out := make([]byte, 0, header+len(body))
	out = append(out, magic...)
	out = append(out, version)
	out = append(out, sum[:]...)
	out = append(out, body...)
	return out, nil
}

// Decode verifies and deserializes an envelope produced by Encode.
func Decode(data []byte) (*factory.Snapshot, error) {
	if len(data) < header || !bytes.Equal(data[:len(magic)], []byte(magic)) {
		return nil, fmt.Errorf("decode snapshot: %w", ErrFormat)
	}
	if v := data[len(magic)]; v != version {
		return nil, fmt.Errorf("decode snapshot: version %d: %w", v, ErrFormat)
	}
	want := data[len(magic)+1 : header]
	body := data[header:]
	got := blake2b.Sum256(body)
	if subtle.ConstantTimeCompare(want, got[:]) != 1 {
		return nil, fmt.Errorf("decode snapshot: %w", ErrCorrupt)
	}
	var s factory.Snapshot
	if err := msgpack.Unmarshal(body, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &s, nil
}

// Digest returns the blake2b-256 digest stored in an envelope.
func Digest(data []byte) ([]byte, error) {
	if len(data) < header {
		return nil, fmt.Errorf("read snapshot digest: %w", ErrFormat)
	}
	return append([]byte(nil), data[len(magic)+1:header]...), nil
}
