// Package savestate implements the on-disk savestate container: a
// small header carrying a magic, a format version and an xxhash
// checksum, followed by a brotli-compressed payload.
package savestate

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/cespare/xxhash"
	"github.com/google/brotli/go/cbrotli"
)

// Version of the container format.
const Version = 1

var magic = [4]byte{'D', 'S', 'R', 'T'}

const headerSize = 4 + 2 + 8 // magic + version + checksum

// Encode compresses raw state bytes into the container format.
func Encode(raw []byte) ([]byte, error) {
	payload, err := cbrotli.Encode(raw, cbrotli.WriterOptions{
		Quality: 9,
	})
	if err != nil {
		return nil, fmt.Errorf("savestate: compress: %w", err)
	}

	out := make([]byte, headerSize, headerSize+len(payload))
	copy(out, magic[:])
	binary.LittleEndian.PutUint16(out[4:], Version)
	binary.LittleEndian.PutUint64(out[6:], xxhash.Sum64(payload))

	return append(out, payload...), nil
}

// Decode verifies and decompresses a container produced by Encode.
func Decode(data []byte) ([]byte, error) {
	if len(data) < headerSize || !bytes.Equal(data[:4], magic[:]) {
		return nil, fmt.Errorf("savestate: bad magic")
	}

	if v := binary.LittleEndian.Uint16(data[4:]); v != Version {
		return nil, fmt.Errorf("savestate: unsupported version %d", v)
	}

	payload := data[headerSize:]
	if sum := binary.LittleEndian.Uint64(data[6:]); sum != xxhash.Sum64(payload) {
		return nil, fmt.Errorf("savestate: checksum mismatch")
	}

	raw, err := cbrotli.Decode(payload)
	if err != nil {
		return nil, fmt.Errorf("savestate: decompress: %w", err)
	}

	return raw, nil
}

// Write encodes raw state bytes to a file at path.
func Write(path string, raw []byte) error {
	data, err := Encode(raw)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Read loads and decodes the savestate file at path.
func Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Decode(data)
}
