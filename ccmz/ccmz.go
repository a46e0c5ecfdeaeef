// Package ccmz reverses the byte-level obfuscation of ccmz containers.
//
// A container is a single version byte followed by the obfuscated payload.
// Both known schemes are self-inverse, so the same transform serves for
// obfuscation and decryption.
package ccmz

import (
	"bytes"

	"github.com/TesterNaN/ccmz2mid/model"
)

// Container versions seen in the wild.
const (
	V1 uint8 = 1
	V2 uint8 = 2
)

var zipMagic = []byte{'P', 'K', 0x03, 0x04}

type transform func([]byte) []byte

// version tag -> payload transform
var schemes = map[uint8]transform{
	V1: passThrough,
	V2: FlipParity,
}

// passThrough covers version 1, whose payload is already a plain zip.
func passThrough(data []byte) []byte {
	out := make([]byte, len(data))
	copy(out, data)
	return out
}

// FlipParity flips every byte's parity: even bytes gain one, odd bytes
// lose one. Applying it twice restores the input.
func FlipParity(data []byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		if b%2 == 0 {
			out[i] = b + 1
		} else {
			out[i] = b - 1
		}
	}
	return out
}

// Version reads the container's version tag without touching the payload.
func Version(data []byte) (uint8, error) {
	if len(data) == 0 {
		return 0, &model.FormatError{Reason: "empty container"}
	}
	return data[0], nil
}

// Decrypt dispatches on the version tag and returns the decrypted zip
// bytes. An unknown version fails before any byte of the payload is
// transformed; a payload that does not start with the zip local-file
// signature after decryption fails too.
func Decrypt(data []byte) ([]byte, error) {
	version, err := Version(data)
	if err != nil {
		return nil, err
	}
	scheme, ok := schemes[version]
	if !ok {
		return nil, &model.FormatError{Version: version, Reason: "unsupported container version"}
	}
	decrypted := scheme(data[1:])
	if !bytes.HasPrefix(decrypted, zipMagic) {
		return nil, &model.FormatError{Version: version, Reason: "decrypted payload is not a zip archive"}
	}
	return decrypted, nil
}

// Obfuscate builds a container from plain zip bytes: it prepends the
// version tag and applies that version's transform. Mainly for tests and
// tooling; conversion itself never re-encodes.
func Obfuscate(data []byte, version uint8) ([]byte, error) {
	scheme, ok := schemes[version]
	if !ok {
		return nil, &model.FormatError{Version: version, Reason: "unsupported container version"}
	}
	out := make([]byte, 0, len(data)+1)
	out = append(out, version)
	return append(out, scheme(data)...), nil
}
