// Package framing reads and writes length-prefixed frames on a stream.
//
// Each frame is an 8-byte big-endian payload length followed by the
// payload. The relay uses it for JPEG frames in one direction and key names
// in the other.
package framing

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// HeaderSize is the length of the size prefix.
const HeaderSize = 8

// MaxFrameSize bounds a single payload. A 960x720 JPEG is well under 1 MB.
const MaxFrameSize = 16 << 20

// ErrFrameTooLarge is returned for a length prefix above the limit.
var ErrFrameTooLarge = errors.New("framing: frame too large")

// WriteFrame writes one frame.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) > MaxFrameSize {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(payload))
	}
	var header [HeaderSize]byte
	binary.BigEndian.PutUint64(header[:], uint64(len(payload)))
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// ReadFrame reads one frame with the default size limit.
func ReadFrame(r io.Reader) ([]byte, error) {
	return ReadFrameLimit(r, MaxFrameSize)
}

// ReadFrameLimit reads one frame, rejecting payloads above limit. A stream
// that ends cleanly between frames returns io.EOF; one that ends inside a
// frame returns io.ErrUnexpectedEOF.
func ReadFrameLimit(r io.Reader, limit int) ([]byte, error) {
	var header [HeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint64(header[:])
	if n > uint64(limit) {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, n)
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return payload, nil
}
