// Package wire implements the framing the render daemon speaks over its
// unix socket: an 8-byte big-endian length prefix followed by that many
// payload bytes, one frame per direction per connection.
//
// The high bit of a response length marks an error frame whose payload is
// a UTF-8 message instead of rendered HTML. Requests never set the bit, so
// a request frame carrying it surfaces as a read error.
package wire

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

const headerSize = 8

const errorBit = uint64(1) << 63

// Error messages are short; anything past this is a corrupt frame.
const maxErrorMessage = 1 << 20

// RemoteError is a failure the peer reported in an error frame.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string { return e.Message }

// TooLargeError reports a frame whose payload exceeds the reader's limit.
type TooLargeError struct {
	Size  uint64
	Limit uint64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("wire: frame of %d bytes exceeds limit of %d", e.Size, e.Limit)
}

// WritePayload writes one success frame.
func WritePayload(w io.Writer, payload []byte) error {
	if err := writeHeader(w, uint64(len(payload))); err != nil {
		return fmt.Errorf("wire: write frame header: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("wire: write frame payload: %w", err)
	}
	return nil
}

// WriteError writes one error frame carrying the message.
func WriteError(w io.Writer, message string) error {
	if err := writeHeader(w, errorBit|uint64(len(message))); err != nil {
		return fmt.Errorf("wire: write frame header: %w", err)
	}
	if _, err := io.WriteString(w, message); err != nil {
		return fmt.Errorf("wire: write frame payload: %w", err)
	}
	return nil
}

func writeHeader(w io.Writer, word uint64) error {
	var hdr [headerSize]byte
	binary.BigEndian.PutUint64(hdr[:], word)
	_, err := w.Write(hdr[:])
	return err
}

// ReadPayload reads one frame. A limit of zero accepts any length;
// otherwise frames longer than limit fail with *TooLargeError before any
// payload byte is read. Error frames decode into *RemoteError. Partial
// reads are completed with io.ReadFull, so slow peers and short network
// reads do not truncate frames.
func ReadPayload(r io.Reader, limit uint64) ([]byte, error) {
	var hdr [headerSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("wire: read frame header: %w", err)
	}
	word := binary.BigEndian.Uint64(hdr[:])

	if word&errorBit != 0 {
		n := word &^ errorBit
		if n > maxErrorMessage {
			return nil, fmt.Errorf("wire: error frame of %d bytes is not plausible", n)
		}
		msg := make([]byte, n)
		if _, err := io.ReadFull(r, msg); err != nil {
			return nil, fmt.Errorf("wire: read error frame: %w", err)
		}
		return nil, &RemoteError{Message: string(msg)}
	}

	if limit > 0 && word > limit {
		return nil, &TooLargeError{Size: word, Limit: limit}
	}
	if word > uint64(math.MaxInt) {
		return nil, &TooLargeError{Size: word, Limit: uint64(math.MaxInt)}
	}
	payload := make([]byte, word)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("wire: read frame payload: %w", err)
	}
	return payload, nil
}
