// Package ipcframe implements the wire framing shared by the IPC server and
// client: an 8-byte magic, a 32-bit little-endian length, and that many
// bytes of UTF-8 JSON (spec.md §6).
package ipcframe

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Magic is the fixed 8-byte prefix of every framed message.
const Magic = "ugdb-ipc"

// MaxPayload bounds a single frame's JSON body, guarding a misbehaving peer
// from driving an unbounded allocation.
const MaxPayload = 16 << 20

// WriteFrame writes magic + length-prefixed payload to w.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) > MaxPayload {
		return fmt.Errorf("ipcframe: payload of %d bytes exceeds max %d", len(payload), MaxPayload)
	}
	if _, err := io.WriteString(w, Magic); err != nil {
		return err
	}
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// ReadFrame reads one framed message from r, validating the magic and
// length prefix, and returns the JSON payload bytes.
func ReadFrame(r io.Reader) ([]byte, error) {
	var magicBuf [len(Magic)]byte
	if _, err := io.ReadFull(r, magicBuf[:]); err != nil {
		return nil, err
	}
	if string(magicBuf[:]) != Magic {
		return nil, fmt.Errorf("ipcframe: bad magic %q", magicBuf[:])
	}
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.LittleEndian.Uint32(lenBuf[:])
	if n > MaxPayload {
		return nil, fmt.Errorf("ipcframe: declared length %d exceeds max %d", n, MaxPayload)
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return payload, nil
}
