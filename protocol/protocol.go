// Package protocol implements the page-server wire format: fixed-size,
// little-endian, packed binary headers shared by requests and responses,
// plus an optional payload.
package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	// Magic identifies a page-server frame: the ASCII bytes "PAGE" read as a
	// big-endian u32. It is sent little-endian, so the wire bytes are "EGAP".
	Magic uint32 = 0x50414745
	// Version is the only wire version this package understands.
	Version uint32 = 1
	// PageSize is the fixed page size used by Stat responses.
	PageSize uint32 = 4096
	// RequestHeaderSize is the packed size in bytes of a request header:
	// magic(4) + version(4) + cmd(1) + reserved(3) + offset(8) + length(4) +
	// reserved(4).
	RequestHeaderSize = 28
	// ResponseHeaderSize is the packed size in bytes of a response header:
	// magic(4) + version(4) + status(1) + reserved(3) + length(4) +
	// reserved(4).
	ResponseHeaderSize = 20
	// StatPayloadSize is the fixed size of a STAT response payload.
	StatPayloadSize = 16
)

// Cmd identifies a request's operation.
type Cmd uint8

const (
	CmdRead    Cmd = 1
	CmdWrite   Cmd = 2
	CmdFlush   Cmd = 3
	CmdDiscard Cmd = 4
	CmdStat    Cmd = 5
)

func (c Cmd) String() string {
	switch c {
	case CmdRead:
		return "READ"
	case CmdWrite:
		return "WRITE"
	case CmdFlush:
		return "FLUSH"
	case CmdDiscard:
		return "DISCARD"
	case CmdStat:
		return "STAT"
	default:
		return fmt.Sprintf("Cmd(%d)", uint8(c))
	}
}

// Status identifies a response's outcome.
type Status uint8

const (
	StatusOK    Status = 0
	StatusError Status = 1
	StatusEOF   Status = 2
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusError:
		return "ERROR"
	case StatusEOF:
		return "EOF"
	default:
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
}

// Sentinel errors returned by Decode*. A receiver that observes any of
// these must close the connection — the framing is no longer trustworthy.
var (
	ErrBadMagic     = errors.New("protocol: bad magic")
	ErrBadVersion   = errors.New("protocol: unsupported version")
	ErrUnknownCmd   = errors.New("protocol: unknown command")
	ErrUnknownStatus = errors.New("protocol: unknown status")
	ErrOutOfBounds  = errors.New("protocol: offset+length out of bounds")
)

// RequestHeader is the request frame header.
type RequestHeader struct {
	Cmd    Cmd
	Offset uint64
	Length uint32
}

// ResponseHeader is the response frame header.
type ResponseHeader struct {
	Status Status
	Length uint32
}

// EncodeRequest writes h's wire representation to w.
func EncodeRequest(w io.Writer, h RequestHeader) error {
	var buf [RequestHeaderSize]byte
	binary.LittleEndian.PutUint32(buf[0:4], Magic)
	binary.LittleEndian.PutUint32(buf[4:8], Version)
	buf[8] = byte(h.Cmd)
	// buf[9:12] reserved, left zero.
	binary.LittleEndian.PutUint64(buf[12:20], h.Offset)
	binary.LittleEndian.PutUint32(buf[20:24], h.Length)
	// buf[24:28] reserved, left zero.
	_, err := w.Write(buf[:])
	return err
}

// DecodeRequest reads and validates a request header from r. objectSize is
// the backing object's current size in bytes, used for the offset+length
// bounds check; pass -1 to skip that check (e.g. before the object exists).
func DecodeRequest(r io.Reader, objectSize int64) (RequestHeader, error) {
	var buf [RequestHeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return RequestHeader{}, err
	}
	if magic := binary.LittleEndian.Uint32(buf[0:4]); magic != Magic {
		return RequestHeader{}, ErrBadMagic
	}
	if version := binary.LittleEndian.Uint32(buf[4:8]); version != Version {
		return RequestHeader{}, ErrBadVersion
	}
	cmd := Cmd(buf[8])
	switch cmd {
	case CmdRead, CmdWrite, CmdFlush, CmdDiscard, CmdStat:
	default:
		return RequestHeader{}, ErrUnknownCmd
	}
	h := RequestHeader{
		Cmd:    cmd,
		Offset: binary.LittleEndian.Uint64(buf[12:20]),
		Length: binary.LittleEndian.Uint32(buf[20:24]),
	}
	if objectSize >= 0 && !withinBounds(h.Offset, h.Length, objectSize) {
		return RequestHeader{}, ErrOutOfBounds
	}
	return h, nil
}

// withinBounds reports whether [offset, offset+length) fits within
// [0, size), guarding against offset+length overflowing uint64.
func withinBounds(offset uint64, length uint32, size int64) bool {
	end := offset + uint64(length)
	if end < offset {
		return false // overflow
	}
	return end <= uint64(size)
}

// EncodeResponse writes h's wire representation to w.
func EncodeResponse(w io.Writer, h ResponseHeader) error {
	var buf [ResponseHeaderSize]byte
	binary.LittleEndian.PutUint32(buf[0:4], Magic)
	binary.LittleEndian.PutUint32(buf[4:8], Version)
	buf[8] = byte(h.Status)
	// buf[9:12] reserved, left zero.
	binary.LittleEndian.PutUint32(buf[12:16], h.Length)
	// buf[16:20] reserved, left zero.
	_, err := w.Write(buf[:])
	return err
}

// DecodeResponse reads and validates a response header from r.
func DecodeResponse(r io.Reader) (ResponseHeader, error) {
	var buf [ResponseHeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return ResponseHeader{}, err
	}
	if magic := binary.LittleEndian.Uint32(buf[0:4]); magic != Magic {
		return ResponseHeader{}, ErrBadMagic
	}
	if version := binary.LittleEndian.Uint32(buf[4:8]); version != Version {
		return ResponseHeader{}, ErrBadVersion
	}
	status := Status(buf[8])
	switch status {
	case StatusOK, StatusError, StatusEOF:
	default:
		return ResponseHeader{}, ErrUnknownStatus
	}
	return ResponseHeader{
		Status: status,
		Length: binary.LittleEndian.Uint32(buf[12:16]),
	}, nil
}

// Stats is the STAT command's 16-byte response payload.
type Stats struct {
	TotalSize uint64
	PageSize  uint32
}

// EncodeStats writes s's wire representation to w.
func EncodeStats(w io.Writer, s Stats) error {
	var buf [StatPayloadSize]byte
	binary.LittleEndian.PutUint64(buf[0:8], s.TotalSize)
	binary.LittleEndian.PutUint32(buf[8:12], s.PageSize)
	_, err := w.Write(buf[:])
	return err
}

// DecodeStats reads a STAT payload from r.
func DecodeStats(r io.Reader) (Stats, error) {
	var buf [StatPayloadSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Stats{}, err
	}
	return Stats{
		TotalSize: binary.LittleEndian.Uint64(buf[0:8]),
		PageSize:  binary.LittleEndian.Uint32(buf[8:12]),
	}, nil
}
