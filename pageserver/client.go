package pageserver

import (
	"fmt"
	"io"
	"net"
	"time"

	"github.com/IvanBrykalov/blockcache/protocol"
)

// Client is a page-server connection: dial once, issue requests, reuse the
// connection. Not safe for concurrent use by multiple goroutines.
type Client struct {
	conn net.Conn
}

// Dial connects to a page server at addr.
func Dial(addr string) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error { return c.conn.Close() }

// ErrServerError is returned when the server answers with an ERROR status.
var ErrServerError = fmt.Errorf("pageserver: server returned ERROR")

// Read issues a READ request for [offset, offset+length) and returns the
// payload bytes. If the server sends fewer than length bytes (status EOF
// when it has none at all), Read returns what arrived with no error.
func (c *Client) Read(offset uint64, length uint32) ([]byte, error) {
	if err := protocol.EncodeRequest(c.conn, protocol.RequestHeader{
		Cmd: protocol.CmdRead, Offset: offset, Length: length,
	}); err != nil {
		return nil, err
	}
	resp, err := protocol.DecodeResponse(c.conn)
	if err != nil {
		return nil, err
	}
	if resp.Status == protocol.StatusError {
		return nil, ErrServerError
	}
	buf := make([]byte, resp.Length)
	if _, err := io.ReadFull(c.conn, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// Write issues a WRITE request storing data at offset.
func (c *Client) Write(offset uint64, data []byte) error {
	if err := protocol.EncodeRequest(c.conn, protocol.RequestHeader{
		Cmd: protocol.CmdWrite, Offset: offset, Length: uint32(len(data)),
	}); err != nil {
		return err
	}
	if _, err := c.conn.Write(data); err != nil {
		return err
	}
	return c.readOKStatus()
}

// Flush issues a FLUSH request (fsync the backing store).
func (c *Client) Flush() error {
	if err := protocol.EncodeRequest(c.conn, protocol.RequestHeader{Cmd: protocol.CmdFlush}); err != nil {
		return err
	}
	return c.readOKStatus()
}

// Discard issues a DISCARD request for [offset, offset+length).
func (c *Client) Discard(offset uint64, length uint32) error {
	if err := protocol.EncodeRequest(c.conn, protocol.RequestHeader{
		Cmd: protocol.CmdDiscard, Offset: offset, Length: length,
	}); err != nil {
		return err
	}
	return c.readOKStatus()
}

// Stat issues a STAT request and returns the backing store's size and page
// size.
func (c *Client) Stat() (protocol.Stats, error) {
	if err := protocol.EncodeRequest(c.conn, protocol.RequestHeader{Cmd: protocol.CmdStat}); err != nil {
		return protocol.Stats{}, err
	}
	resp, err := protocol.DecodeResponse(c.conn)
	if err != nil {
		return protocol.Stats{}, err
	}
	if resp.Status == protocol.StatusError {
		return protocol.Stats{}, ErrServerError
	}
	return protocol.DecodeStats(c.conn)
}

func (c *Client) readOKStatus() error {
	resp, err := protocol.DecodeResponse(c.conn)
	if err != nil {
		return err
	}
	if resp.Status == protocol.StatusError {
		return ErrServerError
	}
	return nil
}
