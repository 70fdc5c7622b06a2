package pageserver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/IvanBrykalov/blockcache/protocol"
)

// Server accepts page-server connections and dispatches requests against a
// single PageStore.
type Server struct {
	Addr  string
	Store PageStore
	Log   *slog.Logger

	connCounter int64
}

// ListenAndServe opens a TCP listener on s.Addr and serves it until Serve
// returns (normally only on listener error or context cancellation).
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections from l, one goroutine per connection, until ctx
// is canceled or Accept returns a non-temporary error. Temporary errors are
// retried with exponential backoff, the same shape as a busy multiplexed
// TCP server under transient fd exhaustion.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	s.init()
	go func() {
		<-ctx.Done()
		l.Close()
	}()

	var tempDelay time.Duration
	for {
		c, err := l.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			var ne net.Error
			if !errors.As(err, &ne) || !ne.Temporary() {
				return err
			}
			if tempDelay == 0 {
				tempDelay = 5 * time.Millisecond
			} else {
				tempDelay *= 2
			}
			if max := time.Second; tempDelay > max {
				tempDelay = max
			}
			s.Log.Warn("accept error, retrying", "error", err, "delay", tempDelay)
			time.Sleep(tempDelay)
			continue
		}
		tempDelay = 0
		s.connCounter++
		go s.handleConn(ctx, c, s.connCounter)
	}
}

func (s *Server) init() {
	if s.Log == nil {
		s.Log = slog.Default()
	}
}

func (s *Server) handleConn(ctx context.Context, c net.Conn, id int64) {
	defer c.Close()
	log := s.Log.With("conn", id, "remote", c.RemoteAddr())
	log.Info("client connected")
	defer log.Info("client disconnected")

	for {
		if ctx.Err() != nil {
			return
		}
		size, err := s.Store.Size()
		if err != nil {
			log.Error("stat backing store failed", "error", err)
			return
		}
		req, err := protocol.DecodeRequest(c, size)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			log.Warn("bad request, closing connection", "error", err)
			s.writeStatus(c, log, protocol.StatusError)
			return
		}
		if err := s.dispatch(c, log, req); err != nil {
			log.Warn("request handling failed, closing connection", "error", err)
			return
		}
	}
}

func (s *Server) dispatch(c net.Conn, log *slog.Logger, req protocol.RequestHeader) error {
	switch req.Cmd {
	case protocol.CmdRead:
		return s.handleRead(c, log, req)
	case protocol.CmdWrite:
		return s.handleWrite(c, log, req)
	case protocol.CmdFlush:
		return s.handleFlush(c, log, req)
	case protocol.CmdDiscard:
		return s.handleDiscard(c, log, req)
	case protocol.CmdStat:
		return s.handleStat(c, log, req)
	default:
		return s.writeStatus(c, log, protocol.StatusError)
	}
}

func (s *Server) handleRead(c net.Conn, log *slog.Logger, req protocol.RequestHeader) error {
	log.Debug("READ", "offset", req.Offset, "length", req.Length)
	buf := make([]byte, req.Length)
	n, err := s.Store.ReadAt(buf, int64(req.Offset))
	if err != nil && !errors.Is(err, io.EOF) {
		return s.writeStatus(c, log, protocol.StatusError)
	}
	status := protocol.StatusOK
	if n == 0 && req.Length > 0 {
		status = protocol.StatusEOF
	}
	return s.writePayload(c, log, status, buf[:n])
}

func (s *Server) handleWrite(c net.Conn, log *slog.Logger, req protocol.RequestHeader) error {
	log.Debug("WRITE", "offset", req.Offset, "length", req.Length)
	buf := make([]byte, req.Length)
	if _, err := io.ReadFull(c, buf); err != nil {
		return err // can't recover framing once the payload read fails
	}
	if _, err := s.Store.WriteAt(buf, int64(req.Offset)); err != nil {
		return s.writeStatus(c, log, protocol.StatusError)
	}
	return s.writeStatus(c, log, protocol.StatusOK)
}

func (s *Server) handleFlush(c net.Conn, log *slog.Logger, req protocol.RequestHeader) error {
	log.Debug("FLUSH")
	if err := s.Store.Sync(); err != nil {
		return s.writeStatus(c, log, protocol.StatusError)
	}
	return s.writeStatus(c, log, protocol.StatusOK)
}

func (s *Server) handleDiscard(c net.Conn, log *slog.Logger, req protocol.RequestHeader) error {
	log.Debug("DISCARD", "offset", req.Offset, "length", req.Length)
	if err := s.Store.Discard(int64(req.Offset), int64(req.Length)); err != nil {
		return s.writeStatus(c, log, protocol.StatusError)
	}
	return s.writeStatus(c, log, protocol.StatusOK)
}

func (s *Server) handleStat(c net.Conn, log *slog.Logger, req protocol.RequestHeader) error {
	log.Debug("STAT")
	size, err := s.Store.Size()
	if err != nil {
		return s.writeStatus(c, log, protocol.StatusError)
	}
	if err := protocol.EncodeResponse(c, protocol.ResponseHeader{
		Status: protocol.StatusOK,
		Length: protocol.StatPayloadSize,
	}); err != nil {
		return err
	}
	return protocol.EncodeStats(c, protocol.Stats{TotalSize: uint64(size), PageSize: protocol.PageSize})
}

func (s *Server) writeStatus(c net.Conn, log *slog.Logger, status protocol.Status) error {
	return s.writePayload(c, log, status, nil)
}

func (s *Server) writePayload(c net.Conn, log *slog.Logger, status protocol.Status, data []byte) error {
	if err := protocol.EncodeResponse(c, protocol.ResponseHeader{Status: status, Length: uint32(len(data))}); err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	_, err := c.Write(data)
	return err
}
