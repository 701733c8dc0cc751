package net

import (
	"bufio"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/gridmud/server/internal/world"
)

// maxLineLen caps a single input line. A client sending more than this
// without a newline is disconnected by the scanner.
const maxLineLen = 1024

// writeTimeout bounds one TCP write. A peer that stalls the socket longer
// than this is dropped.
const writeTimeout = 10 * time.Second

// Session is one telnet connection. The read and write goroutines only move
// bytes; all game state, including outBuf, belongs to the game loop.
type Session struct {
	ID   uint64
	conn net.Conn

	// Lines carries decoded input lines from readLoop to the input system.
	Lines chan string
	// OutQueue carries flushed output from the game loop to writeLoop.
	OutQueue chan []byte

	IP          string
	AccountName string
	CharName    string

	color atomic.Bool

	// outBuf collects rendered output during a tick. Accessed only from the
	// game loop goroutine - no locks needed.
	outBuf [][]byte

	onClose   func()
	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool

	// Per-second input rate limit, readLoop only. Zero disables it.
	linesPerSec int
	lineCount   int
	lineResetAt int64

	log *zap.Logger
}

// NewSession wraps an accepted connection. Call Start to begin I/O.
func NewSession(conn net.Conn, id uint64, inSize, outSize, linesPerSec int, log *zap.Logger) *Session {
	s := &Session{
		ID:          id,
		conn:        conn,
		Lines:       make(chan string, inSize),
		OutQueue:    make(chan []byte, outSize),
		IP:          conn.RemoteAddr().String(),
		closeCh:     make(chan struct{}),
		linesPerSec: linesPerSec,
		log:         log.With(zap.Uint64("session", id)),
	}
	s.color.Store(true)
	return s
}

// Start launches the read and write goroutines.
func (s *Session) Start() {
	go s.readLoop()
	go s.writeLoop()
}

// Send buffers one line of output, rendered with the session's color
// setting. Game loop only.
func (s *Session) Send(text string, group world.MessageGroup) {
	if s.closed.Load() {
		return
	}
	s.outBuf = append(s.outBuf, renderLine(text, group, s.color.Load()))
}

// SendRaw buffers bytes verbatim. Prompts and telnet negotiation go through
// here so they stay ordered with regular output. Game loop only.
func (s *Session) SendRaw(data []byte) {
	if s.closed.Load() {
		return
	}
	s.outBuf = append(s.outBuf, data)
}

// Prompt buffers prompt text without a line terminator.
func (s *Session) Prompt(p string) {
	s.SendRaw([]byte(p))
}

// SuppressEcho asks the client to stop or resume local echo. Wrapped around
// password entry.
func (s *Session) SuppressEcho(on bool) {
	if on {
		s.SendRaw(echoOff)
	} else {
		s.SendRaw(echoOn)
	}
}

// SetColor toggles ANSI rendering for subsequent Sends.
func (s *Session) SetColor(on bool) {
	s.color.Store(on)
}

// Color reports whether ANSI rendering is on.
func (s *Session) Color() bool {
	return s.color.Load()
}

// HasBufferedOutput reports whether the tick buffer holds anything to flush.
// Game loop only.
func (s *Session) HasBufferedOutput() bool {
	return len(s.outBuf) > 0
}

// FlushOutput concatenates the tick buffer into a single write and hands it
// to the write goroutine. Called once per tick. Non-blocking: a full queue
// means the peer stopped reading, and the session is dropped rather than
// stalling the game loop.
func (s *Session) FlushOutput() {
	if len(s.outBuf) == 0 {
		return
	}
	total := 0
	for _, b := range s.outBuf {
		total += len(b)
	}
	joined := make([]byte, 0, total)
	for _, b := range s.outBuf {
		joined = append(joined, b...)
	}
	s.outBuf = s.outBuf[:0]

	select {
	case s.OutQueue <- joined:
	default:
		s.log.Warn("output queue full, dropping slow connection")
		s.Close()
	}
}

// Close tears the session down exactly once. Safe from any goroutine.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		close(s.closeCh)
		s.conn.Close()
		if s.onClose != nil {
			s.onClose()
		}
	})
}

// IsClosed reports whether Close has run.
func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// readLoop scans telnet-stripped lines off the wire and queues them for the
// game loop. Exits on any read error or on Close.
func (s *Session) readLoop() {
	defer s.Close()

	sc := bufio.NewScanner(&iacStripper{r: s.conn})
	sc.Buffer(make([]byte, 0, 256), maxLineLen)
	for sc.Scan() {
		line := decodeLine(sc.Bytes())

		if s.linesPerSec > 0 {
			now := time.Now().Unix()
			if now != s.lineResetAt {
				s.lineCount = 0
				s.lineResetAt = now
			}
			s.lineCount++
			if s.lineCount > s.linesPerSec {
				s.log.Warn("input rate exceeded, disconnecting",
					zap.Int("lines", s.lineCount))
				return
			}
		}

		select {
		case s.Lines <- line:
		case <-s.closeCh:
			return
		}
	}
	if err := sc.Err(); err != nil && !s.closed.Load() {
		s.log.Debug("read error", zap.Error(err))
	}
}

// writeLoop drains OutQueue onto the socket.
func (s *Session) writeLoop() {
	defer s.Close()

	for {
		select {
		case data := <-s.OutQueue:
			s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if _, err := s.conn.Write(data); err != nil {
				if !s.closed.Load() {
					s.log.Debug("write error", zap.Error(err))
				}
				return
			}
		case <-s.closeCh:
			return
		}
	}
}
