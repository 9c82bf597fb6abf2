package tcp

import (
	"bufio"
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/wricardo/mcp-training/navalbattle/game/session"
)

const (
	// Time allowed to write one line to the peer.
	writeWait = 10 * time.Second

	DefaultMaxLineBytes = 1024
	DefaultWriteQueue   = 64
)

// Attacher seats new peers into matches
type Attacher interface {
	Attach(peer session.Peer) (*session.Seat, error)
}

// Server accepts line-oriented player connections
type Server struct {
	sessions     Attacher
	maxLineBytes int
	writeQueue   int
	log          zerolog.Logger

	wg sync.WaitGroup
}

// Option configures a Server
type Option func(*Server)

// WithMaxLineBytes bounds one inbound command line. Longer lines are
// truncated.
func WithMaxLineBytes(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxLineBytes = n
		}
	}
}

// WithWriteQueue sets how many outbound lines may be pending per connection
// before the peer is dropped as too slow
func WithWriteQueue(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.writeQueue = n
		}
	}
}

// WithLogger sets the logger
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// NewServer creates a new TCP game server
func NewServer(sessions Attacher, opts ...Option) *Server {
	s := &Server{
		sessions:     sessions,
		maxLineBytes: DefaultMaxLineBytes,
		writeQueue:   DefaultWriteQueue,
		log:          zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Serve accepts connections on ln until ctx is done or the listener fails.
// It closes ln and waits for every connection handler before returning.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()
	defer s.wg.Wait()

	s.log.Info().Str("addr", ln.Addr().String()).Msg("accepting player connections")

	var backoff time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				backoff = nextBackoff(backoff)
				s.log.Warn().Err(err).Dur("retry_in", backoff).Msg("accept failed")
				time.Sleep(backoff)
				continue
			}
			return err
		}
		backoff = 0

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handle(conn)
		}()
	}
}

func nextBackoff(d time.Duration) time.Duration {
	if d == 0 {
		return 5 * time.Millisecond
	}
	if d *= 2; d > time.Second {
		d = time.Second
	}
	return d
}

// handle runs the read loop of one connection
func (s *Server) handle(conn net.Conn) {
	p := newPeer(conn, s.writeQueue, s.log)
	go p.writeLoop()

	seat, err := s.sessions.Attach(p)
	if err != nil {
		s.log.Debug().Err(err).Str("addr", p.Addr()).Msg("connection not seated")
		<-p.done
		return
	}
	defer func() {
		seat.Leave()
		p.Close()
	}()

	r := bufio.NewReaderSize(conn, s.maxLineBytes)
	for {
		line, err := readLine(r)
		if err != nil {
			s.log.Debug().Err(err).Str("addr", p.Addr()).Int("player", seat.Player()).Msg("connection closed")
			return
		}
		seat.Handle(line)
	}
}

// readLine returns the next line without its terminator. Whatever does not
// fit in the reader's buffer is discarded.
func readLine(r *bufio.Reader) (string, error) {
	line, isPrefix, err := r.ReadLine()
	if err != nil {
		return "", err
	}
	out := string(line)
	for isPrefix {
		if _, isPrefix, err = r.ReadLine(); err != nil {
			return "", err
		}
	}
	return strings.TrimRight(out, "\r"), nil
}

// peer is the session.Peer side of a TCP connection
type peer struct {
	conn net.Conn
	log  zerolog.Logger

	mu     sync.Mutex
	send   chan string
	closed bool

	done chan struct{}
}

func newPeer(conn net.Conn, queue int, log zerolog.Logger) *peer {
	return &peer{
		conn: conn,
		log:  log,
		send: make(chan string, queue),
		done: make(chan struct{}),
	}
}

func (p *peer) Addr() string {
	return p.conn.RemoteAddr().String()
}

func (p *peer) Deliver(line string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}
	select {
	case p.send <- line:
		return true
	default:
		return false
	}
}

// Close stops accepting lines. The writer flushes what is queued and then
// closes the connection, which ends the read loop.
func (p *peer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.send)
	}
}

// writeLoop pumps queued lines to the connection
func (p *peer) writeLoop() {
	defer close(p.done)
	defer p.conn.Close()

	w := bufio.NewWriter(p.conn)
	for line := range p.send {
		p.conn.SetWriteDeadline(time.Now().Add(writeWait))
		w.WriteString(line)
		w.WriteByte('\n')

		// coalesce whatever else is already queued into one flush
		n := len(p.send)
		for i := 0; i < n; i++ {
			w.WriteString(<-p.send)
			w.WriteByte('\n')
		}
		if err := w.Flush(); err != nil {
			p.log.Debug().Err(err).Str("addr", p.Addr()).Msg("write failed")
			p.Close()
			for range p.send {
			}
			return
		}
	}
}
