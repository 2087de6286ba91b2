// Package remote serves a line-based control protocol on a unix socket so
// that scripts and desktop key bindings can drive the player.
//
// Each request is one line; each reply is one line:
//
//	next | skip             ok
//	toggle                  ok
//	pause | play            ok
//	volume                  <pct>%
//	volume <delta>          ok        (delta is a fraction, e.g. -0.05)
//	status                  <state>\t<track>\t<elapsed>/<total>\t<pct>%
//	ping                    pong
//	quit                    ok
//
// Failures reply "err: <message>".
package remote

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"os"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hammamikhairi/lullaby/internal/domain"
	"github.com/hammamikhairi/lullaby/internal/logger"
)

// maxLine bounds a request line.
const maxLine = 1024

// Server accepts control connections on a unix socket.
type Server struct {
	path  string
	state domain.StateReader
	sink  domain.CommandSink
	log   *logger.Logger

	mu     sync.Mutex
	ln     net.Listener
	conns  map[net.Conn]struct{}
	closed bool
	wg     sync.WaitGroup
}

// New creates a server for the socket at path.
func New(path string, state domain.StateReader, sink domain.CommandSink, log *logger.Logger) *Server {
	return &Server{
		path:  path,
		state: state,
		sink:  sink,
		log:   log,
		conns: make(map[net.Conn]struct{}),
	}
}

// Start listens on the socket and serves connections in the background.
// A stale socket left by a previous run is removed first.
func (s *Server) Start(ctx context.Context) error {
	if err := removeStale(s.path); err != nil {
		return err
	}

	ln, err := net.Listen("unix", s.path)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.path, err)
	}

	s.mu.Lock()
	s.ln = ln
	s.closed = false
	s.mu.Unlock()

	s.wg.Add(1)
	go s.accept(ctx, ln)

	s.log.Info("remote control listening on %s", s.path)
	return nil
}

// Close stops accepting, drops open connections, waits for their handlers,
// and removes the socket file.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed || s.ln == nil {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	err := s.ln.Close()
	for c := range s.conns {
		c.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()

	if rmErr := os.Remove(s.path); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
		s.log.Warn("removing socket: %v", rmErr)
	}
	s.log.Info("remote control stopped")
	return err
}

func (s *Server) accept(ctx context.Context, ln net.Listener) {
	defer s.wg.Done()

	for {
		c, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.log.Warn("accept: %v", err)
			time.Sleep(50 * time.Millisecond)
			continue
		}

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			c.Close()
			return
		}
		s.conns[c] = struct{}{}
		s.wg.Add(1)
		s.mu.Unlock()

		go func() {
			defer s.wg.Done()
			defer func() {
				s.mu.Lock()
				delete(s.conns, c)
				s.mu.Unlock()
				c.Close()
			}()
			s.handle(ctx, c)
		}()
	}
}

// handle serves requests on one connection until it is closed. A panic
// ends the connection, not the process.
func (s *Server) handle(ctx context.Context, rw io.ReadWriter) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("connection handler crashed: %v\n%s", r, debug.Stack())
		}
	}()

	sc := bufio.NewScanner(rw)
	sc.Buffer(make([]byte, 0, 256), maxLine)

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		reply := s.exec(ctx, line)
		s.log.Debug("request %q -> %q", line, reply)
		if _, err := io.WriteString(rw, reply+"\n"); err != nil {
			return
		}
	}
	if err := sc.Err(); err != nil {
		s.log.Debug("connection: %v", err)
	}
}

// exec runs one request and returns the reply line.
func (s *Server) exec(ctx context.Context, line string) string {
	verb, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	var cmd domain.Command
	switch strings.ToLower(verb) {
	case "ping":
		return "pong"

	case "status":
		return Status(s.state.Snapshot())

	case "next", "skip":
		cmd = domain.SkipNext{}

	case "toggle":
		cmd = domain.TogglePlayPause{}

	case "pause", "play":
		want := domain.StatePaused
		if strings.EqualFold(verb, "play") {
			want = domain.StatePlaying
		}
		if st := s.state.Snapshot().State; st == want || (st != domain.StatePlaying && st != domain.StatePaused) {
			return "ok"
		}
		cmd = domain.TogglePlayPause{}

	case "volume":
		if arg == "" {
			return percent(s.state.Snapshot().Volume)
		}
		delta, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return "err: bad volume delta " + strconv.Quote(arg)
		}
		cmd = domain.AdjustVolume{Delta: delta}

	case "quit":
		cmd = domain.Quit{}

	default:
		return "err: unknown command " + strconv.Quote(verb)
	}

	if err := s.sink.Send(ctx, cmd); err != nil {
		return "err: " + err.Error()
	}
	return "ok"
}

// Status formats a snapshot as a status reply line.
func Status(snap domain.Snapshot) string {
	return fmt.Sprintf("%s\t%s\t%s/%s\t%s",
		snap.State,
		snap.Track.Name(),
		clock(snap.Elapsed),
		clock(snap.Duration),
		percent(snap.Volume),
	)
}

func percent(v float64) string {
	return strconv.Itoa(int(v*100+0.5)) + "%"
}

func clock(d time.Duration) string {
	secs := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// removeStale deletes a leftover socket file nobody listens on. Anything
// else at the path is left alone and reported.
func removeStale(path string) error {
	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("checking socket path: %w", err)
	}
	if info.Mode()&fs.ModeSocket == 0 {
		return fmt.Errorf("%s exists and is not a socket", path)
	}
	if c, err := net.DialTimeout("unix", path, time.Second); err == nil {
		c.Close()
		return fmt.Errorf("%s is in use by another player", path)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("removing stale socket: %w", err)
	}
	return nil
}
