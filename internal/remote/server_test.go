package remote

import (
	"bufio"
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hammamikhairi/lullaby/internal/domain"
	"github.com/hammamikhairi/lullaby/internal/logger"
)

type stateStub struct {
	snap domain.Snapshot
}

func (s *stateStub) Snapshot() domain.Snapshot { return s.snap }

type sinkStub struct {
	mu    sync.Mutex
	cmds  []domain.Command
	err   error
	crash bool
}

func (s *sinkStub) Send(_ context.Context, cmd domain.Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.crash {
		panic("sink exploded")
	}
	if s.err != nil {
		return s.err
	}
	s.cmds = append(s.cmds, cmd)
	return nil
}

func (s *sinkStub) sent() []domain.Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Command(nil), s.cmds...)
}

var playingSnap = domain.Snapshot{
	State:    domain.StatePlaying,
	Track:    domain.Track{Title: "Song", Artist: "Band"},
	Elapsed:  75 * time.Second,
	Duration: 4 * time.Minute,
	Volume:   0.42,
}

func TestExec(t *testing.T) {
	tests := []struct {
		name  string
		state domain.PlayState
		line  string
		reply string
		cmd   domain.Command
	}{
		{"ping", domain.StatePlaying, "ping", "pong", nil},
		{"next", domain.StatePlaying, "next", "ok", domain.SkipNext{}},
		{"skip upper", domain.StatePlaying, "SKIP", "ok", domain.SkipNext{}},
		{"toggle", domain.StatePlaying, "toggle", "ok", domain.TogglePlayPause{}},
		{"pause while playing", domain.StatePlaying, "pause", "ok", domain.TogglePlayPause{}},
		{"pause while paused", domain.StatePaused, "pause", "ok", nil},
		{"play while paused", domain.StatePaused, "play", "ok", domain.TogglePlayPause{}},
		{"play while playing", domain.StatePlaying, "play", "ok", nil},
		{"play while loading", domain.StateLoading, "play", "ok", nil},
		{"volume up", domain.StatePlaying, "volume 0.05", "ok", domain.AdjustVolume{Delta: 0.05}},
		{"volume down", domain.StatePlaying, "volume   -0.1", "ok", domain.AdjustVolume{Delta: -0.1}},
		{"volume query", domain.StatePlaying, "volume", "42%", nil},
		{"volume junk", domain.StatePlaying, "volume loud", `err: bad volume delta "loud"`, nil},
		{"quit", domain.StatePlaying, "quit", "ok", domain.Quit{}},
		{"unknown", domain.StatePlaying, "dance now", `err: unknown command "dance"`, nil},
		{"status", domain.StatePlaying, "status", "playing\tBand - Song\t01:15/04:00\t42%", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := playingSnap
			snap.State = tt.state
			if tt.name == "status" {
				snap.State = domain.StatePlaying
			}
			sink := &sinkStub{}
			s := New("", &stateStub{snap: snap}, sink, logger.New(logger.LevelOff, nil))

			if got := s.exec(context.Background(), tt.line); got != tt.reply {
				t.Fatalf("exec(%q) = %q, want %q", tt.line, got, tt.reply)
			}

			sent := sink.sent()
			switch {
			case tt.cmd == nil && len(sent) != 0:
				t.Fatalf("sent %v, want nothing", sent)
			case tt.cmd != nil && (len(sent) != 1 || sent[0] != tt.cmd):
				t.Fatalf("sent %v, want [%s]", sent, tt.cmd)
			}
		})
	}
}

func TestExecReportsDeliveryFailure(t *testing.T) {
	sink := &sinkStub{err: domain.ErrEngineStopped}
	s := New("", &stateStub{snap: playingSnap}, sink, logger.New(logger.LevelOff, nil))

	want := "err: " + domain.ErrEngineStopped.Error()
	if got := s.exec(context.Background(), "next"); got != want {
		t.Fatalf("exec = %q, want %q", got, want)
	}
}

func TestHandleOverPipe(t *testing.T) {
	sink := &sinkStub{}
	s := New("", &stateStub{snap: playingSnap}, sink, logger.New(logger.LevelOff, nil))

	server, client := net.Pipe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.handle(context.Background(), server)
	}()

	r := bufio.NewReader(client)
	for _, req := range []string{"ping", "", "next"} {
		if _, err := client.Write([]byte(req + "\n")); err != nil {
			t.Fatalf("write: %v", err)
		}
		if req == "" {
			continue
		}
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if req == "ping" && line != "pong\n" {
			t.Fatalf("ping reply = %q", line)
		}
		if req == "next" && line != "ok\n" {
			t.Fatalf("next reply = %q", line)
		}
	}

	client.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler did not return after the client hung up")
	}
	if got := sink.sent(); len(got) != 1 || got[0] != (domain.SkipNext{}) {
		t.Fatalf("sent %v, want [skip_next]", got)
	}
}

func TestHandleSurvivesPanic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ctl.sock")
	sink := &sinkStub{crash: true}
	s := New(path, &stateStub{snap: playingSnap}, sink, logger.New(logger.LevelOff, nil))
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Close()

	c, err := net.Dial("unix", path)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()
	if _, err := c.Write([]byte("next\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	c.SetReadDeadline(time.Now().Add(time.Second))
	if line, err := bufio.NewReader(c).ReadString('\n'); err == nil {
		t.Fatalf("got reply %q, want the connection closed", line)
	}

	// The server keeps serving other connections.
	c2, err := net.Dial("unix", path)
	if err != nil {
		t.Fatalf("dial after panic: %v", err)
	}
	defer c2.Close()
	if _, err := c2.Write([]byte("ping\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	c2.SetReadDeadline(time.Now().Add(time.Second))
	line, err := bufio.NewReader(c2).ReadString('\n')
	if err != nil || line != "pong\n" {
		t.Fatalf("ping after panic = %q, %v", line, err)
	}
}

func TestServerLifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ctl.sock")
	sink := &sinkStub{}
	s := New(path, &stateStub{snap: playingSnap}, sink, logger.New(logger.LevelOff, nil))

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	c, err := net.Dial("unix", path)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	if _, err := c.Write([]byte("status\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	line, err := bufio.NewReader(c).ReadString('\n')
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.HasPrefix(line, "playing\tBand - Song") {
		t.Fatalf("status reply = %q", line)
	}

	// A second server must not steal a live socket.
	other := New(path, &stateStub{}, &sinkStub{}, logger.New(logger.LevelOff, nil))
	if err := other.Start(context.Background()); err == nil {
		other.Close()
		t.Fatal("second server started on a live socket")
	}

	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("socket file left behind: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestStartReplacesStaleSocket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ctl.sock")

	// Leave a socket file with nobody listening.
	ln, err := net.Listen("unix", path)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ln.(*net.UnixListener).SetUnlinkOnClose(false)
	ln.Close()

	s := New(path, &stateStub{}, &sinkStub{}, logger.New(logger.LevelOff, nil))
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start over stale socket: %v", err)
	}
	s.Close()
}

func TestStartRefusesRegularFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ctl.sock")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := New(path, &stateStub{}, &sinkStub{}, logger.New(logger.LevelOff, nil))
	if err := s.Start(context.Background()); err == nil {
		s.Close()
		t.Fatal("start succeeded over a regular file")
	}
}
