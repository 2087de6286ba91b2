//go:build unix

package terminal

import (
	"errors"
	"time"

	"golang.org/x/sys/unix"
)

// readReplies reads terminal replies until consume reports done or the
// timeout passes. consume gets everything read so far and returns how many
// bytes it used. Bytes consume left unused are returned.
func (t *TTY) readReplies(timeout time.Duration, consume func([]byte) (int, bool)) ([]byte, error) {
	fd := int(t.in.Fd())
	deadline := time.Now().Add(timeout)
	buf := make([]byte, 0, 64)
	chunk := make([]byte, 64)

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return buf, nil
		}

		fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		n, err := unix.Poll(fds, int(remaining.Milliseconds())+1)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return buf, err
		}
		if n == 0 {
			continue
		}

		rn, err := unix.Read(fd, chunk)
		if err != nil {
			if errors.Is(err, unix.EINTR) || errors.Is(err, unix.EAGAIN) {
				continue
			}
			return buf, err
		}
		if rn == 0 {
			return buf, nil
		}

		buf = append(buf, chunk[:rn]...)
		used, done := consume(buf)
		buf = buf[used:]
		if done {
			return buf, nil
		}
	}
}

// waitReadable reports whether input arrives within timeout.
func (t *TTY) waitReadable(timeout time.Duration) (bool, error) {
	fds := []unix.PollFd{{Fd: int32(t.in.Fd()), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, int(timeout.Milliseconds()))
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return false, nil
		}
		return false, err
	}
	return n > 0, nil
}
