//go:build !unix

package terminal

import "time"

// readReplies is not implemented off unix; the probe reports no support.
func (t *TTY) readReplies(_ time.Duration, _ func([]byte) (int, bool)) ([]byte, error) {
	return nil, nil
}

// waitReadable always reports ready; reads block until input arrives.
func (t *TTY) waitReadable(_ time.Duration) (bool, error) {
	return true, nil
}
