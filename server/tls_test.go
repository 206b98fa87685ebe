//go:build !tinygo

package server

import (
	"context"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
)

func TestRunShutsDownOnCancel(t *testing.T) {
	c := qt.New(t)
	s, err := New(Config{Addr: "127.0.0.1:0"}, WithLogger(nopLogger{}))
	c.Assert(err, qt.IsNil)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- s.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		c.Assert(err, qt.IsNil)
	case <-time.After(10 * time.Second):
		c.Fatal("Run did not return after cancel")
	}
}

func TestRunListenError(t *testing.T) {
	c := qt.New(t)
	s, err := New(Config{Addr: "127.0.0.1:-1"}, WithLogger(nopLogger{}))
	c.Assert(err, qt.IsNil)

	err = s.Run(context.Background())
	c.Assert(err, qt.ErrorMatches, ".*invalid port.*")
}
