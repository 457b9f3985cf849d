// Package interrupt runs registered cleanup handlers when the process
// receives an interrupt or termination signal, with optional re-exec of the
// binary for in-place restarts.
package interrupt

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/kardianos/osext"
	"lol.mleku.dev/chk"
	"lol.mleku.dev/log"
)

var (
	mx       sync.Mutex
	handlers []func()
	ch       chan os.Signal
	once     sync.Once
	restart  bool
)

func listen() {
	ch = make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-ch
		log.I.F("received %v, shutting down", sig)
		Shutdown()
	}()
}

// AddHandler registers a function to run on interrupt, in registration
// order.
func AddHandler(f func()) {
	mx.Lock()
	defer mx.Unlock()
	once.Do(listen)
	handlers = append(handlers, f)
}

// RequestRestart arranges for the process to re-exec itself instead of
// exiting after the handlers have run.
func RequestRestart() {
	mx.Lock()
	defer mx.Unlock()
	restart = true
}

// Shutdown runs the registered handlers and exits, or re-execs the current
// binary if a restart was requested.
func Shutdown() {
	mx.Lock()
	hs := make([]func(), len(handlers))
	copy(hs, handlers)
	r := restart
	mx.Unlock()
	for _, h := range hs {
		h()
	}
	if r {
		var path string
		var err error
		if path, err = osext.Executable(); chk.E(err) {
			os.Exit(1)
		}
		if err = syscall.Exec(path, os.Args, os.Environ()); chk.E(err) {
			os.Exit(1)
		}
	}
	os.Exit(0)
}
