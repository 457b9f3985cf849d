// Package ws holds the two halves of the websocket transport: the
// server-side Listener wrapping an upgraded connection, and a small
// client used by tests and tools.
package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/fasthttp/websocket"
	"go.uber.org/atomic"
)

// WriteWait bounds how long a frame write may block before the
// connection is considered dead.
const WriteWait = 10 * time.Second

// Listener wraps an upgraded server connection with the per-connection
// protocol state: the AUTH challenge, authenticated pubkeys, and a mutex
// making frame writes atomic across the replaying handler and the live
// publisher.
type Listener struct {
	mx        sync.Mutex
	conn      *websocket.Conn
	req       *http.Request
	remote    string
	challenge []byte

	authMx sync.RWMutex
	authed [][]byte

	// Messages counts inbound frames, for logs.
	Messages atomic.Int64
}

func NewListener(conn *websocket.Conn, req *http.Request, challenge []byte) *Listener {
	return &Listener{
		conn:      conn,
		req:       req,
		remote:    realRemote(req),
		challenge: challenge,
	}
}

// realRemote prefers the forwarding headers a reverse proxy sets.
func realRemote(req *http.Request) string {
	if rr := req.Header.Get("X-Forwarded-For"); rr != "" {
		return rr
	}
	if rr := req.Header.Get("X-Real-Ip"); rr != "" {
		return rr
	}
	return req.RemoteAddr
}

// Write sends one complete text frame.
func (l *Listener) Write(p []byte) (n int, err error) {
	l.mx.Lock()
	defer l.mx.Unlock()
	if err = l.conn.SetWriteDeadline(time.Now().Add(WriteWait)); err != nil {
		return
	}
	if err = l.conn.WriteMessage(websocket.TextMessage, p); err != nil {
		return
	}
	n = len(p)
	return
}

// WriteControl sends a control frame; safe concurrently with Write.
func (l *Listener) WriteControl(messageType int, data []byte) error {
	return l.conn.WriteControl(messageType, data, time.Now().Add(WriteWait))
}

func (l *Listener) Remote() string { return l.remote }

func (l *Listener) Req() *http.Request { return l.req }

func (l *Listener) Challenge() []byte { return l.challenge }

func (l *Listener) AddAuthed(pubkey []byte) {
	l.authMx.Lock()
	defer l.authMx.Unlock()
	for _, pk := range l.authed {
		if string(pk) == string(pubkey) {
			return
		}
	}
	l.authed = append(l.authed, append([]byte(nil), pubkey...))
}

func (l *Listener) Authed(pubkey []byte) bool {
	l.authMx.RLock()
	defer l.authMx.RUnlock()
	for _, pk := range l.authed {
		if string(pk) == string(pubkey) {
			return true
		}
	}
	return false
}

func (l *Listener) AuthedPubkeys() (pks [][]byte) {
	l.authMx.RLock()
	defer l.authMx.RUnlock()
	pks = make([][]byte, len(l.authed))
	copy(pks, l.authed)
	return
}

func (l *Listener) IsAuthed() bool {
	l.authMx.RLock()
	defer l.authMx.RUnlock()
	return len(l.authed) > 0
}

func (l *Listener) Close() error { return l.conn.Close() }
