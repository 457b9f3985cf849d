// Package socketapi accepts websocket connections and runs their frame
// loop: issue the AUTH challenge, read frames sequentially, hand each to
// the pipeline, and keep the connection alive with pings.
package socketapi

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/fasthttp/websocket"
	"lol.mleku.dev/chk"
	"lol.mleku.dev/log"

	"lore.lol/pkg/app/relay/publish"
	"lore.lol/pkg/encoders/envelopes/authenvelope"
	"lore.lol/pkg/protocol/auth"
	"lore.lol/pkg/protocol/pipeline"
	"lore.lol/pkg/protocol/ws"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	// authTimeoutClose is the 4000-class close sent when a connection
	// fails to authenticate in time.
	authTimeoutClose = 4000
)

// A serves the websocket endpoint.
type A struct {
	Ctx         context.Context
	Line        *pipeline.Line
	Registry    *publish.P
	AuthTimeout time.Duration
	IPWhitelist []string
}

func (a *A) ipAllowed(r *http.Request) bool {
	if len(a.IPWhitelist) == 0 {
		return true
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	for _, ip := range a.IPWhitelist {
		if strings.TrimSpace(ip) == host {
			return true
		}
	}
	return false
}

// Serve upgrades the request and runs the connection until it drops.
func (a *A) Serve(w http.ResponseWriter, r *http.Request) {
	if !a.ipAllowed(r) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	conn, err := Upgrade(w, r)
	if chk.E(err) {
		return
	}
	challenge := auth.GenerateChallenge()
	l := ws.NewListener(conn, r, challenge)
	defer func() {
		a.Registry.Receive(&publish.W{Listener: l, Cancel: true})
		chk.T(l.Close())
		log.D.F("%s disconnected after %d messages", l.Remote(),
			l.Messages.Load())
	}()
	log.D.F("%s connected", l.Remote())
	if err = authenvelope.NewChallenge(challenge).Write(l); chk.E(err) {
		return
	}
	if a.Line.Opts.AuthRequired && a.AuthTimeout > 0 {
		timer := time.AfterFunc(a.AuthTimeout, func() {
			if l.IsAuthed() {
				return
			}
			log.D.F("%s auth timeout", l.Remote())
			chk.T(l.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(authTimeoutClose,
					"auth-required: authentication timeout")))
			chk.T(l.Close())
		})
		defer timer.Stop()
	}
	if a.Line.Opts.MaxMessageLength > 0 {
		conn.SetReadLimit(int64(a.Line.Opts.MaxMessageLength))
	}
	chk.T(conn.SetReadDeadline(time.Now().Add(pongWait)))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	stopPinger := a.pinger(l)
	defer stopPinger()
	for {
		select {
		case <-a.Ctx.Done():
			return
		default:
		}
		typ, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure, websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived) {
				log.D.F("%s read error: %v", l.Remote(), err)
			}
			return
		}
		if typ != websocket.TextMessage {
			continue
		}
		l.Messages.Inc()
		// frames process strictly in arrival order
		a.Line.Handle(&pipeline.C{T: a.Ctx, Raw: msg, Listener: l})
	}
}

// pinger keeps the connection alive; the returned func stops it.
func (a *A) pinger(l *ws.Listener) (stop func()) {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-a.Ctx.Done():
				return
			case <-ticker.C:
				if err := l.WriteControl(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()
	return func() { close(done) }
}
