// Package publish is the process-wide subscription registry: it maps each
// connection to its named subscriptions and fans accepted events out to
// every match.
package publish

import (
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
	"lol.mleku.dev/log"

	"lore.lol/pkg/encoders/envelopes/eventenvelope"
	"lore.lol/pkg/encoders/event"
	"lore.lol/pkg/encoders/filter"
	"lore.lol/pkg/interfaces/listener"
	"lore.lol/pkg/interfaces/publisher"
	"lore.lol/pkg/interfaces/typer"
)

const Type = "socketapi"

// W registers or cancels a subscription for a connection. Cancel with an
// empty Id removes every subscription of the listener.
type W struct {
	Listener listener.I
	Cancel   bool
	Id       string
	Filters  filter.S
}

func (w *W) Type() string { return Type }

type subMap struct {
	mx sync.RWMutex
	m  map[string]filter.S
}

// P is the registry.
type P struct {
	subs *xsync.MapOf[listener.I, *subMap]
}

var _ publisher.I = (*P)(nil)

func New() *P {
	return &P{subs: xsync.NewMapOf[listener.I, *subMap]()}
}

func (p *P) Type() string { return Type }

// Receive applies a registration or cancellation.
func (p *P) Receive(msg typer.T) {
	w, ok := msg.(*W)
	if !ok {
		return
	}
	if w.Cancel {
		if w.Id == "" {
			p.subs.Delete(w.Listener)
			return
		}
		if sm, ok := p.subs.Load(w.Listener); ok {
			sm.mx.Lock()
			delete(sm.m, w.Id)
			sm.mx.Unlock()
		}
		return
	}
	sm, _ := p.subs.LoadOrCompute(w.Listener, func() *subMap {
		return &subMap{m: make(map[string]filter.S)}
	})
	sm.mx.Lock()
	sm.m[w.Id] = w.Filters
	sm.mx.Unlock()
}

// CountFor returns the number of active subscriptions of a listener.
func (p *P) CountFor(l listener.I) (n int) {
	if sm, ok := p.subs.Load(l); ok {
		sm.mx.RLock()
		n = len(sm.m)
		sm.mx.RUnlock()
	}
	return
}

// Deliver writes the event to every subscription whose filters match. A
// failed write drops the whole connection from the registry.
func (p *P) Deliver(ev *event.E) {
	type delivery struct {
		l  listener.I
		id string
	}
	var dd []delivery
	p.subs.Range(func(l listener.I, sm *subMap) bool {
		sm.mx.RLock()
		for id, ff := range sm.m {
			if ff.Match(ev) {
				dd = append(dd, delivery{l: l, id: id})
			}
		}
		sm.mx.RUnlock()
		return true
	})
	for _, dv := range dd {
		res := eventenvelope.NewResultWith([]byte(dv.id), ev)
		if err := res.Write(dv.l); err != nil {
			log.D.F("dropping subscriber %s: %v", dv.l.Remote(), err)
			p.subs.Delete(dv.l)
		}
	}
}
