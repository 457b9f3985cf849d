// Package relay assembles the running server: configuration, storage,
// the pipeline, the subscription registry, and the HTTP surface.
package relay

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"
	"lol.mleku.dev/chk"
	"lol.mleku.dev/log"

	"lore.lol/pkg/app/config"
	"lore.lol/pkg/app/relay/publish"
	"lore.lol/pkg/encoders/hex"
	"lore.lol/pkg/interfaces/store"
	"lore.lol/pkg/protocol/pipeline"
	"lore.lol/pkg/protocol/relayinfo"
	"lore.lol/pkg/protocol/socketapi"
	"lore.lol/pkg/version"
)

// Server ties the subsystems together behind one HTTP listener.
type Server struct {
	Ctx      context.Context
	Cancel   context.CancelFunc
	Config   *config.C
	Store    store.I
	Registry *publish.P
	Line     *pipeline.Line
	api      *socketapi.A
	info     *relayinfo.T
	mux      *chi.Mux
	srv      *http.Server
}

func decodeKeys(hexKeys []string) (keys [][]byte) {
	for _, h := range hexKeys {
		k, err := hex.Dec(h)
		if err != nil || len(k) != 32 {
			log.W.F("ignoring malformed pubkey %q in allow/deny list", h)
			continue
		}
		keys = append(keys, k)
	}
	return
}

// optionsFromConfig translates configuration into pipeline policy.
func optionsFromConfig(cfg *config.C) *pipeline.Options {
	return &pipeline.Options{
		ServiceURL:          cfg.ServiceURL,
		AuthRequired:        cfg.AuthRequired,
		Whitelist:           decodeKeys(cfg.Whitelist),
		Denylist:            decodeKeys(cfg.Denylist),
		MaxMessageLength:    cfg.MaxMessageLength,
		MaxSubscriptions:    cfg.MaxSubscriptions,
		MaxSubidLength:      cfg.MaxSubidLength,
		MaxContentLength:    cfg.MaxContentLength,
		MaxEventTags:        cfg.MaxEventTags,
		MinPowDifficulty:    cfg.MinPowDifficulty,
		MinPrefixLength:     cfg.MinPrefixLength,
		CreatedAtLowerLimit: cfg.CreatedAtLowerLimit,
		CreatedAtUpperLimit: cfg.CreatedAtUpperLimit,
		DefaultLimit:        cfg.DefaultLimit,
		MaxLimit:            cfg.MaxLimit,
	}
}

// NewServer wires a server around an opened store.
func NewServer(ctx context.Context, cancel context.CancelFunc, cfg *config.C, sto store.I) (s *Server) {
	registry := publish.New()
	line := pipeline.New(sto, registry, optionsFromConfig(cfg))
	s = &Server{
		Ctx:      ctx,
		Cancel:   cancel,
		Config:   cfg,
		Store:    sto,
		Registry: registry,
		Line:     line,
		api: &socketapi.A{
			Ctx:         ctx,
			Line:        line,
			Registry:    registry,
			AuthTimeout: cfg.AuthTimeout,
			IPWhitelist: cfg.IPWhitelist,
		},
		info: &relayinfo.T{
			Name:          cfg.AppName,
			Description:   version.Description,
			SupportedNIPs: relayinfo.Supported,
			Software:      version.URL,
			Version:       version.V,
			Limitation: &relayinfo.Limits{
				MaxMessageLength: cfg.MaxMessageLength,
				MaxSubscriptions: cfg.MaxSubscriptions,
				MaxSubidLength:   cfg.MaxSubidLength,
				MaxLimit:         int(cfg.MaxLimit),
				MaxEventTags:     cfg.MaxEventTags,
				MaxContentLength: cfg.MaxContentLength,
				MinPowDifficulty: cfg.MinPowDifficulty,
				AuthRequired:     cfg.AuthRequired,
				RestrictedWrites: len(cfg.Whitelist) > 0,
			},
		},
	}
	s.mux = chi.NewRouter()
	c := cors.New(cors.Options{
		AllowedOrigins:       []string{"*"},
		AllowedMethods:       []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:       []string{"*"},
		OptionsSuccessStatus: http.StatusNoContent,
	})
	s.mux.Use(c.Handler)
	s.mux.Get("/", s.handleRoot)
	// bare OPTIONS without preflight headers bypasses the cors
	// middleware; answer it the same way
	s.mux.Options("/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return
}

// handleRoot dispatches the single endpoint: websocket upgrades go to the
// socket handler, everything else gets the relay information document.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if socketapi.IsUpgrade(r) {
		s.api.Serve(w, r)
		return
	}
	s.handleRelayinfo(w, r)
}

// Start listens and serves until the context ends.
func (s *Server) Start() (err error) {
	addr := net.JoinHostPort(s.Config.Listen, fmt.Sprint(s.Config.Port))
	var ln net.Listener
	if ln, err = net.Listen("tcp", addr); chk.E(err) {
		return
	}
	s.srv = &http.Server{Handler: s.mux}
	log.I.F("%s %s listening on %s", version.Name, version.V, addr)
	g, ctx := errgroup.WithContext(s.Ctx)
	g.Go(func() error {
		if e := s.srv.Serve(ln); !errors.Is(e, http.ErrServerClosed) {
			return e
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		sctx, scancel := context.WithTimeout(context.Background(),
			5*time.Second)
		defer scancel()
		return s.srv.Shutdown(sctx)
	})
	return g.Wait()
}

// Shutdown stops accepting connections and closes the store.
func (s *Server) Shutdown() {
	log.I.Ln("shutting down")
	s.Cancel()
	chk.E(s.Store.Sync())
	chk.E(s.Store.Close())
}
