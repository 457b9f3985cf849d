package main

import (
	"context"
	"os"

	"github.com/pkg/profile"
	"lol.mleku.dev"
	"lol.mleku.dev/chk"
	"lol.mleku.dev/log"

	"lore.lol/pkg/app/config"
	"lore.lol/pkg/app/relay"
	"lore.lol/pkg/database"
	"lore.lol/pkg/utils/interrupt"
	"lore.lol/pkg/version"
)

func main() {
	cfg, err := config.New()
	if chk.E(err) {
		os.Exit(1)
	}
	if config.HelpRequested() {
		config.PrintHelp(cfg, os.Stderr)
		os.Exit(0)
	}
	if config.GetEnv() {
		config.PrintEnv(cfg, os.Stdout)
		os.Exit(0)
	}
	lol.SetLogLevel(cfg.LogLevel)
	switch cfg.Pprof {
	case "cpu":
		defer profile.Start(profile.CPUProfile).Stop()
	case "memory":
		defer profile.Start(profile.MemProfile).Stop()
	case "allocs":
		defer profile.Start(profile.MemProfileAllocs).Stop()
	}
	log.I.F("starting %s %s", version.Name, version.V)
	ctx, cancel := context.WithCancel(context.Background())
	db, err := database.New(ctx, cancel, cfg.DataDir, cfg.DbLogLevel)
	if chk.E(err) {
		os.Exit(1)
	}
	server := relay.NewServer(ctx, cancel, cfg, db)
	interrupt.AddHandler(func() { server.Shutdown() })
	if err = server.Start(); chk.E(err) {
		os.Exit(1)
	}
}
