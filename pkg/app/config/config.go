// Package config loads the relay configuration from the environment, with
// an optional .env file in the XDG config directory, and implements the
// env/help subcommands.
package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"go-simpler.org/env"
	"lol.mleku.dev/chk"

	"lore.lol/pkg/utils/apputil"
	"lore.lol/pkg/version"
)

// C is the relay configuration. Every field maps to one environment
// variable.
type C struct {
	AppName             string        `env:"LORE_APP_NAME" default:"lore" usage:"application name used in paths and the relay info document"`
	DataDir             string        `env:"LORE_DATA_DIR" usage:"storage directory, defaults to $XDG_DATA_HOME/lore"`
	Listen              string        `env:"LORE_LISTEN" default:"0.0.0.0" usage:"network interface to bind"`
	Port                int           `env:"LORE_PORT" default:"3334" usage:"port to listen on"`
	ServiceURL          string        `env:"LORE_SERVICE_URL" usage:"canonical relay URL checked against NIP-42 relay tags"`
	LogLevel            string        `env:"LORE_LOG_LEVEL" default:"info" usage:"off|fatal|error|warn|info|debug|trace"`
	DbLogLevel          string        `env:"LORE_DB_LOG_LEVEL" default:"error" usage:"storage engine log level"`
	Pprof               string        `env:"LORE_PPROF" usage:"enable profiling: cpu|memory|allocs"`
	AuthRequired        bool          `env:"LORE_AUTH_REQUIRED" default:"false" usage:"require NIP-42 authentication for EVENT, REQ and COUNT"`
	AuthTimeout         time.Duration `env:"LORE_AUTH_TIMEOUT" default:"1m" usage:"close unauthenticated connections after this long (auth required mode)"`
	Whitelist           []string      `env:"LORE_WHITELIST" usage:"hex pubkeys allowed to publish; empty allows all"`
	Denylist            []string      `env:"LORE_DENYLIST" usage:"hex pubkeys refused publication"`
	IPWhitelist         []string      `env:"LORE_IP_WHITELIST" usage:"client IPs allowed to connect; empty allows all"`
	MaxMessageLength    int           `env:"LORE_MAX_MESSAGE_LENGTH" default:"524288" usage:"maximum websocket message size in bytes"`
	MaxSubscriptions    int           `env:"LORE_MAX_SUBSCRIPTIONS" default:"32" usage:"maximum concurrent subscriptions per connection"`
	MaxSubidLength      int           `env:"LORE_MAX_SUBID_LENGTH" default:"71" usage:"maximum subscription id length"`
	MaxContentLength    int           `env:"LORE_MAX_CONTENT_LENGTH" default:"102400" usage:"maximum event content length in bytes"`
	MaxEventTags        int           `env:"LORE_MAX_EVENT_TAGS" default:"2000" usage:"maximum tags per event"`
	MinPowDifficulty    int           `env:"LORE_MIN_POW_DIFFICULTY" default:"0" usage:"required NIP-13 leading zero bits, 0 disables"`
	MinPrefixLength     int           `env:"LORE_MIN_PREFIX_LENGTH" default:"4" usage:"minimum hex length of id/author filter prefixes"`
	CreatedAtLowerLimit time.Duration `env:"LORE_CREATED_AT_LOWER_LIMIT" default:"0" usage:"reject events older than now minus this, 0 disables"`
	CreatedAtUpperLimit time.Duration `env:"LORE_CREATED_AT_UPPER_LIMIT" default:"15m" usage:"reject events timestamped further in the future than this"`
	DefaultLimit        uint          `env:"LORE_DEFAULT_LIMIT" default:"512" usage:"query limit applied when a filter declares none"`
	MaxLimit            uint          `env:"LORE_MAX_LIMIT" default:"1000" usage:"cap on declared filter limits"`
}

// New loads the configuration, applying a .env file from the XDG config
// directory when present.
func New() (cfg *C, err error) {
	cfg = &C{}
	envPath := filepath.Join(xdg.ConfigHome, version.Name, ".env")
	if apputil.FileExists(envPath) {
		if err = loadEnvFile(envPath); chk.E(err) {
			return
		}
	}
	if err = env.Load(cfg, &env.Options{SliceSep: ","}); chk.E(err) {
		return
	}
	if cfg.DataDir == "" {
		cfg.DataDir = filepath.Join(xdg.DataHome, version.Name)
	}
	return
}

// loadEnvFile sets KEY=VALUE lines into the environment, not overriding
// variables already set.
func loadEnvFile(path string) (err error) {
	var f *os.File
	if f, err = os.Open(path); err != nil {
		return
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		k = strings.TrimSpace(k)
		if _, present := os.LookupEnv(k); present {
			continue
		}
		if err = os.Setenv(k, strings.TrimSpace(v)); err != nil {
			return
		}
	}
	return sc.Err()
}

// HelpRequested reports whether the first argument asks for usage.
func HelpRequested() bool {
	if len(os.Args) < 2 {
		return false
	}
	switch strings.ToLower(os.Args[1]) {
	case "help", "-h", "--h", "-help", "--help", "?":
		return true
	}
	return false
}

// GetEnv reports whether the first argument is the env subcommand.
func GetEnv() bool {
	return len(os.Args) > 1 && strings.ToLower(os.Args[1]) == "env"
}

// PrintEnv writes the effective configuration as KEY=VALUE lines,
// suitable for a .env file.
func PrintEnv(cfg *C, w io.Writer) {
	fmt.Fprintf(w, "LORE_APP_NAME=%s\n", cfg.AppName)
	fmt.Fprintf(w, "LORE_DATA_DIR=%s\n", cfg.DataDir)
	fmt.Fprintf(w, "LORE_LISTEN=%s\n", cfg.Listen)
	fmt.Fprintf(w, "LORE_PORT=%d\n", cfg.Port)
	fmt.Fprintf(w, "LORE_SERVICE_URL=%s\n", cfg.ServiceURL)
	fmt.Fprintf(w, "LORE_LOG_LEVEL=%s\n", cfg.LogLevel)
	fmt.Fprintf(w, "LORE_DB_LOG_LEVEL=%s\n", cfg.DbLogLevel)
	fmt.Fprintf(w, "LORE_PPROF=%s\n", cfg.Pprof)
	fmt.Fprintf(w, "LORE_AUTH_REQUIRED=%v\n", cfg.AuthRequired)
	fmt.Fprintf(w, "LORE_AUTH_TIMEOUT=%s\n", cfg.AuthTimeout)
	fmt.Fprintf(w, "LORE_WHITELIST=%s\n", strings.Join(cfg.Whitelist, ","))
	fmt.Fprintf(w, "LORE_DENYLIST=%s\n", strings.Join(cfg.Denylist, ","))
	fmt.Fprintf(w, "LORE_IP_WHITELIST=%s\n", strings.Join(cfg.IPWhitelist, ","))
	fmt.Fprintf(w, "LORE_MAX_MESSAGE_LENGTH=%d\n", cfg.MaxMessageLength)
	fmt.Fprintf(w, "LORE_MAX_SUBSCRIPTIONS=%d\n", cfg.MaxSubscriptions)
	fmt.Fprintf(w, "LORE_MAX_SUBID_LENGTH=%d\n", cfg.MaxSubidLength)
	fmt.Fprintf(w, "LORE_MAX_CONTENT_LENGTH=%d\n", cfg.MaxContentLength)
	fmt.Fprintf(w, "LORE_MAX_EVENT_TAGS=%d\n", cfg.MaxEventTags)
	fmt.Fprintf(w, "LORE_MIN_POW_DIFFICULTY=%d\n", cfg.MinPowDifficulty)
	fmt.Fprintf(w, "LORE_MIN_PREFIX_LENGTH=%d\n", cfg.MinPrefixLength)
	fmt.Fprintf(w, "LORE_CREATED_AT_LOWER_LIMIT=%s\n", cfg.CreatedAtLowerLimit)
	fmt.Fprintf(w, "LORE_CREATED_AT_UPPER_LIMIT=%s\n", cfg.CreatedAtUpperLimit)
	fmt.Fprintf(w, "LORE_DEFAULT_LIMIT=%d\n", cfg.DefaultLimit)
	fmt.Fprintf(w, "LORE_MAX_LIMIT=%d\n", cfg.MaxLimit)
}

// PrintHelp writes usage, subcommands and the environment variable table.
func PrintHelp(cfg *C, w io.Writer) {
	fmt.Fprintf(w, "%s %s - %s\n\n", version.Name, version.V,
		version.Description)
	fmt.Fprintf(w, "usage: %s [help|env]\n\n", version.Name)
	fmt.Fprintf(w,
		"  env    print the effective configuration as KEY=VALUE lines\n")
	fmt.Fprintf(w, "  help   print this text\n\n")
	fmt.Fprintf(w,
		"configuration is read from the environment and from %s\n\n",
		filepath.Join(xdg.ConfigHome, version.Name, ".env"))
	env.Usage(cfg, w, &env.Options{SliceSep: ","})
}
