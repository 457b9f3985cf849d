package database

import (
	"strings"

	"go.uber.org/atomic"
	"lol.mleku.dev/log"
)

// logger adapts badger's logging interface to the house logger, with a
// runtime-adjustable verbosity gate.
type logger struct {
	level atomic.Int32
}

const (
	levelOff int32 = iota
	levelError
	levelWarn
	levelInfo
	levelDebug
)

func parseLevel(s string) int32 {
	switch strings.ToLower(s) {
	case "off":
		return levelOff
	case "error":
		return levelError
	case "warn":
		return levelWarn
	case "info":
		return levelInfo
	case "debug", "trace":
		return levelDebug
	}
	return levelError
}

func newLogger(level string) (l *logger) {
	l = &logger{}
	l.SetLogLevel(level)
	return
}

func (l *logger) SetLogLevel(level string) {
	l.level.Store(parseLevel(level))
}

func (l *logger) Errorf(f string, a ...any) {
	if l.level.Load() >= levelError {
		log.E.F("badger: "+strings.TrimSpace(f), a...)
	}
}

func (l *logger) Warningf(f string, a ...any) {
	if l.level.Load() >= levelWarn {
		log.W.F("badger: "+strings.TrimSpace(f), a...)
	}
}

func (l *logger) Infof(f string, a ...any) {
	if l.level.Load() >= levelInfo {
		log.I.F("badger: "+strings.TrimSpace(f), a...)
	}
}

func (l *logger) Debugf(f string, a ...any) {
	if l.level.Load() >= levelDebug {
		log.D.F("badger: "+strings.TrimSpace(f), a...)
	}
}
