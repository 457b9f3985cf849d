// Package database implements the event store on badger: a primary record
// keyed by event id plus secondary indexes for created_at, kind, author,
// address, single-letter tags and content words, with deletion masks and
// replacement staleness evaluated inside the insert transaction.
package database

import (
	"context"

	"github.com/dgraph-io/badger/v4"
	"lol.mleku.dev/chk"
	"lol.mleku.dev/log"

	"lore.lol/pkg/interfaces/store"
	"lore.lol/pkg/utils/apputil"
	"lore.lol/pkg/utils/units"
)

// D is the badger-backed store.
type D struct {
	ctx    context.Context
	cancel context.CancelFunc
	path   string
	DB     *badger.DB
	Logger *logger
}

var _ store.I = (*D)(nil)

// New opens (creating if necessary) a badger store at path.
func New(ctx context.Context, cancel context.CancelFunc, path, logLevel string) (d *D, err error) {
	d = &D{
		ctx:    ctx,
		cancel: cancel,
		path:   path,
		Logger: newLogger(logLevel),
	}
	if err = apputil.EnsureDir(path + "/lock"); chk.E(err) {
		return
	}
	opts := badger.DefaultOptions(path)
	opts.BlockCacheSize = 256 * units.Mb
	opts.BlockSize = units.Kb
	opts.CompactL0OnClose = true
	opts.Logger = d.Logger
	if d.DB, err = badger.Open(opts); chk.E(err) {
		return
	}
	log.T.F("opened database at %s", path)
	return
}

func (d *D) Path() string { return d.path }

func (d *D) Close() (err error) {
	if d.DB == nil {
		return
	}
	return d.DB.Close()
}

// Wipe drops everything; used by tests and the import path.
func (d *D) Wipe() (err error) {
	return d.DB.DropAll()
}

func (d *D) Sync() (err error) {
	return d.DB.Sync()
}

func (d *D) SetLogLevel(level string) {
	d.Logger.SetLogLevel(level)
}
