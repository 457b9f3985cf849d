// Package typer is the minimal interface of messages routed between
// subsystems by type name.
package typer

type T interface {
	Type() string
}
