// Package units provides byte size multipliers.
package units

const (
	Kb = 1024
	Mb = Kb * Kb
	Gb = Mb * Kb
)
