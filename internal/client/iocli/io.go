// Package iocli abstracts terminal input/output so commands can be
// tested with scripted IO.
package iocli

// IO is the terminal interaction surface used by CLI commands
type IO interface {
	Println(a ...any)
	Printf(format string, a ...any)
	ReadInput(prompt string) (string, error)
	ReadPassword(prompt string) (string, error)
}
