package cli

import (
	"io"
	"os"

	"github.com/xolan/timetracker/internal/service"
)

// Deps contains all dependencies for CLI operations
type Deps struct {
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader
	Exit   func(code int)

	Services *service.Services
}

// NewDeps creates a new Deps with the given services and the process's
// standard streams.
func NewDeps(services *service.Services) *Deps {
	return &Deps{
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Stdin:    os.Stdin,
		Exit:     os.Exit,
		Services: services,
	}
}

// Fail prints an error with optional hints to Stderr and exits with 1.
func (d *Deps) Fail(err error, hints ...string) {
	Errorf(d.Stderr, "Error: %v\n", err)
	for _, h := range hints {
		Hintf(d.Stderr, "Hint: %s\n", h)
	}
	d.Exit(1)
}
