// Package decisionlog centralizes how the decision core's packages get
// a prefixed structured logger, mirroring the teacher's convention of
// deriving component loggers from *log.Logger.WithPrefix rather than
// reaching for a package-level global.
package decisionlog

import "github.com/charmbracelet/log"

// For returns a logger prefixed with component, falling back to a
// discard-friendly default logger when base is nil so packages never
// need to nil-check before logging.
func For(base *log.Logger, component string) *log.Logger {
	if base == nil {
		base = log.Default()
	}
	return base.WithPrefix(component)
}
