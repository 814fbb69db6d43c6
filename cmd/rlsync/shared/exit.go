package shared

import (
	"errors"

	"github.com/rlsync/rlsync"
)

// ErrWarnings signals that a command finished but its report contains
// warnings. main translates it into exit code 2; commands return it
// instead of exiting so their deferred cleanup still runs.
var ErrWarnings = errors.New("completed with warnings")

// ReportExit maps a finished report to the error a command should return:
// nil for a clean run, ErrWarnings otherwise.
func ReportExit(report *rlsync.Report) error {
	if report.HasWarnings() {
		return ErrWarnings
	}
	return nil
}
