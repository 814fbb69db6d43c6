package shared_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/peterldowns/testy/check"

	"github.com/rlsync/rlsync"
	"github.com/rlsync/rlsync/cmd/rlsync/shared"
)

func TestReportExit(t *testing.T) {
	t.Parallel()
	clean := &rlsync.Report{SourceTotal: 3, Extracted: 3, TargetCount: 3}
	check.Nil(t, shared.ReportExit(clean))

	warned := &rlsync.Report{
		Missing: []rlsync.PolicyKey{
			{Schema: "public", Table: "users", Name: "users_select"},
		},
	}
	err := shared.ReportExit(warned)
	check.True(t, errors.Is(err, shared.ErrWarnings))

	// Wrapped warnings still match, so main can translate them.
	wrapped := fmt.Errorf("sync: %w", err)
	check.True(t, errors.Is(wrapped, shared.ErrWarnings))
}
