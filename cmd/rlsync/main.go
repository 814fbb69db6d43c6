package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/rlsync/rlsync/cmd/rlsync/root"
	"github.com/rlsync/rlsync/cmd/rlsync/shared"
)

// Exit codes: 0 clean, 1 fatal error, 2 finished with warnings. The
// warnings exit is decided here rather than inside the commands so their
// deferred cleanup (closing the target connection) runs first.
func main() {
	defer func() {
		switch t := recover().(type) {
		case error:
			onError(fmt.Errorf("panic: %w", t))
		case string:
			onError(fmt.Errorf("panic: %s", t))
		default:
			if t != nil {
				onError(fmt.Errorf("panic: %+v", t))
			}
		}
		os.Exit(0)
	}()
	if err := root.Command.Execute(); err != nil {
		if errors.Is(err, shared.ErrWarnings) {
			os.Exit(2) //nolint:revive // report already logged the warnings
		}
		onError(err)
	}
}

func onError(err error) {
	msg := fmt.Sprintf("error: %s", err)
	_, _ = fmt.Fprintln(os.Stderr, color.New(color.FgRed, color.Italic).Sprintf(msg))
	os.Exit(1) //nolint:revive // intentional error handling
}
