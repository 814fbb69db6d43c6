package rlsync

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// SchemaDump is a parsed schema dump: the raw text plus the ordered
// statements scanned out of it. Immutable after creation; each migration
// run produces and owns exactly one.
type SchemaDump struct {
	Raw        string
	Statements []Statement
}

// ParseDump scans raw dump text into a [SchemaDump].
func ParseDump(raw string) SchemaDump {
	return SchemaDump{Raw: raw, Statements: SplitStatements(raw)}
}

// DumpSource produces schema dump text for the source database. The
// pipeline does not care how the dump is obtained; production code uses
// [PGDump] while tests feed canned text through [StaticDump].
type DumpSource interface {
	Dump(ctx context.Context) (string, error)
}

// StaticDump is a DumpSource that returns its own contents. Useful in
// tests, and for running the pipeline against a dump file that was
// produced earlier.
type StaticDump string

func (d StaticDump) Dump(_ context.Context) (string, error) {
	return string(d), nil
}

// PGDump shells out to pg_dump to produce a schema-only dump of the source
// database. The call is synchronous; cancellation is driven by the caller
// through ctx, which kills the child process.
type PGDump struct {
	// Database is a "postgres://..." connection string for the source.
	Database string
	// Path is the pg_dump binary to invoke. Empty means "pg_dump" from
	// $PATH.
	Path string
	// ExtraArgs are appended to the command line, after the built-in
	// arguments.
	ExtraArgs []string
}

func (d PGDump) Dump(ctx context.Context) (string, error) {
	path := d.Path
	if path == "" {
		path = "pg_dump"
	}
	args := []string{"--schema-only", "--dbname", d.Database}
	args = append(args, d.ExtraArgs...)
	cmd := exec.CommandContext(ctx, path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := bytes.TrimSpace(stderr.Bytes())
		if len(msg) > 0 {
			return "", fmt.Errorf("pg_dump: %w: %s", err, msg)
		}
		return "", fmt.Errorf("pg_dump: %w", err)
	}
	return stdout.String(), nil
}
