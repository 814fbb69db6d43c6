package shared

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rlsync/rlsync"
)

type Flags struct {
	LogFormat      *string // see logger.go
	Source         *string // see root.go
	Target         *string // see root.go
	OutDir         *string // see root.go
	ExcludeSchemas *string // see root.go
	PGDumpPath     *string // see root.go
	ConfigFile     *string // see root.go
}

type Config struct {
	Source         string    `yaml:"source"`
	Target         string    `yaml:"target"`
	LogFormat      LogFormat `yaml:"log_format"`
	OutDir         string    `yaml:"out_dir"`
	ExcludeSchemas []string  `yaml:"exclude_schemas"`
	PGDumpPath     string    `yaml:"pg_dump"`
}

type StateT struct {
	Flags  Flags
	Config Config
}

var State StateT

func (state *StateT) Parse() {
	cf := state.Configfile()
	if !cf.IsSet() {
		return
	}
	file, err := os.Open(cf.Value())
	if err != nil {
		panic(fmt.Errorf("open config: %w", err))
	}
	defer file.Close()

	contents, err := io.ReadAll(file)
	if err != nil {
		panic(fmt.Errorf("read config: %w", err))
	}
	if err := yaml.Unmarshal(contents, &state.Config); err != nil {
		panic(fmt.Errorf("parse config: %w", err))
	}
}

func (state StateT) Configfile() Variable[string] {
	return NewVariable(
		"config-file",
		*state.Flags.ConfigFile,
		os.Getenv("RLS_CONFIGFILE"),
		CheckPath(".rlsync.yaml"), // in cwd
		RepoPath(".rlsync.yaml"),  // in repo root
		"",                        // default to missing
	)
}

func (state StateT) Source() Variable[string] {
	return NewVariable(
		"source",
		*state.Flags.Source,
		os.Getenv("RLS_SOURCE"),
		state.Config.Source,
		"", // default to missing
	)
}

func (state StateT) Target() Variable[string] {
	return NewVariable(
		"target",
		*state.Flags.Target,
		os.Getenv("RLS_TARGET"),
		state.Config.Target,
		"", // default to missing
	)
}

func (state StateT) LogFormat() Variable[LogFormat] {
	return NewVariable(
		"log-format",
		LogFormat(*state.Flags.LogFormat),
		LogFormat(os.Getenv("RLS_LOG_FORMAT")),
		state.Config.LogFormat,
		LogFormatText, // default
	)
}

func (state StateT) OutDir() Variable[string] {
	return NewVariable(
		"out-dir",
		*state.Flags.OutDir,
		os.Getenv("RLS_OUT_DIR"),
		state.Config.OutDir,
		"", // default to missing, no artifacts written
	)
}

func (state StateT) PGDumpPath() Variable[string] {
	return NewVariable(
		"pg-dump",
		*state.Flags.PGDumpPath,
		os.Getenv("RLS_PG_DUMP"),
		state.Config.PGDumpPath,
		"pg_dump", // default
	)
}

// ExcludeSchemas resolves the namespace exclusion set. The flag and
// environment variable take a comma-separated list; the config file takes
// a YAML list.
func (state StateT) ExcludeSchemas() []string {
	v := NewVariable(
		"exclude-schemas",
		*state.Flags.ExcludeSchemas,
		os.Getenv("RLS_EXCLUDE_SCHEMAS"),
		strings.Join(state.Config.ExcludeSchemas, ","),
		strings.Join(rlsync.DefaultExcludedSchemas, ","),
	)
	var out []string
	for _, schema := range strings.Split(v.Value(), ",") {
		schema = strings.TrimSpace(schema)
		if schema != "" {
			out = append(out, schema)
		}
	}
	return out
}

func RepoPath(p string) string {
	root, err := exec.Command("git", "rev-parse", "--show-toplevel").Output()
	if err != nil {
		return ""
	}
	rootConfig := path.Join(strings.TrimSpace(string(root)), p)
	return CheckPath(rootConfig)
}

func CheckPath(p string) string {
	p, err := filepath.Abs(p)
	if err != nil {
		return ""
	}
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}
