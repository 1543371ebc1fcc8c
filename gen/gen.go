// Package gen drives protoc to generate language bindings from the pinned
// .proto schemas.
//
// The generated Go bindings in this repository are hand-maintained (see
// transferdata and messages); this package exists for the sibling stacks
// that consume the same schemas: Dart clients via protoc-gen-dart and
// Python firmware tooling via betterproto. protoc itself is an external
// tool, so its diagnostics are surfaced verbatim rather than rewrapped.
package gen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/deepcare/ble-data-transfer-go/schemaset"
)

// A Target is one protoc output language.
type Target struct {
	// Name labels the target and names its default output subdirectory.
	Name string
	// Flag is the protoc output flag, e.g. "--dart_out".
	Flag string
	// Plugin is the protoc plugin executable the flag requires, empty for
	// outputs built into protoc.
	Plugin string
	// Out overrides the output directory for this target. Empty means
	// <Generator.OutDir>/<Name>.
	Out string
}

// The targets the schema consumers use.
var (
	Dart   = Target{Name: "dart", Flag: "--dart_out", Plugin: "protoc-gen-dart"}
	Python = Target{Name: "python", Flag: "--python_betterproto_out", Plugin: "protoc-gen-python_betterproto"}
	Go     = Target{Name: "go", Flag: "--go_out", Plugin: "protoc-gen-go"}
)

// ErrNoTargets reports a run configured without output targets.
var ErrNoTargets = errors.New("gen: no targets configured")

// A RunError carries protoc's own diagnostics alongside the exec failure.
type RunError struct {
	// Args is the full protoc argument list.
	Args []string
	// Stderr is the compiler's diagnostic output, verbatim.
	Stderr string
	// Err is the underlying exec error.
	Err error
}

func (e *RunError) Error() string {
	msg := fmt.Sprintf("gen: protoc failed: %v", e.Err)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += "\n" + s
	}
	return msg
}

func (e *RunError) Unwrap() error { return e.Err }

// Generator runs protoc over a schema directory.
type Generator struct {
	// Protoc is the compiler executable. Empty means "protoc" from PATH.
	Protoc string
	// IncludeDirs are extra -I paths beyond the schema directory itself.
	IncludeDirs []string
	// OutDir is the root output directory; each target writes under
	// OutDir/<target name> unless the target overrides it.
	OutDir string
	// Targets are the languages to generate.
	Targets []Target
	// ExtraArgs are appended to the protoc invocation unchanged.
	ExtraArgs []string
	// Lock, when set, requires the schema directory to match the pin
	// before anything is generated.
	Lock *schemaset.Lock
}

func (g *Generator) protocPath() (string, error) {
	name := g.Protoc
	if name == "" {
		name = "protoc"
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("gen: protoc not found: %w", err)
	}
	return path, nil
}

// Preflight checks that the compiler and every required plugin resolve
// before any generation is attempted.
func (g *Generator) Preflight() error {
	if len(g.Targets) == 0 {
		return ErrNoTargets
	}
	if _, err := g.protocPath(); err != nil {
		return err
	}
	for _, t := range g.Targets {
		if t.Flag == "" {
			return fmt.Errorf("gen: target %q has no output flag", t.Name)
		}
		if t.Plugin == "" {
			continue
		}
		if _, err := exec.LookPath(t.Plugin); err != nil {
			return fmt.Errorf("gen: plugin for %s not found: %w", t.Name, err)
		}
	}
	return nil
}

func (g *Generator) outFor(t Target) string {
	if t.Out != "" {
		return t.Out
	}
	return filepath.Join(g.OutDir, t.Name)
}

// Args assembles the protoc argument list for the given schema files.
// Paths in files are relative to schemaDir.
func (g *Generator) Args(schemaDir string, files []schemaset.SourceFile) ([]string, error) {
	if len(files) == 0 {
		return nil, schemaset.ErrEmptySet
	}
	args := []string{"-I", schemaDir}
	for _, inc := range g.IncludeDirs {
		args = append(args, "-I", inc)
	}
	for _, t := range g.Targets {
		args = append(args, t.Flag+"="+g.outFor(t))
	}
	args = append(args, g.ExtraArgs...)
	for _, f := range files {
		args = append(args, filepath.Join(schemaDir, filepath.FromSlash(f.Path)))
	}
	return args, nil
}

// Run generates all configured targets from the .proto files under
// schemaDir. Output directories are created as needed.
func (g *Generator) Run(ctx context.Context, schemaDir string) error {
	if err := g.Preflight(); err != nil {
		return err
	}
	if g.Lock != nil {
		if err := schemaset.VerifyDir(g.Lock, schemaDir); err != nil {
			return err
		}
	}

	files, err := schemaset.Scan(schemaDir)
	if err != nil {
		return err
	}
	args, err := g.Args(schemaDir, files)
	if err != nil {
		return err
	}
	for _, t := range g.Targets {
		if err := os.MkdirAll(g.outFor(t), 0o755); err != nil {
			return err
		}
	}

	protoc, err := g.protocPath()
	if err != nil {
		return err
	}
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, protoc, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return &RunError{Args: args, Stderr: stderr.String(), Err: err}
	}
	return nil
}
