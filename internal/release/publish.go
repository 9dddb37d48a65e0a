// Package release implements the publish procedure for the companion
// miseqinteropreader Python package: verify the preconditions, clean old
// build artifacts, build, upload to PyPI, announce.
package release

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
)

const (
	// ManifestName is the project descriptor the build tool reads.
	ManifestName = "pyproject.toml"
	// BuildTool builds and uploads the distribution.
	BuildTool = "uv"
	// TokenEnv holds the PyPI upload credential.
	TokenEnv = "MISEQINTEROPREADER_PYPI_TOKEN"
	// PackageURL is where the published package lands.
	PackageURL = "https://pypi.org/project/miseqinteropreader/"
)

// Runner abstracts subprocess execution so tests can observe the exact
// invocations without a real uv on PATH.
type Runner interface {
	// LookPath reports whether the named tool is on the execution path.
	LookPath(name string) error
	// Run executes the tool with its stdout/stderr passed through. A
	// non-zero exit surfaces as the returned code with ok=false.
	Run(dir, name string, args ...string) (code int, ok bool, err error)
}

// ExecRunner runs real subprocesses.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

func (e ExecRunner) LookPath(name string) error {
	_, err := exec.LookPath(name)
	return err
}

func (e ExecRunner) Run(dir, name string, args ...string) (int, bool, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr
	err := cmd.Run()
	if err == nil {
		return 0, true, nil
	}
	if exitErr, isExit := err.(*exec.ExitError); isExit {
		return exitErr.ExitCode(), false, nil
	}
	return 1, false, err
}

// Publisher drives the publish sequence. Every step is fatal: there is no
// retry, no rollback, and no partial-success state.
type Publisher struct {
	// Dir is the project directory holding pyproject.toml. Defaults to ".".
	Dir string
	// Env resolves environment variables. Defaults to os.Getenv.
	Env func(string) string
	// Out and Err receive the procedure's own messages.
	Out io.Writer
	Err io.Writer
	// Runner executes the build tool.
	Runner Runner
}

func (p *Publisher) defaults() {
	if p.Dir == "" {
		p.Dir = "."
	}
	if p.Env == nil {
		p.Env = os.Getenv
	}
	if p.Out == nil {
		p.Out = os.Stdout
	}
	if p.Err == nil {
		p.Err = os.Stderr
	}
	if p.Runner == nil {
		p.Runner = ExecRunner{Stdout: p.Out, Stderr: p.Err}
	}
}

// Publish runs the whole sequence and returns the process exit code:
// 0 on success, 1 for a failed precondition, or the build tool's own exit
// code when build or upload fails.
func (p *Publisher) Publish() int {
	p.defaults()

	if _, err := os.Stat(filepath.Join(p.Dir, ManifestName)); err != nil {
		fmt.Fprintf(p.Err, "Error: %s not found\n", ManifestName)
		return 1
	}
	if err := p.Runner.LookPath(BuildTool); err != nil {
		fmt.Fprintf(p.Err, "Error: %s not installed\n", BuildTool)
		return 1
	}
	token := p.Env(TokenEnv)
	if token == "" {
		fmt.Fprintf(p.Err, "Error: %s not set\n", TokenEnv)
		return 1
	}

	if err := p.clean(); err != nil {
		fmt.Fprintf(p.Err, "Error: clean build artifacts: %v\n", err)
		return 1
	}

	if code, ok, err := p.Runner.Run(p.Dir, BuildTool, "build"); err != nil {
		fmt.Fprintf(p.Err, "Error: run %s build: %v\n", BuildTool, err)
		return 1
	} else if !ok {
		return code
	}

	if code, ok, err := p.Runner.Run(p.Dir, BuildTool, "publish", "--token", token); err != nil {
		fmt.Fprintf(p.Err, "Error: run %s publish: %v\n", BuildTool, err)
		return 1
	} else if !ok {
		return code
	}

	fmt.Fprintf(p.Out, "Published: %s\n", PackageURL)
	return 0
}

// clean removes artifacts from earlier builds. Absent paths are not an error.
func (p *Publisher) clean() error {
	for _, name := range []string{"dist", "build"} {
		if err := os.RemoveAll(filepath.Join(p.Dir, name)); err != nil {
			return err
		}
	}
	matches, err := filepath.Glob(filepath.Join(p.Dir, "*.egg-info"))
	if err != nil {
		return err
	}
	for _, match := range matches {
		if err := os.RemoveAll(match); err != nil {
			return err
		}
	}
	return nil
}
