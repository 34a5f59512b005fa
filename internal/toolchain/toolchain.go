// Package toolchain runs the TFLite Micro generator scripts.
package toolchain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

var (
	ErrExternalTool    = errors.New("toolchain: external tool failed")
	ErrMissingToolRoot = errors.New("toolchain: TFLITE_PATH is not set")
)

const (
	// EnvToolRoot names the checkout of tflite-micro holding the scripts.
	EnvToolRoot = "TFLITE_PATH"

	arraysScript   = "tensorflow/lite/micro/tools/generate_cc_arrays.py"
	resolverScript = "tensorflow/lite/micro/tools/gen_micro_mutable_op_resolver/generate_micro_mutable_op_resolver_from_model.py"

	outputTail = 2048
)

// Invocation is one external process run.
type Invocation struct {
	Name string
	Path string
	Args []string
	Dir  string
}

func (inv Invocation) String() string {
	return strings.Join(append([]string{inv.Path}, inv.Args...), " ")
}

// ToolError reports a tool that exited unsuccessfully.
type ToolError struct {
	Tool     string
	ExitCode int
	Output   string
	Err      error
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s failed", e.Tool)
	if e.ExitCode >= 0 {
		msg += fmt.Sprintf(" with exit status %d", e.ExitCode)
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += "\n" + out
	}
	return msg
}

func (e *ToolError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrExternalTool}
	}
	return []error{ErrExternalTool, e.Err}
}

// Runner executes an invocation to completion.
type Runner interface {
	Run(ctx context.Context, inv Invocation) error
}

// ExecRunner runs invocations as child processes.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, inv Invocation) error {
	cmd := exec.CommandContext(ctx, inv.Path, inv.Args...)
	cmd.Dir = inv.Dir
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		te := &ToolError{Tool: inv.Name, ExitCode: -1, Output: tail(out.String(), outputTail), Err: err}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			te.ExitCode = exitErr.ExitCode()
		}
		return te
	}
	return nil
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}

// Toolchain builds and runs the two generator invocations.
type Toolchain struct {
	Root   string
	Python string
	Runner Runner
}

// New returns a Toolchain rooted at a tflite-micro checkout.
func New(root, python string, runner Runner) (*Toolchain, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, ErrMissingToolRoot
	}
	if strings.TrimSpace(python) == "" {
		python = "python"
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Toolchain{Root: root, Python: python, Runner: runner}, nil
}

// ArraysInvocation converts the model into <stem>_model_data.{cc,h} under
// outDir. workDir is the directory the relative paths are resolved from.
func (t *Toolchain) ArraysInvocation(workDir, outDir, model string) Invocation {
	return Invocation{
		Name: "generate_cc_arrays",
		Path: t.Python,
		Args: []string{filepath.Join(t.Root, arraysScript), outDir, model},
		Dir:  workDir,
	}
}

// ResolverInvocation writes gen_micro_mutable_op_resolver.h under outDir.
func (t *Toolchain) ResolverInvocation(workDir, outDir, model string) Invocation {
	return Invocation{
		Name: "generate_micro_mutable_op_resolver",
		Path: t.Python,
		Args: []string{
			filepath.Join(t.Root, resolverScript),
			"--common_tflite_path=" + filepath.Dir(model),
			"--input_tflite_files=" + filepath.Base(model),
			"--output_dir=" + outDir,
		},
		Dir: workDir,
	}
}

// GenerateArrays runs generate_cc_arrays.py.
func (t *Toolchain) GenerateArrays(ctx context.Context, workDir, outDir, model string) error {
	return t.run(ctx, t.ArraysInvocation(workDir, outDir, model))
}

// GenerateResolver runs the op resolver generator.
func (t *Toolchain) GenerateResolver(ctx context.Context, workDir, outDir, model string) error {
	return t.run(ctx, t.ResolverInvocation(workDir, outDir, model))
}

func (t *Toolchain) run(ctx context.Context, inv Invocation) error {
	if err := t.Runner.Run(ctx, inv); err != nil {
		var te *ToolError
		if errors.As(err, &te) {
			return err
		}
		return &ToolError{Tool: inv.Name, ExitCode: -1, Err: err}
	}
	return nil
}
