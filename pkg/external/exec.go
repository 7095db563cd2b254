package external

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/yaklabco/gosage/internal/logging"
	"github.com/yaklabco/gosage/internal/resilience"
)

// Tool is a command line plus the guards every invocation goes through.
type Tool struct {
	// Command is the executable followed by fixed arguments.
	Command []string

	// Timeout bounds a single run. Zero means no limit beyond ctx.
	Timeout time.Duration

	Pool    *Pool
	Breaker *resilience.Breaker

	// OKCodes lists exit codes that count as success besides zero.
	OKCodes []int
}

type output struct {
	stdout []byte
	stderr []byte
	code   int
}

// run executes the tool with extra arguments and stdin.
func (t *Tool) run(ctx context.Context, args []string, stdin []byte) (output, error) {
	if len(t.Command) == 0 {
		return output{}, fmt.Errorf("%w: no command configured", ErrUnavailable)
	}
	name := t.Command[0]

	var out output
	err := t.Pool.Run(ctx, func() error {
		return t.Breaker.Execute(func() error {
			var err error
			out, err = t.exec(ctx, args, stdin)
			return err
		})
	})
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return out, fmt.Errorf("%w: %s: %w", ErrUnavailable, name, err)
	}
	return out, err
}

func (t *Tool) exec(ctx context.Context, args []string, stdin []byte) (output, error) {
	if t.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.Timeout)
		defer cancel()
	}

	name := t.Command[0]
	argv := append(append([]string(nil), t.Command[1:]...), args...)
	cmd := exec.CommandContext(ctx, name, argv...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	logging.FromContext(ctx).Debug("ran external tool",
		logging.FieldCommand, name+" "+strings.Join(argv, " "),
		logging.FieldDuration, time.Since(start),
	)

	out := output{stdout: stdout.Bytes(), stderr: stderr.Bytes()}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return out, fmt.Errorf("%s: %w", name, ctxErr)
	}
	if errors.Is(err, exec.ErrNotFound) {
		return out, fmt.Errorf("%w: %s not found", ErrUnavailable, name)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.code = exitErr.ExitCode()
		for _, ok := range t.OKCodes {
			if out.code == ok {
				return out, nil
			}
		}
		return out, &ExitError{Tool: name, Code: out.code, Stderr: stderr.String()}
	}
	if err != nil {
		return out, fmt.Errorf("running %s: %w", name, err)
	}
	return out, nil
}

// Version runs the tool's executable with --version and returns the first
// line of its output. It bypasses the pool and breaker.
func (t *Tool) Version(ctx context.Context) (string, error) {
	if len(t.Command) == 0 {
		return "", fmt.Errorf("%w: no command configured", ErrUnavailable)
	}
	probe := &Tool{Command: t.Command[:1], Timeout: t.Timeout}
	out, err := probe.exec(ctx, []string{"--version"}, nil)
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(out.stdout)), "\n")
	return line, nil
}
