package build

import (
	"bufio"
	"context"
	"errors"
	"os/exec"
	"strings"
)

// maxLineSize bounds a single output line. Stack traces with long classpaths fit comfortably.
const maxLineSize = 1024 * 1024

// Runner executes resolved commands.
type Runner struct{}

// NewRunner creates a process runner.
func NewRunner() *Runner {
	return &Runner{}
}

// Execute runs cmd with stderr merged into stdout. onStart is called once the
// process is spawned, then onLine for each line as it arrives. Both may be nil. It blocks until the process exits. A non-zero exit code is reported in the
// Outcome, not as an error; errors are *StartError, *InterruptedError or *StreamError.
//
// Cancelling ctx kills the whole process group so wrapper scripts do not leave
// orphaned JVMs behind.
func (r *Runner) Execute(ctx context.Context, cmd *Command, onStart func(), onLine func(string)) (*Outcome, error) {
	name := cmd.String()
	if len(cmd.Args) == 0 {
		return nil, &StartError{Command: name, Err: errors.New("empty command")}
	}

	proc := exec.Command(cmd.Args[0], cmd.Args[1:]...)
	proc.Dir = cmd.Dir
	setProcessGroup(proc)

	stdout, err := proc.StdoutPipe()
	if err != nil {
		return nil, &StartError{Command: name, Err: err}
	}
	// Same *os.File for both streams: the child writes into one pipe, in order.
	proc.Stderr = proc.Stdout

	if err := proc.Start(); err != nil {
		return nil, &StartError{Command: name, Err: err}
	}
	if onStart != nil {
		onStart()
	}

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			killProcessGroup(proc)
		case <-stop:
		}
	}()

	var output strings.Builder
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := scanner.Text()
		output.WriteString(line)
		output.WriteByte('\n')
		if onLine != nil {
			onLine(line)
		}
	}
	scanErr := scanner.Err()
	if scanErr != nil {
		// The reader is gone; make sure the child cannot block on a full pipe.
		killProcessGroup(proc)
	}

	waitErr := proc.Wait()

	if ctxErr := ctx.Err(); ctxErr != nil && (waitErr != nil || scanErr != nil) {
		return nil, &InterruptedError{Command: name, Err: ctxErr}
	}
	if scanErr != nil {
		return nil, &StreamError{Command: name, Err: scanErr}
	}

	exitCode := 0
	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return nil, &StreamError{Command: name, Err: waitErr}
		}
		exitCode = exitErr.ExitCode()
	}

	return &Outcome{ExitCode: exitCode, Output: output.String()}, nil
}
