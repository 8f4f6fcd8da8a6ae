package build

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Resolver decides how to invoke a build for a project directory.
type Resolver struct {
	// GOOS selects the invocation form. Only "windows" is treated specially.
	GOOS string
}

// NewResolver returns a resolver for the host operating system.
func NewResolver() *Resolver {
	return &Resolver{GOOS: runtime.GOOS}
}

func (r *Resolver) windows() bool {
	return r.GOOS == "windows"
}

// Resolve builds the command that runs goals in projectPath.
//
// A Maven wrapper (mvnw or mvnw.cmd) wins over a Gradle wrapper (gradlew); wrapper
// invocations receive the goals split on whitespace. Without a wrapper the goals are
// handed to the platform shell: as a single "sh -c" argument, or split after "cmd /c"
// on Windows.
func (r *Resolver) Resolve(goals, projectPath string) (*Command, error) {
	info, err := os.Stat(projectPath)
	if err != nil {
		return nil, &ResolutionError{Path: projectPath, Err: err}
	}
	if !info.IsDir() {
		return nil, &ResolutionError{Path: projectPath, Err: ErrNotDirectory}
	}

	var args []string
	switch {
	case exists(projectPath, "mvnw") || exists(projectPath, "mvnw.cmd"):
		args = []string{r.pick("mvnw.cmd", "./mvnw")}
	case exists(projectPath, "gradlew"):
		args = []string{r.pick("gradlew.bat", "./gradlew")}
	case r.windows():
		args = []string{"cmd", "/c"}
	default:
		return &Command{Args: []string{"sh", "-c", goals}, Dir: projectPath}, nil
	}

	args = append(args, strings.Fields(goals)...)
	return &Command{Args: args, Dir: projectPath}, nil
}

func (r *Resolver) pick(windows, unix string) string {
	if r.windows() {
		return windows
	}
	return unix
}

func exists(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}
