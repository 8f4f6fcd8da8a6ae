package build

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"devmcp-agent/src/logger"
	"devmcp-agent/src/notify"
	"devmcp-agent/src/store"
)

// AnalysisSeparator separates captured output from the failure analysis.
const AnalysisSeparator = "\n\n--- AI Analysis (MCP Sampling) ---\n"

// ExecutionErrorPrefix starts the result of a build that could not be run.
const ExecutionErrorPrefix = "Build execution error: "

// CommandResolver turns goals and a project directory into a command.
type CommandResolver interface {
	Resolve(goals, projectPath string) (*Command, error)
}

// ProcessRunner executes a command, streaming its output lines. onStart is
// called once the process has been spawned, before any line is read.
type ProcessRunner interface {
	Execute(ctx context.Context, cmd *Command, onStart func(), onLine func(string)) (*Outcome, error)
}

// Orchestrator runs one build end to end: resolve, execute, analyze on failure,
// store the result. It reports progress through a per-build notify.Sink.
type Orchestrator struct {
	resolver CommandResolver
	runner   ProcessRunner
	analyzer *Analyzer
	results  store.ResultStore
	events   notify.Observer
	logger   logger.Logger
	newID    func() string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithResolver replaces the host resolver.
func WithResolver(r CommandResolver) Option {
	return func(o *Orchestrator) { o.resolver = r }
}

// WithRunner replaces the process runner.
func WithRunner(r ProcessRunner) Option {
	return func(o *Orchestrator) { o.runner = r }
}

// WithEventObserver adds an observer that sees every build, such as the event broker.
func WithEventObserver(obs notify.Observer) Option {
	return func(o *Orchestrator) { o.events = obs }
}

// WithLogger sets the logger. Defaults to a silent logger.
func WithLogger(log logger.Logger) Option {
	return func(o *Orchestrator) { o.logger = log }
}

// WithIDGenerator overrides how build IDs are generated.
func WithIDGenerator(fn func() string) Option {
	return func(o *Orchestrator) { o.newID = fn }
}

// NewOrchestrator creates an orchestrator writing results to results.
func NewOrchestrator(results store.ResultStore, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		resolver: NewResolver(),
		runner:   NewRunner(),
		results:  results,
		logger:   logger.NewSilentLogger(),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.analyzer = NewAnalyzer(o.logger)
	return o
}

// Run builds goals in projectPath and returns the resulting text, which is also
// stored as the last result. It never fails: errors are reported in the text.
//
// observer receives this build's progress and log events; delegate is asked to
// explain a failed build. Both may be nil.
func (o *Orchestrator) Run(ctx context.Context, goals, projectPath string, observer notify.Observer, delegate Delegate) string {
	buildID := o.newID()
	sink := notify.NewSink(ctx, buildID, notify.NewFanout(observer, o.events), o.logger)
	defer sink.Close()

	o.logger.Info("[Orchestrator] Build %s: %q in %s", buildID, goals, projectPath)

	outcome, result, err := o.execute(ctx, goals, projectPath, sink, delegate)
	completion := notify.Completion{}
	if err != nil {
		o.logger.Error("[Orchestrator] Build %s failed to run: %v", buildID, err)
		result = ExecutionErrorPrefix + err.Error()
		completion.Error = err.Error()
	} else {
		code := outcome.ExitCode
		completion.ExitCode = &code
		o.logger.Info("[Orchestrator] Build %s finished with exit code %d", buildID, code)
	}

	o.results.Set(result)

	completion.Result = result
	sink.Completed(completion)
	return result
}

func (o *Orchestrator) execute(ctx context.Context, goals, projectPath string, sink *notify.Sink, delegate Delegate) (outcome *Outcome, result string, err error) {
	defer func() {
		if r := recover(); r != nil {
			outcome, result, err = nil, "", &PanicError{Value: r}
		}
	}()

	sink.Milestone("[1/4] Resolving project: " + projectPath)
	sink.Progress(0.0, 1.0, "[1/4] Resolving project...")

	cmd, err := o.resolver.Resolve(goals, projectPath)
	if err != nil {
		return nil, "", err
	}

	sink.Milestone("[2/4] Starting: " + cmd.String())
	sink.Progress(0.25, 1.0, "[2/4] Build starting...")

	started := func() {
		sink.Milestone("[3/4] Build running...")
		sink.Progress(0.5, 1.0, "[3/4] Build running...")
	}
	outcome, err = o.runner.Execute(ctx, cmd, started, func(line string) {
		o.logger.Debug("[build] %s", line)
		sink.Log(line)
	})
	if err != nil {
		return nil, "", err
	}

	sink.Progress(1.0, 1.0, fmt.Sprintf("[4/4] Build complete — exit code: %d", outcome.ExitCode))
	sink.Milestone(fmt.Sprintf("[4/4] Build finished with exit code %d", outcome.ExitCode))

	if outcome.Succeeded() {
		return outcome, outcome.Output, nil
	}

	analysis := o.analyzer.Analyze(ctx, delegate, outcome.Output)
	return outcome, outcome.Output + AnalysisSeparator + analysis, nil
}
