package review

import (
	"context"
	"errors"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/temirov/multireview/internal/codexcli"
	"github.com/temirov/multireview/internal/repos/shared"
)

const (
	discovererMissingMessageConstant         = "repository discoverer not configured"
	describerMissingMessageConstant          = "change describer not configured"
	invokerMissingMessageConstant            = "review invoker not configured"
	reporterMissingMessageConstant           = "reporter not configured"
	reviewsFailedMessageConstant             = "one or more repository reviews failed"
	repositoriesDiscoveredLogMessageConstant = "Repositories discovered"
	repositoryFinishedLogMessageConstant     = "Repository processed"
	logFieldTargetDirectoryConstant          = "target_directory"
	logFieldRepositoryCountConstant          = "repository_count"
	logFieldRepositoryConstant               = "repository"
	logFieldAttemptedConstant                = "attempted"
	logFieldSkipReasonConstant               = "skip_reason"
	logFieldExitCodeConstant                 = "exit_code"
)

var (
	// ErrRepositoryDiscovererNotConfigured indicates the service lacks a discoverer.
	ErrRepositoryDiscovererNotConfigured = errors.New(discovererMissingMessageConstant)
	// ErrChangeDescriberNotConfigured indicates the service lacks a change describer.
	ErrChangeDescriberNotConfigured = errors.New(describerMissingMessageConstant)
	// ErrReviewInvokerNotConfigured indicates the service lacks an invoker.
	ErrReviewInvokerNotConfigured = errors.New(invokerMissingMessageConstant)
	// ErrReporterNotConfigured indicates the service lacks a reporter.
	ErrReporterNotConfigured = errors.New(reporterMissingMessageConstant)
	// ErrReviewsFailed is returned after the summary when any attempted review failed.
	ErrReviewsFailed = errors.New(reviewsFailedMessageConstant)
)

// Describer summarizes a repository's change set.
type Describer interface {
	Describe(executionContext context.Context, repository shared.Repository, config InvocationConfig) (ChangeSummary, error)
}

// Invoker runs the review tool for a repository.
type Invoker interface {
	Invoke(executionContext context.Context, repository shared.Repository, config InvocationConfig, prompt string, hasPrompt bool) (codexcli.Outcome, error)
}

// ServiceDependencies enumerates collaborators required by the service.
type ServiceDependencies struct {
	RepositoryDiscoverer       shared.RepositoryDiscoverer
	Describer                  Describer
	Invoker                    Invoker
	Reporter                   *ConsoleReporter
	Logger                     *zap.Logger
	PromptSizeWarningThreshold int
}

// Service reviews every discovered repository in sequence.
type Service struct {
	discoverer             shared.RepositoryDiscoverer
	describer              Describer
	invoker                Invoker
	reporter               *ConsoleReporter
	logger                 *zap.Logger
	promptWarningThreshold int
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.RepositoryDiscoverer == nil {
		return nil, ErrRepositoryDiscovererNotConfigured
	}
	if dependencies.Describer == nil {
		return nil, ErrChangeDescriberNotConfigured
	}
	if dependencies.Invoker == nil {
		return nil, ErrReviewInvokerNotConfigured
	}
	if dependencies.Reporter == nil {
		return nil, ErrReporterNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	threshold := dependencies.PromptSizeWarningThreshold
	if threshold <= 0 {
		threshold = defaultPromptSizeWarningThresholdConstant
	}
	return &Service{
		discoverer:             dependencies.RepositoryDiscoverer,
		describer:              dependencies.Describer,
		invoker:                dependencies.Invoker,
		reporter:               dependencies.Reporter,
		logger:                 logger,
		promptWarningThreshold: threshold,
	}, nil
}

// Run discovers repositories under the target directory, processes each to completion, prints
// the summary, and returns ErrReviewsFailed when any attempted review did not succeed.
func (service *Service) Run(executionContext context.Context, config InvocationConfig) (Tally, error) {
	repositories, discoveryError := service.discoverer.DiscoverRepositories(executionContext, config.TargetDirectory)
	if discoveryError != nil {
		return Tally{}, discoveryError
	}
	service.logger.Debug(repositoriesDiscoveredLogMessageConstant, zap.String(logFieldTargetDirectoryConstant, config.TargetDirectory), zap.Int(logFieldRepositoryCountConstant, len(repositories)))

	tally := Tally{}
	for repositoryIndex, repository := range repositories {
		outcome := service.processRepository(executionContext, repository, config, repositoryIndex > 0)
		tally = tally.Fold(outcome)
	}

	service.reporter.Finished(config.Action, tally)
	if !tally.Succeeded() {
		return tally, ErrReviewsFailed
	}
	return tally, nil
}

func (service *Service) processRepository(executionContext context.Context, repository shared.Repository, config InvocationConfig, leadingSeparator bool) Outcome {
	service.reporter.RepositoryStarted(repository, leadingSeparator)

	if config.Action == ActionReview {
		summary, describeError := service.describer.Describe(executionContext, repository, config)
		if describeError != nil {
			return service.finish(Outcome{Repository: repository, Failure: describeError})
		}
		service.reporter.ChangeSummary(summary)
		if summary.Skip {
			service.reporter.RepositorySkipped(summary.SkipReason)
			return service.finish(Outcome{Repository: repository, Skipped: true, SkipReason: summary.SkipReason})
		}
	}

	prompt, hasPrompt := BuildPrompt(config, repository.Name)
	if hasPrompt {
		if promptLength := utf8.RuneCountInString(prompt); promptLength > service.promptWarningThreshold {
			service.reporter.PromptSizeExceeded(repository, promptLength)
		}
		if config.Verbose {
			service.reporter.PromptBuilt(repository, prompt)
		}
	}

	invocationOutcome, invocationError := service.invoker.Invoke(executionContext, repository, config, prompt, hasPrompt)
	return service.finish(Outcome{
		Repository: repository,
		Attempted:  true,
		ExitCode:   invocationOutcome.ExitCode,
		Failure:    invocationError,
	})
}

func (service *Service) finish(outcome Outcome) Outcome {
	if outcome.Failed() {
		service.reporter.RepositoryFailed(outcome)
	}
	service.logger.Debug(repositoryFinishedLogMessageConstant,
		zap.String(logFieldRepositoryConstant, outcome.Repository.Path),
		zap.Bool(logFieldAttemptedConstant, outcome.Attempted),
		zap.String(logFieldSkipReasonConstant, string(outcome.SkipReason)),
		zap.Int(logFieldExitCodeConstant, outcome.ExitCode),
	)
	return outcome
}
