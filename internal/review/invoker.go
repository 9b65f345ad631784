package review

import (
	"context"
	"errors"
	"io"

	"github.com/temirov/multireview/internal/codexcli"
	"github.com/temirov/multireview/internal/repos/shared"
	"github.com/temirov/multireview/internal/utils"
)

const codexClientMissingMessageConstant = "codex client not configured"

// ErrCodexClientNotConfigured indicates the invoker lacks a review tool client.
var ErrCodexClientNotConfigured = errors.New(codexClientMissingMessageConstant)

// CodexClient runs the external review tool in one of its two invocation modes.
type CodexClient interface {
	Review(executionContext context.Context, request codexcli.ReviewRequest) (codexcli.Outcome, error)
	Exec(executionContext context.Context, request codexcli.ExecRequest) (codexcli.Outcome, error)
}

// ReviewInvoker runs the review tool for one repository and reports its exit status.
// Tool output streams straight to the configured writers.
type ReviewInvoker struct {
	client         CodexClient
	sandbox        string
	model          string
	extraArguments []string
	streams        codexcli.InvocationStreams
}

// NewReviewInvoker constructs an invoker; the configured model is used when no override is given.
func NewReviewInvoker(client CodexClient, configuration CommandConfiguration, standardOutput io.Writer, standardError io.Writer) (*ReviewInvoker, error) {
	if client == nil {
		return nil, ErrCodexClientNotConfigured
	}
	sanitized := configuration.Sanitize()
	return &ReviewInvoker{
		client:         client,
		sandbox:        sanitized.Sandbox,
		model:          sanitized.Model,
		extraArguments: sanitized.ExtraArguments,
		streams: codexcli.InvocationStreams{
			StandardOutput: utils.NewFlushingWriter(standardOutput),
			StandardError:  utils.NewFlushingWriter(standardError),
		},
	}, nil
}

// Invoke runs exec mode with the prompt when one exists, and the built-in review mode otherwise.
func (invoker *ReviewInvoker) Invoke(executionContext context.Context, repository shared.Repository, config InvocationConfig, prompt string, hasPrompt bool) (codexcli.Outcome, error) {
	model := config.Model
	if len(model) == 0 {
		model = invoker.model
	}

	if hasPrompt {
		return invoker.client.Exec(executionContext, codexcli.ExecRequest{
			RepositoryPath: repository.Path,
			Prompt:         prompt,
			Sandbox:        invoker.sandbox,
			Model:          model,
			ExtraArguments: invoker.extraArguments,
			Streams:        invoker.streams,
		})
	}

	return invoker.client.Review(executionContext, codexcli.ReviewRequest{
		RepositoryPath: repository.Path,
		Selector:       changeSelector(config),
		Model:          model,
		ExtraArguments: invoker.extraArguments,
		Streams:        invoker.streams,
	})
}

func changeSelector(config InvocationConfig) codexcli.ChangeSelector {
	switch config.Mode {
	case ModeBranch:
		return codexcli.ChangeSelector{BaseReference: config.BaseReference}
	case ModeCommit:
		return codexcli.ChangeSelector{CommitReference: config.CommitReference}
	default:
		return codexcli.ChangeSelector{Uncommitted: true}
	}
}
