package review

import (
	"fmt"
	"strings"
)

const (
	promptSectionSeparatorConstant         = "\n\n"
	promptHeadingSeparatorConstant         = "\n\n"
	planIntroTemplateConstant              = "You are reviewing an implementation plan against the codebase of the repository `%s`."
	planHeadingConstant                    = "## Plan"
	additionalContextHeadingConstant       = "## Additional Context"
	planChecklistConstant                  = "Evaluate the plan and report on:\n1. Feasibility: can the plan be carried out against the current code as written?\n2. Potential issues: bugs, regressions, or conflicts the plan would introduce.\n3. Missing considerations: edge cases, tests, migrations, or dependencies the plan omits.\n4. Suggested improvements: simpler or safer ways to reach the same goal.\n5. Affected areas: the files, packages, and interfaces the plan would touch."
	planClosingConstant                    = "Explore the codebase to ground your feedback in the actual code. Do not make any modifications."
	reviewParagraphTemplateConstant        = "Review the %s in this repository with the following instructions: %s. %s Provide a detailed review. Do not modify any files."
	uncommittedSubjectConstant             = "uncommitted changes"
	stagedSubjectConstant                  = "staged changes"
	branchSubjectTemplateConstant          = "changes on this branch compared to `%s`"
	commitSubjectTemplateConstant          = "changes in commit `%s`"
	uncommittedInspectionConstant          = "Use `git status` and `git diff HEAD` to inspect the changes."
	stagedInspectionConstant               = "Use `git diff --cached` to inspect the staged changes."
	branchInspectionTemplateConstant       = "Use `git log %[1]s..HEAD` and `git diff %[1]s...HEAD` to inspect the changes."
	commitInspectionTemplateConstant       = "Use `git show %s` to inspect the commit."
	instructionTrailingPunctuationConstant = "."
)

// promptBuilder appends sections in order, dropping any whose content is empty.
type promptBuilder struct {
	sections []string
}

func (builder *promptBuilder) add(content string) *promptBuilder {
	trimmedContent := strings.TrimSpace(content)
	if len(trimmedContent) > 0 {
		builder.sections = append(builder.sections, trimmedContent)
	}
	return builder
}

func (builder *promptBuilder) addLabeled(heading string, content string) *promptBuilder {
	trimmedContent := strings.TrimSpace(content)
	if len(trimmedContent) == 0 {
		return builder
	}
	builder.sections = append(builder.sections, heading+promptHeadingSeparatorConstant+trimmedContent)
	return builder
}

func (builder *promptBuilder) String() string {
	return strings.Join(builder.sections, promptSectionSeparatorConstant)
}

// BuildPrompt returns the instruction text for a repository, or false when the review tool
// should run its built-in review with structural flags only.
func BuildPrompt(config InvocationConfig, repositoryName string) (string, bool) {
	if config.Action == ActionPlan {
		return BuildPlanPrompt(repositoryName, config.PlanContent, config.Instructions), true
	}
	if len(strings.TrimSpace(config.Instructions)) == 0 {
		return "", false
	}
	return BuildReviewPrompt(config.Mode, config.BaseReference, config.CommitReference, config.Instructions), true
}

// BuildPlanPrompt assembles the plan review prompt: intro, plan, additional context, checklist, closing.
func BuildPlanPrompt(repositoryName string, planContent string, instructions string) string {
	builder := &promptBuilder{}
	return builder.
		add(fmt.Sprintf(planIntroTemplateConstant, repositoryName)).
		addLabeled(planHeadingConstant, planContent).
		addLabeled(additionalContextHeadingConstant, instructions).
		add(planChecklistConstant).
		add(planClosingConstant).
		String()
}

// BuildReviewPrompt renders the single-paragraph review instruction for the mode.
func BuildReviewPrompt(mode Mode, baseReference string, commitReference string, instructions string) string {
	subject, inspection := describeMode(mode, baseReference, commitReference)
	trimmedInstructions := strings.TrimRight(strings.TrimSpace(instructions), instructionTrailingPunctuationConstant)
	return fmt.Sprintf(reviewParagraphTemplateConstant, subject, trimmedInstructions, inspection)
}

func describeMode(mode Mode, baseReference string, commitReference string) (string, string) {
	switch mode {
	case ModeStaged:
		return stagedSubjectConstant, stagedInspectionConstant
	case ModeBranch:
		return fmt.Sprintf(branchSubjectTemplateConstant, baseReference), fmt.Sprintf(branchInspectionTemplateConstant, baseReference)
	case ModeCommit:
		return fmt.Sprintf(commitSubjectTemplateConstant, commitReference), fmt.Sprintf(commitInspectionTemplateConstant, commitReference)
	default:
		return uncommittedSubjectConstant, uncommittedInspectionConstant
	}
}
