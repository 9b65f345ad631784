// Package review reviews every repository in a workspace with codex.
//
// OptionsResolver validates command-line input into an InvocationConfig,
// ChangeDescriber summarizes each repository and decides whether it is
// skipped, BuildPrompt assembles instructions, ReviewInvoker runs codex, and
// Service folds the per-repository outcomes into a Tally. CommandBuilder
// exposes the workflow as a Cobra command.
package review
