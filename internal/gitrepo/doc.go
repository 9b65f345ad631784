// Package gitrepo runs the read-only git queries used to describe repository changes.
//
// RepositoryManager resolves working tree roots and reports short status,
// commits ahead of a base reference, commit existence, and commit diff stats.
// Every query runs git with the repository as its working directory.
package gitrepo
