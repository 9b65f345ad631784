// Package discovery locates the git repositories reviewed in one run: the
// repository containing the target directory and those rooted in its
// immediate children, de-duplicated by resolved root path.
package discovery
