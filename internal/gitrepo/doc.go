// Package gitrepo contains helpers for interrogating and manipulating Git repositories.
//
// It exposes RepositoryManager for cloning, fetching, and branch bookkeeping
// through the system git binary, along with the repository reference parser
// consumed by the mirror synchronizer and the organization lister.
package gitrepo
