// Package cli assembles the reporover command-line application: the root
// cobra command, configuration loading, and logger construction shared by the
// org-list and repo-sync subcommands.
package cli
