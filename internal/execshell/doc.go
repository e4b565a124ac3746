// Package execshell provides structured helpers for invoking the git binary.
//
// It wraps os/exec behind ShellExecutor with zap-backed lifecycle logging,
// exposes OSCommandRunner for default process execution, and defines the
// abstractions used throughout reporover to run git in a testable manner.
package execshell
