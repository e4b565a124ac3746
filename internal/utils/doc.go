// Package utils exposes reusable helpers consumed by multiple commands.
//
// It currently houses ConfigurationLoader and LoggerFactory abstractions that
// integrate Viper, environment variables, and zap logging for the CLI,
// including the optional timestamped log file shared by both subcommands.
package utils
