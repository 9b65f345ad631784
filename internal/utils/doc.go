// Package utils exposes reusable helpers shared by the CLI and review packages.
//
// ConfigurationLoader layers embedded defaults, configuration files and
// environment variables through Viper. LoggerFactory builds zap loggers for
// the supported levels and formats. CommandContextAccessor carries the
// configuration path and run identifier through cobra contexts, and
// FlushingWriter keeps streamed tool output visible as it is produced.
package utils
