// Package logger provides structured logging for iterkit using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers with structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("prefetch")
//	log.Info("worker started", logger.Fields(logger.FieldEngineID, id))
package logger
