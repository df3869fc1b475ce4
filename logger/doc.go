// Package logger provides structured logging for restkit using zerolog.
//
// Loggers are passed explicitly to the executor, the session flows and
// the transport middleware; there is no package-level logger. Exchange
// logs carry the connection id so a launch, its response and its
// diagnostic can be correlated.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.NewDefault("restkit").WithComponent("executor")
//	log.Debug("launch", logger.Fields(logger.FieldMethod, "GET", logger.FieldURL, url))
package logger
