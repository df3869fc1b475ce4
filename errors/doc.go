// Package errors provides the structured error type used across restkit.
//
// Every failure surfaced by the SDK is an *AppError carrying a
// machine-readable code, a human-readable message and optional details.
// Classification diagnostics extracted from a server payload travel in
// Details under the "title" and "description" keys.
package errors
