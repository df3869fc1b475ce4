// Package component defines the lifecycle interfaces shared by restkit's
// long-lived parts.
//
// A Component starts, stops and reports its health. Registry starts a set
// of components in registration order, stops them in reverse, and rolls
// back the started ones when a start fails. Describable components
// summarize their configuration for startup logs.
package component
