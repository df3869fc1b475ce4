// Package version carries the build version of restkit. It feeds the
// default User-Agent and the service version of exported telemetry.
//
//	go build -ldflags "-X github.com/kbukum/restkit/version.Version=1.0.0"
package version
