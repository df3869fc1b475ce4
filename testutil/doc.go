// Package testutil provides test doubles for code built on restkit.
//
// FakeTransport scripts the answers of the wire. It records every request,
// can hold completions behind a gate to exercise cancellation, and
// implements transport.AsyncTransport:
//
//	ft := testutil.NewFakeTransport(testutil.JSON(200, map[string]any{"userName": "alice"}))
//	exec := rest.NewExecutor(ft, sess)
//
// APIServer is a gin-backed REST backend served over httptest. It holds
// users in memory, authenticates the XREST Authorization header against
// either the stored password digest or the API key, and rotates the API
// key when a password changes. A PUT that changes the password
// authenticates with the new password. It implements TestComponent so it can be
// reset, snapshotted and managed like any other test component:
//
//	srv := testutil.NewAPIServer(testutil.WithUsers(testutil.SeedUser{UserName: "alice", Password: "secret"}))
//	testutil.T(t).Setup(srv)
//	cfg.Session.BaseURL = srv.URL()
//
// Manager starts and stops several TestComponents together.
package testutil
