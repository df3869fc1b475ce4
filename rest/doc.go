// Package rest executes authenticated exchanges against a REST resource
// model and classifies their outcome.
//
// An Executor turns a Request into a transport call, attaching the
// session's authorization material, then classifies the answer with
// Classify and sequences the callbacks of the caller:
//
//	exec := rest.NewExecutor(t, sess, rest.WithLogger(log))
//	res, err := exec.Do(ctx, rest.NewRequest(http.MethodGet, "/me", nil))
//
// Do blocks and returns the result of the local callback. Start returns a
// *Connection at once; the local callback runs when the answer arrives,
// followed by the remote callback:
//
//	conn := exec.Start(ctx, req,
//		rest.WithLocal(func(c *rest.Connection) rest.Result { ... }),
//		rest.WithRemote(func(obj any, c *rest.Connection) { ... }),
//	)
//	res, err := conn.Wait(ctx)
//
// Classification is lenient for read-style calls: with shouldPost=false,
// 401/403 and most 4xx answers count as success so that a GET on a
// missing or forbidden resource leaves the caller's object untouched.
// State-confirming calls (WithShouldPost(true)) treat the same codes as
// failures with a diagnostic extracted from the body.
package rest
