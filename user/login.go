package user

import (
	"context"

	"github.com/kbukum/restkit/logger"
	"github.com/kbukum/restkit/rest"
	"github.com/kbukum/restkit/session"
)

// Login installs ctrl as the executor's session, fetches the user and,
// when the server returns an API key, rotates ctrl to it. Any failure
// logs the session out again.
func Login(ctx context.Context, exec *rest.Executor, ctrl *session.LoginController, opts ...Option) (*User, error) {
	sess := exec.Session()
	sess.Login(ctrl)

	u := New(exec, opts...)
	u.UserName = ctrl.Snapshot().Username

	conn, err := u.Fetch(ctx)
	if err == nil {
		err = rejected(conn)
	}
	if err != nil {
		sess.Logout()
		return nil, err
	}

	if key := u.APIKey; key != "" {
		if err := ctrl.SetCredential(session.APIKey(key)); err != nil {
			sess.Logout()
			return nil, err
		}
	}
	u.log.Info("logged in", logger.Fields(
		"user", u.UserName,
		"credential", ctrl.Credential().Kind().String(),
	))
	return u, nil
}

// rejected turns a tolerated non-2xx answer into the error a login must
// fail with.
func rejected(conn *rest.Connection) error {
	resp := conn.Response()
	if resp == nil || resp.IsSuccess() {
		return nil
	}
	if c := rest.Classify(resp.StatusCode(), resp.Body(), true); c.Err != nil {
		return c.Err
	}
	return nil
}

// Logout tears down the executor's session and returns the controller
// that was active, if any.
func Logout(exec *rest.Executor) *session.LoginController {
	return exec.Session().Logout()
}
