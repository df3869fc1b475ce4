// Package user maps the authenticated user resource and drives the
// password to API key credential rotation.
//
//	u, err := user.Login(ctx, exec, ctrl)
//	...
//	conn, err := u.ChangePassword(ctx, "n3w-secret")
package user

import (
	"context"
	"sync"

	"github.com/kbukum/restkit/digest"
	"github.com/kbukum/restkit/errors"
	"github.com/kbukum/restkit/logger"
	"github.com/kbukum/restkit/resource"
	"github.com/kbukum/restkit/rest"
	"github.com/kbukum/restkit/session"
)

// DefaultPath is the resource path of the authenticated user.
const DefaultPath = "/me"

// User is the authenticated user resource. Exported fields follow the
// server's field names. A User must not be modified by the caller while
// one of its exchanges is in flight.
type User struct {
	ID        string `json:"ID,omitempty"`
	UserName  string `json:"userName"`
	Password  string `json:"password,omitempty"`
	APIKey    string `json:"APIKey,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`

	mu          sync.Mutex
	exec        *rest.Executor
	digester    digest.Digester
	path        string
	log         *logger.Logger
	newPassword string
}

// Option configures a User.
type Option func(*User)

// WithDigester sets the digest applied to new passwords. Defaults to SHA-1.
func WithDigester(d digest.Digester) Option {
	return func(u *User) {
		if d != nil {
			u.digester = d
		}
	}
}

// WithPath overrides DefaultPath.
func WithPath(p string) Option {
	return func(u *User) {
		if p != "" {
			u.path = p
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(u *User) {
		if l != nil {
			u.log = l.WithComponent("user")
		}
	}
}

// New returns an empty user bound to exec.
func New(exec *rest.Executor, opts ...Option) *User {
	u := &User{
		exec:     exec,
		digester: digest.NewSHA1(),
		path:     DefaultPath,
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Path returns the resource path.
func (u *User) Path() string { return u.path }

// PrepareChangePassword stages p for the next Save.
func (u *User) PrepareChangePassword(p string) error {
	if p == "" {
		return errors.InvalidInput("password", "new password is empty")
	}
	u.mu.Lock()
	u.newPassword = p
	u.mu.Unlock()
	return nil
}

// ChangePassword stages p and saves the user.
func (u *User) ChangePassword(ctx context.Context, p string) (*rest.Connection, error) {
	if err := u.PrepareChangePassword(p); err != nil {
		return nil, err
	}
	return u.Save(ctx)
}

// Save PUTs the user and blocks until the outcome is merged. A staged
// password is sent as its digest and becomes the session credential until
// the server answers with an API key.
//
// The error is the raised error of the exchange, or the diagnostic of a
// classification failure. ROTATION_IN_PROGRESS is returned without
// dispatching when another save holds the session's rotation slot.
func (u *User) Save(ctx context.Context) (*rest.Connection, error) {
	req, ctrl, release, err := u.beginSave()
	if err != nil {
		return nil, err
	}
	defer release()

	res, err := u.exec.Do(ctx, req,
		rest.WithShouldPost(true),
		rest.WithLocal(u.didSave(ctrl, release)),
	)
	conn := res.Conn
	if err != nil {
		return conn, err
	}
	if err := conn.Err(); err != nil {
		return conn, err
	}
	if conn.Succeeded() && !ctrl.Credential().IsAPIKey() {
		return conn, errors.InvalidCredential("server returned no API key, keeping the password credential")
	}
	return conn, nil
}

// SaveAsync is the non-blocking form of Save. remote receives the user
// once the outcome is merged. The error is set only when the save could
// not be dispatched.
func (u *User) SaveAsync(ctx context.Context, remote rest.RemoteFunc) (*rest.Connection, error) {
	req, ctrl, release, err := u.beginSave()
	if err != nil {
		return nil, err
	}
	conn := u.exec.Start(ctx, req,
		rest.WithShouldPost(true),
		rest.WithLocal(u.didSave(ctrl, release)),
		rest.WithRemote(remote),
	)
	// A cancelled save never reaches didSave.
	go func() {
		<-conn.Done()
		release()
	}()
	return conn, nil
}

// beginSave claims the rotation slot, stages the new password and builds
// the PUT request.
func (u *User) beginSave() (*rest.Request, *session.LoginController, func(), error) {
	ctrl, err := u.exec.Session().Current()
	if err != nil {
		return nil, nil, nil, err
	}
	release, err := ctrl.BeginRotation()
	if err != nil {
		return nil, nil, nil, err
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	if p := u.newPassword; p != "" {
		hashed, err := u.digester.Digest(p)
		if err != nil {
			release()
			return nil, nil, nil, errors.Internal(err)
		}
		if err := ctrl.SetCredential(session.Password(p)); err != nil {
			release()
			return nil, nil, nil, err
		}
		u.Password = hashed
	}
	body, err := resource.ToMap(u)
	if err != nil {
		release()
		return nil, nil, nil, errors.InvalidInput("user", err.Error())
	}
	return rest.NewRequest("PUT", u.path, body), ctrl, release, nil
}

func (u *User) didSave(ctrl *session.LoginController, release func()) rest.LocalFunc {
	return func(conn *rest.Connection) rest.Result {
		defer release()
		if !conn.Succeeded() {
			u.log.Warn("user save failed, keeping the password credential", logger.Fields(
				logger.FieldConnectionID, conn.ID(),
				logger.FieldVerdict, conn.Verdict().String(),
			))
			return rest.Result{Object: u}
		}

		u.mu.Lock()
		u.newPassword = ""
		u.Password = "" // sent once; a later Save must not change the password again
		u.merge(conn)
		key := u.APIKey
		u.mu.Unlock()

		if key == "" {
			u.log.Warn("user saved without an API key", logger.Fields(logger.FieldConnectionID, conn.ID()))
			return rest.Result{Object: u}
		}
		if err := ctrl.SetCredential(session.APIKey(key)); err != nil {
			u.log.Warn("rejected API key from server", logger.Fields(logger.FieldError, err.Error()))
		}
		return rest.Result{Object: u}
	}
}

// Fetch GETs the user and merges a 2xx object body. Tolerated failures
// and empty bodies leave the user unchanged.
func (u *User) Fetch(ctx context.Context) (*rest.Connection, error) {
	res, err := u.exec.Do(ctx, rest.NewRequest("GET", u.path, nil), rest.WithLocal(u.didFetch))
	if err != nil {
		return res.Conn, err
	}
	return res.Conn, res.Conn.Err()
}

// FetchAsync is the non-blocking form of Fetch.
func (u *User) FetchAsync(ctx context.Context, remote rest.RemoteFunc) *rest.Connection {
	return u.exec.Start(ctx, rest.NewRequest("GET", u.path, nil),
		rest.WithLocal(u.didFetch),
		rest.WithRemote(remote),
	)
}

func (u *User) didFetch(conn *rest.Connection) rest.Result {
	if conn.Succeeded() {
		u.mu.Lock()
		u.merge(conn)
		u.mu.Unlock()
	}
	return rest.Result{Object: u}
}

// merge copies a 2xx object body into u. Callers hold u.mu.
func (u *User) merge(conn *rest.Connection) {
	resp := conn.Response()
	if resp == nil || !resp.IsSuccess() {
		return
	}
	obj, ok := resp.Object()
	if !ok {
		return
	}
	if err := resource.Merge(u, obj); err != nil {
		u.log.Warn("could not merge user resource", logger.Fields(
			logger.FieldConnectionID, conn.ID(),
			logger.FieldError, err.Error(),
		))
	}
}
