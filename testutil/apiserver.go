package testutil

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/restkit/component"
	"github.com/kbukum/restkit/digest"
	"github.com/kbukum/restkit/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// SeedUser is a user the APIServer knows at start and after Reset.
type SeedUser struct {
	UserName     string
	Password     string
	APIKey       string
	Organization string
	FirstName    string
	LastName     string
	Email        string
}

type storedUser struct {
	ID             string
	UserName       string
	PasswordDigest string
	APIKey         string
	Organization   string
	FirstName      string
	LastName       string
	Email          string
}

func (u storedUser) json() gin.H {
	return gin.H{
		"ID":        u.ID,
		"userName":  u.UserName,
		"password":  nil,
		"APIKey":    u.APIKey,
		"firstName": u.FirstName,
		"lastName":  u.LastName,
		"email":     u.Email,
	}
}

// RecordedRequest is a request seen by the APIServer.
type RecordedRequest struct {
	Method  string
	Path    string
	Headers http.Header
	Body    []byte
}

type scripted struct {
	status    int
	body      any
	remaining int
}

// APIServerOption configures an APIServer.
type APIServerOption func(*APIServer)

// WithUsers seeds users.
func WithUsers(users ...SeedUser) APIServerOption {
	return func(s *APIServer) { s.seed = append(s.seed, users...) }
}

// WithPrefix mounts the routes under prefix (e.g. "/api/v1").
func WithPrefix(prefix string) APIServerOption {
	return func(s *APIServer) { s.prefix = "/" + strings.Trim(prefix, "/") }
}

// WithDigester sets how stored password digests are computed. Defaults to SHA-1.
func WithDigester(d digest.Digester) APIServerOption {
	return func(s *APIServer) { s.digester = d }
}

// WithHeaders sets the session header names the server reads.
func WithHeaders(h session.Headers) APIServerOption {
	return func(s *APIServer) { s.headers = h }
}

// APIServer is an in-memory REST backend for integration tests.
type APIServer struct {
	mu        sync.RWMutex
	seed      []SeedUser
	users     map[string]storedUser
	scripted  map[string]*scripted
	requests  []RecordedRequest
	digester  digest.Digester
	headers   session.Headers
	prefix    string
	engine    *gin.Engine
	ts        *httptest.Server
	started   bool
	seedError error
}

var _ TestComponent = (*APIServer)(nil)

// NewAPIServer creates a server. It listens once started.
func NewAPIServer(opts ...APIServerOption) *APIServer {
	s := &APIServer{digester: digest.NewSHA1()}
	for _, opt := range opts {
		opt(s)
	}
	if s.prefix == "/" {
		s.prefix = ""
	}
	s.headers.ApplyDefaults()
	s.seedError = s.reset()
	s.engine = s.routes()
	return s
}

// URL returns the base URL including the prefix, empty until started.
func (s *APIServer) URL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ts == nil {
		return ""
	}
	return s.ts.URL + s.prefix
}

// GinEngine returns the engine for extra routes.
func (s *APIServer) GinEngine() *gin.Engine { return s.engine }

// Respond scripts the answer of method+path for the next times requests.
// times <= 0 scripts it until Reset.
func (s *APIServer) Respond(method, path string, status int, body any, times int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scripted[routeKey(method, s.prefix+path)] = &scripted{status: status, body: body, remaining: times}
}

// Requests returns the recorded requests.
func (s *APIServer) Requests() []RecordedRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]RecordedRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// APIKey returns the current API key of a user.
func (s *APIServer) APIKey(userName string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users[userName].APIKey
}

// PasswordDigest returns the stored password digest of a user.
func (s *APIServer) PasswordDigest(userName string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users[userName].PasswordDigest
}

// --- component.Component ---

// Name returns the component name.
func (s *APIServer) Name() string { return "api-server" }

// Start begins serving.
func (s *APIServer) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seedError != nil {
		return s.seedError
	}
	if s.started {
		return fmt.Errorf("component already started")
	}
	s.ts = httptest.NewServer(s.engine)
	s.started = true
	return nil
}

// Stop closes the listener.
func (s *APIServer) Stop(_ context.Context) error {
	s.mu.Lock()
	ts := s.ts
	s.ts, s.started = nil, false
	s.mu.Unlock()
	if ts != nil {
		ts.Close()
	}
	return nil
}

// Health reports whether the server is listening.
func (s *APIServer) Health(_ context.Context) component.Health {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return component.Health{Name: s.Name(), Status: component.StatusUnhealthy, Message: "not started"}
	}
	return component.Health{Name: s.Name(), Status: component.StatusHealthy}
}

// --- TestComponent ---

// Reset restores the seeded users and drops scripted answers and recorded requests.
func (s *APIServer) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reset()
}

// Snapshot captures the user table.
func (s *APIServer) Snapshot(_ context.Context) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.users), nil
}

// Restore replaces the user table with a snapshot.
func (s *APIServer) Restore(_ context.Context, snapshot any) error {
	users, ok := snapshot.(map[string]storedUser)
	if !ok {
		return fmt.Errorf("api-server: unexpected snapshot type %T", snapshot)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = maps.Clone(users)
	return nil
}

func (s *APIServer) reset() error {
	s.users = make(map[string]storedUser, len(s.seed))
	s.scripted = make(map[string]*scripted)
	s.requests = nil
	for _, u := range s.seed {
		stored := storedUser{
			ID:           uuid.NewString(),
			UserName:     u.UserName,
			APIKey:       u.APIKey,
			Organization: u.Organization,
			FirstName:    u.FirstName,
			LastName:     u.LastName,
			Email:        u.Email,
		}
		if u.Password != "" {
			d, err := s.digester.Digest(u.Password)
			if err != nil {
				return fmt.Errorf("api-server: seed %s: %w", u.UserName, err)
			}
			stored.PasswordDigest = d
		}
		s.users[u.UserName] = stored
	}
	return nil
}

// --- routes ---

func routeKey(method, path string) string { return method + " " + path }

func (s *APIServer) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.record(), s.script())

	g := r.Group(s.prefix)
	g.GET("/me", s.authenticate(), s.getMe)
	g.PUT("/me", s.authenticate(), s.putMe)
	g.PUT("/echo", s.echo)
	g.POST("/echo", s.echo)
	return r
}

func (s *APIServer) record() gin.HandlerFunc {
	return func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method:  c.Request.Method,
			Path:    c.Request.URL.Path,
			Headers: c.Request.Header.Clone(),
			Body:    body,
		})
		s.mu.Unlock()
		c.Next()
	}
}

func (s *APIServer) script() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		key := routeKey(c.Request.Method, c.Request.URL.Path)
		sc, ok := s.scripted[key]
		if ok && sc.remaining > 0 {
			sc.remaining--
			if sc.remaining == 0 {
				delete(s.scripted, key)
			}
		}
		s.mu.Unlock()

		if !ok {
			c.Next()
			return
		}
		if sc.body == nil {
			c.AbortWithStatus(sc.status)
			return
		}
		c.AbortWithStatusJSON(sc.status, sc.body)
	}
}

func (s *APIServer) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := s.lookup(c.GetHeader(session.DefaultAuthorizationHeader), proposedDigest(c))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				ErrorBody("Unauthorized", "The credentials are not valid."))
			return
		}
		if user.Organization != "" && c.GetHeader(s.headers.Organization) != user.Organization {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				ErrorBody("Unauthorized", "Unknown organization."))
			return
		}
		c.Set("user", user.UserName)
		c.Next()
	}
}

// proposedDigest returns the password digest carried by a PUT body. A
// password change authenticates with the new password, which must match it.
func proposedDigest(c *gin.Context) string {
	if c.Request.Method != http.MethodPut {
		return ""
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return ""
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	var payload struct {
		Password string `json:"password"`
	}
	if json.Unmarshal(body, &payload) != nil {
		return ""
	}
	return payload.Password
}

func (s *APIServer) lookup(header, proposed string) (storedUser, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || scheme != s.headers.AuthorizationScheme {
		return storedUser{}, false
	}
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return storedUser{}, false
	}
	name, secret, ok := strings.Cut(string(raw), ":")
	if !ok || secret == "" {
		return storedUser{}, false
	}

	s.mu.RLock()
	user, found := s.users[name]
	s.mu.RUnlock()
	if !found {
		return storedUser{}, false
	}
	if user.APIKey != "" && secret == user.APIKey {
		return user, true
	}
	for _, want := range []string{user.PasswordDigest, proposed} {
		if want == "" {
			continue
		}
		if match, err := digest.Matches(s.digester, secret, want); err == nil && match {
			return user, true
		}
	}
	return storedUser{}, false
}

func (s *APIServer) getMe(c *gin.Context) {
	s.mu.RLock()
	user := s.users[c.GetString("user")]
	s.mu.RUnlock()
	c.JSON(http.StatusOK, user.json())
}

func (s *APIServer) putMe(c *gin.Context) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorBody("Bad Request", err.Error()))
		return
	}

	s.mu.Lock()
	user := s.users[c.GetString("user")]
	if v, ok := body["firstName"].(string); ok {
		user.FirstName = v
	}
	if v, ok := body["lastName"].(string); ok {
		user.LastName = v
	}
	if v, ok := body["email"].(string); ok {
		user.Email = v
	}
	if v, ok := body["password"].(string); ok && v != "" {
		user.PasswordDigest = v
		user.APIKey = uuid.NewString()
	}
	s.users[user.UserName] = user
	s.mu.Unlock()

	c.JSON(http.StatusOK, user.json())
}

func (s *APIServer) echo(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}
	c.Data(http.StatusOK, "application/json", body)
}

// ErrorBody builds the error payload the backend returns on failures.
func ErrorBody(title, description string) map[string]any {
	return map[string]any{
		"errors": []any{
			map[string]any{
				"property": "",
				"descriptions": []any{
					map[string]any{"title": title, "description": description},
				},
			},
		},
	}
}
