package rest

type callConfig struct {
	auth       bool
	shouldPost bool
	local      LocalFunc
	remote     RemoteFunc
}

// CallOption configures one exchange.
type CallOption func(*callConfig)

// WithoutAuth dispatches without session credentials.
func WithoutAuth() CallOption {
	return func(c *callConfig) { c.auth = false }
}

// WithShouldPost marks a state-confirming call, classified strictly.
func WithShouldPost(v bool) CallOption {
	return func(c *callConfig) { c.shouldPost = v }
}

// WithLocal sets the internal callback.
func WithLocal(f LocalFunc) CallOption {
	return func(c *callConfig) { c.local = f }
}

// WithRemote sets the caller's callback. Ignored by Do.
func WithRemote(f RemoteFunc) CallOption {
	return func(c *callConfig) { c.remote = f }
}

func newCallConfig(opts []CallOption) callConfig {
	cfg := callConfig{auth: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
