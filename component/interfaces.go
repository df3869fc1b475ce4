package component

import "context"

// HealthStatus represents the health state of a component.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusDegraded  HealthStatus = "degraded"
)

// Health holds health information for a component.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Component is a lifecycle-managed part of an SDK client: telemetry
// exporters, the authenticated session, test backends.
type Component interface {
	// Name returns the unique name of the component for registration.
	Name() string

	// Start initializes and starts the component.
	Start(ctx context.Context) error

	// Stop shuts the component down and releases its resources.
	Stop(ctx context.Context) error

	// Health returns the current health status of the component.
	Health(ctx context.Context) Health
}

// Description holds summary information about a component.
type Description struct {
	// Name is the display name. If empty, the component's Name() is used.
	Name string
	// Type categorizes the component: "rest-client", "telemetry", ...
	Type string
	// Details is a one-liner such as "https://api.example.com/api/v1 org=acme".
	Details string
}

// Describable is optionally implemented by Components that can describe
// their configuration.
type Describable interface {
	Describe() Description
}

// Aggregate folds several health reports into one named report. The
// worst status wins; messages of non-healthy parts are joined.
func Aggregate(name string, parts []Health) Health {
	out := Health{Name: name, Status: StatusHealthy}
	for _, h := range parts {
		switch {
		case h.Status == StatusUnhealthy:
			out.Status = StatusUnhealthy
		case h.Status == StatusDegraded && out.Status == StatusHealthy:
			out.Status = StatusDegraded
		}
		if h.Status != StatusHealthy && h.Message != "" {
			if out.Message != "" {
				out.Message += "; "
			}
			out.Message += h.Name + ": " + h.Message
		}
	}
	return out
}
