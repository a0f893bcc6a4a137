package ports

// EndpointRegistry is the ordered set of remembered gallery endpoints with
// one marked active. Membership checks are case-insensitive.
type EndpointRegistry interface {
	// Endpoints returns the remembered endpoints in display order.
	Endpoints() []string

	// Active returns the endpoint currently marked active, or "".
	Active() string

	// SetActive marks the endpoint as the active entry.
	SetActive(endpoint string) error

	// Promote moves the endpoint to the front of the remembered set, adding
	// it first if absent. Promoting an endpoint already at the front is a
	// no-op.
	Promote(endpoint string) error
}
