package ports

// Settings persists the default protocol variant across sessions. The value
// is read at session construction and written back at session disposal.
type Settings interface {
	// DefaultUseV1 reports whether new sessions default to the V1 protocol.
	DefaultUseV1() bool

	// SetDefaultUseV1 persists the default protocol variant.
	SetDefaultUseV1(v1 bool) error
}
