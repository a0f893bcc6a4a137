// Package ports defines the interfaces (ports) that connect the application
// layer to infrastructure adapters.
//
// In Clean Architecture / Hexagonal Architecture, ports are the boundaries
// between the application core and the outside world. They define what the
// application needs from external systems without specifying how those needs
// are fulfilled.
//
// # Port Interfaces
//
//   - [GalleryChannel]: Pushes a package stream to a gallery endpoint
//   - [ProgressSink]: Receives progress and terminal notifications from a push
//   - [CredentialStore]: Reads and writes the per-endpoint credential
//   - [EndpointRegistry]: The ordered set of remembered endpoints, one active
//   - [Settings]: Persists the default protocol variant across sessions
//   - [HTTPClient]: HTTP request abstraction for dependency injection
//
// # Usage
//
// The application layer (internal/app) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) implement them with concrete
// implementations (file system, HTTP, etc.).
package ports
