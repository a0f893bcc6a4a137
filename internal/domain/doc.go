// Package domain contains the core domain entities and value objects for pkgship.
//
// This package represents the innermost layer of the architecture. It has no
// dependencies on infrastructure concerns (HTTP, file system, logging) and
// contains only pure business logic.
//
// # Entities
//
//   - [PackageArtifact]: A locally built package (name, version) with a
//     re-seekable content stream
//   - [Protocol]: The upload wire-protocol variant (V1 or V2)
//   - [PushResult]: The terminal outcome of a single publish attempt
//
// # Design Principles
//
// Domain entities are:
//   - Immutable after construction (where practical)
//   - Free of infrastructure dependencies
//   - Testable without mocks or external systems
package domain
