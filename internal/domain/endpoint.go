package domain

import "strings"

// Protocol is the upload wire-protocol variant spoken by a gallery endpoint.
// The zero value is ProtocolUnset, which is only valid transiently at session
// construction; it resolves to a persisted default before use.
type Protocol int

const (
	ProtocolUnset Protocol = iota
	ProtocolV1
	ProtocolV2
)

// String returns a human-readable representation of the protocol variant.
func (p Protocol) String() string {
	switch p {
	case ProtocolV1:
		return "v1"
	case ProtocolV2:
		return "v2"
	default:
		return "unset"
	}
}

// IsV1 reports whether p is the V1 variant.
func (p Protocol) IsV1() bool { return p == ProtocolV1 }

// OrDefault resolves ProtocolUnset to def and returns p unchanged otherwise.
func (p Protocol) OrDefault(def Protocol) Protocol {
	if p == ProtocolUnset {
		return def
	}
	return p
}

// ProtocolFromV1 maps the persisted "use v1" boolean onto a Protocol.
func ProtocolFromV1(useV1 bool) Protocol {
	if useV1 {
		return ProtocolV1
	}
	return ProtocolV2
}

// EqualEndpoint reports whether two endpoint identities refer to the same
// gallery. Endpoint comparison is case-insensitive.
func EqualEndpoint(a, b string) bool {
	return strings.EqualFold(a, b)
}

// NormalizeEndpoint returns the canonical form of an endpoint identity used
// as a lookup key in stores. Display casing is preserved elsewhere.
func NormalizeEndpoint(id string) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(id), "/"))
}
