package ports

// CredentialStore maps an endpoint identity to its credential. Lookup is
// case-insensitive with respect to the endpoint identity.
type CredentialStore interface {
	// Read returns the credential stored for the endpoint, or "" with a nil
	// error when none is known. A non-nil error means the store itself could
	// not be read.
	Read(endpoint string) (string, error)

	// Write durably associates the credential with the endpoint, replacing
	// any previous value.
	Write(endpoint, credential string) error
}
