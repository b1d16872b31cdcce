package tms

// ProviderType identifies a supported test management system.
type ProviderType string

// ProviderTestiny is the only provider implemented today.
const ProviderTestiny ProviderType = "testiny"

func (p ProviderType) IsValid() bool {
	return p == ProviderTestiny
}

// ClientFactory builds a Client for a provider from its credentials.
type ClientFactory interface {
	NewClient(provider ProviderType, credentials map[string]string) (Client, error)
}
