package testiny

import "casectl/tms"

// Factory builds Testiny clients. It is the only concrete tms.ClientFactory.
type Factory struct{}

func (Factory) NewClient(provider tms.ProviderType, credentials map[string]string) (tms.Client, error) {
	if provider != tms.ProviderTestiny {
		return nil, tms.ErrInvalidProvider
	}
	return NewClient(credentials)
}
