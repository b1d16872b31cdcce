package main

import (
	"fmt"
	"strconv"

	"casectl/logger"
	"casectl/tms"
	"casectl/tms/testiny"
)

func getLogger() logger.Logger {
	level := "warn"
	if flagDebug {
		level = "debug"
	}
	return logger.NewLogrusLogger(level, logger.FormatText)
}

// getClient builds the remote client from the resolved configuration.
func getClient() (tms.Client, error) {
	provider := tms.ProviderType(getConfigProvider())
	if !provider.IsValid() {
		return nil, fmt.Errorf("%w: %q", tms.ErrInvalidProvider, provider)
	}

	apiKey := getConfigAPIKey()
	if apiKey == "" {
		return nil, fmt.Errorf("an API key is required, set it via --api-key, CASECTL_API_KEY, or ~/.casectl.yaml")
	}

	credentials := map[string]string{
		"api_key": apiKey,
	}
	if url := getConfigURL(); url != "" {
		credentials["url"] = url
	}
	if owner := getConfigOwnerUserID(); owner != 0 {
		credentials["owner_user_id"] = strconv.Itoa(owner)
	}

	client, err := (testiny.Factory{}).NewClient(provider, credentials)
	if err != nil {
		return nil, err
	}

	if c, ok := client.(*testiny.Client); ok {
		return c.WithLogger(getLogger()), nil
	}
	return client, nil
}
