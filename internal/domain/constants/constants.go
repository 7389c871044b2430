// Package constants defines shared domain-level constants.
package constants

// Deployment environments.
const (
	EnvDevelop    = "develop"
	EnvProduction = "production"
)

// Pub/Sub provider selectors.
const (
	PubSubProviderLocal  = "local"
	PubSubProviderGoogle = "google"
)
