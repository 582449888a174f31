// Package domain holds the core types of the directory: the onboarding
// wizard session, the listing record and its moderation lifecycle, sentinel
// errors, and the telemetry hook contracts. It has no dependencies on
// adapters or frameworks.
package domain
