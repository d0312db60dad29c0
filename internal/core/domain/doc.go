// Package domain contains the core business entities for Quarry.
// It has no dependencies on adapters or external services.
package domain
