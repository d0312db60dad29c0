// Package driven defines the driven ports (secondary adapters) for
// Quarry. These interfaces are implemented by infrastructure adapters
// (cache storage, the search provider, configuration) and consumed by
// core services.
package driven
