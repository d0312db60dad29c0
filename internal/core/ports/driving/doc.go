// Package driving defines the driving ports (primary adapters) for
// Quarry. These interfaces are implemented by core services and
// consumed by the MCP server and CLI adapters.
package driving
