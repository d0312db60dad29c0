// Package services contains the core business logic for Quarry.
// Services implement the driving ports and depend only on domain types
// and driven ports.
package services
