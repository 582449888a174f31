// Package ports defines the driven-side interfaces of the directory:
// session and listing persistence plus distributed locking. Adapters live
// under pkg/adapters; reusable contract test suites for implementations are
// provided here so every adapter is verified against the same semantics.
package ports
