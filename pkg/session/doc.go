/*
Package session implements session management and persistence orchestration.

It provides high-level abstractions for handling concurrent access to wizard
sessions across multiple replicas, combining per-session in-process mutexes
with optional distributed locking and pluggable storage adapters.
*/
package session
