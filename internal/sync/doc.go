// Package sync provides the domain logic of a single poll cycle for a Listonic account.
//
// A poll fetches every list visible to the account (own and shared), maps the raw
// payload into the local model and hashes the result, so callers can tell whether
// anything changed since the previous successful cycle.
//
// # Core Interfaces
//
//   - Manager: fetches and maps the whole list graph, or a single list after a mutation
//   - DataChangeDetector: compares the hash of a new graph against the last persisted status
//
// # Coordinator Package
//
// The sync/coordinator subpackage owns scheduling, the local cache, serialization of
// remote round trips, and change listeners. It calls the Manager once per tick and once
// per mutation.
//
// # Errors
//
// Manager methods return the error taxonomy of package apierrors unchanged. A payload
// the mapper cannot parse is reported as a transient failure so that the next tick
// retries it.
package sync
