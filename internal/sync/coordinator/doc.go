// Package coordinator keeps the local cache of one Listonic account in step with the
// remote service.
//
// A Coordinator polls on a fixed interval, replaces its list graph wholesale on every
// successful poll, and forwards mutation commands (rename, add, remove, check) to the
// remote API followed by a re-fetch of the affected list. It sits on top of
// sync.Manager and handles:
//
//   - Background poll scheduling using time.Ticker, reprogrammable with SetInterval
//   - The mandatory first refresh during account setup
//   - Serialization of every data-modifying remote round trip
//   - Change listeners, invoked after the operation lock is released
//   - Status persistence and metrics after every cycle
//   - Escalation of rejected credentials to an auth-failure handler
//
// # Lifecycle
//
//	c := coordinator.New("home", client, manager, opts...)
//	if err := c.FirstRefresh(ctx); err != nil {
//	    // ErrAuthFailed or ErrNotReady
//	}
//	c.Start(ctx)
//	defer c.Stop()
//
// # Failure handling
//
// Transient and request failures during a poll leave the cached data untouched and are
// retried on the next tick. An authentication failure stops scheduling, marks the
// coordinator as needing re-authentication and invokes the handler registered with
// WithAuthFailureHandler.
package coordinator
