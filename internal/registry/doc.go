// Package registry keeps the process-wide set of live coordinators, one per
// configured account.
//
// Coordinators are added by the host after a successful first refresh and removed
// on teardown. Commands that address a list by id, without naming an account,
// are routed with FindByList, which scans the cached data of every coordinator.
//
//	reg := registry.New()
//	id, err := reg.Register(c)
//	...
//	owner, err := reg.FindByList(123)
//	if errors.Is(err, apierrors.ErrNotFound) { ... }
package registry
