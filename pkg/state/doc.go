// Package state persists component state across mounts.
//
// A Store loads and saves one state snapshot per Ref. Persist returns a mixin
// that restores the saved snapshot while the component mounts and writes the
// current state back after each update:
//
//	store := state.NewMemoryStore[composite.State]()
//	Panel := composite.MustCreateClass(&composite.Spec{
//		DisplayName: "Panel",
//		Mixins:      []any{state.Persist(store)},
//		Render:      renderPanel,
//	})
//
// Instances are keyed by component display name plus element key; elements
// without a key are not persisted unless WithKey says otherwise.
//
// Mutate applies an optimistic read-modify-write against any Store, checking
// Meta.ETag when the caller supplies one.
package state
