// Package snapshot persists decoded registry state to disk as CBOR.
//
// A Collector accumulates the records streamed out of the decode package
// into a Registry, and a Store writes that registry to a file and reads it
// back. The on-disk format uses integer-keyed CBOR maps, so snapshots stay
// compact and unknown fields from newer writers are ignored on load.
//
// # Basic Usage
//
//	col := snapshot.NewCollector()
//	err := decode.ReadDevices(r, n, opts, col.Device)
//	...
//	store := snapshot.NewStore("remo-state.cbor")
//	err = store.Save(col.Registry())
package snapshot
