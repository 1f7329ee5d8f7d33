// Package resource provides handle tables for adapter and host resources.
//
// Every resource the adapter hands to a guest (header collections, streams,
// outgoing responses) and every object a host exposes (requests, responses,
// bodies) is identified by a small integer handle. Each resource kind gets its
// own Table with its own counter:
//
//	fields := resource.NewTable[[]Entry](resource.KindFields)
//
//	h := fields.Insert(entries) // 1, 2, 3, ...
//	v := fields.Get(h)          // faults if h is not live
//	v, ok := fields.Lookup(h)   // non-faulting variant
//	fields.Remove(h)            // faults if h is not live
//
// # Faults
//
// A missing handle means the caller broke the handle contract. Get, Replace and
// Remove raise an *errors.Error of kind unknown_handle via errors.Raise; the
// invocation boundary recovers it with errors.Catch.
//
// # Handle Numbering
//
// Handle 0 is never allocated. Counters only move forward, so a dropped handle
// stays invalid for the lifetime of the table.
//
// # Observers
//
// Register observers to track resource lifecycle events:
//
//	fields.Subscribe(resource.ObserverFunc(func(e resource.Event) {
//	    log.Printf("%s %d %s", e.Kind, e.Handle, e.Type)
//	}))
//
// Values implementing Dropper are notified when they are removed.
package resource
