// Package decode assembles JSON structural events into device-registry
// records and emits each record the moment it is complete.
//
// The decoders consume the event stream produced by [jsonseq] and never
// build a document tree: working memory is bounded by the schema depth and
// the configured field-length limits, independent of input size or
// device-list length.
//
// # Entry points
//
//	err := decode.ReadDevices(r, totalLength, nil,
//	    func(dev *model.Device, sub *model.DeviceSubNode) {
//	        // sub == nil: dev is a completed device.
//	        // sub != nil: one of dev's sub-nodes completed; dev holds
//	        // the fields decoded so far.
//	    })
//
// [ReadAppliances] is the equivalent for the appliances endpoint.
//
// Records are passed by pointer and are only valid for the duration of the
// callback; the decoder reuses the backing storage afterwards. Callbacks
// run synchronously, in document order, exactly once per completed record.
//
// # Errors
//
// All errors are fatal to the decode call; there is no skip-and-continue.
// Failures are reported as a [*Error] carrying one of the Err... sentinels
// (matchable with errors.Is), the document path, and the byte offset.
// Records already emitted before the failure remain valid. Unknown object
// keys, by contrast, are never an error: they and their whole subtrees are
// skipped, subject only to the depth bound.
package decode
