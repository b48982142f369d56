// Package model defines the domain records produced by the streaming
// registry decoders: devices with their nested sub-node records, and
// appliances with theirs.
//
// The record shapes mirror the cloud device-registry API. Sub-node types
// carry an explicit Kind discriminator because a single callback delivers
// all sub-node kinds for a record.
//
// # Bounded fields
//
// String fields are bounded in length; the bounds live in [Limits] and are
// enforced by the decoder, not by the types themselves. [DefaultLimits]
// matches the upstream API's observed maximums.
package model
