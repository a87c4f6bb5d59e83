// Package codec converts settings data to and from its two string forms.
//
// # Wire form
//
// A Database (slot table plus global settings) marshals to deterministic
// JSON. This is what the replication transport carries and what the
// capacity tracker measures.
//
// # Export form
//
// Exports are meant to be copied by hand through a plain text field:
//
//	OFS1:<base64url(zstd(json))>;   one slot
//	OFD1:<base64url(zstd(json))>;   whole database
//
// All whitespace is removed before parsing, so wrapped or indented copies
// still import. The trailing ";" catches truncation and the zstd frame
// checksum catches corrupted characters.
//
// # Validation
//
// Decoding validates the JSON against embedded JSON Schemas and then checks
// names and uniqueness. Any failure wraps ErrMalformed and returns nothing
// partial, so callers can commit a decoded value atomically.
package codec
