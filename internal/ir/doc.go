// Package ir provides the value model shared by every haze package.
//
// Documents are IRObjects: schemaless maps from field name to IRValue.
// IRValue is sealed to the JSON value shapes (string, number, bool, null,
// array, object); numbers keep an integral/fractional split so counters
// incremented with integers stay integers.
//
// This package imports nothing internal. Key conventions:
//   - "id" and "version" are reserved document fields (FieldID, FieldVersion)
//   - references are plain strings of the form "collection:id"
//   - MarshalCanonical is the single encoder for persisted and printed documents
package ir
