// Package library implements the four knowledge-base operations brainlib
// exposes: creating a store, adding a document, asking a question and
// reporting ingestion status.
//
// Service holds no state of its own. Provider errors are passed back
// unmodified so callers can surface the provider's message verbatim.
package library
