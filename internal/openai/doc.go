// Package openai is a minimal client for the hosted retrieval endpoints that
// brainlib fronts: vector stores, file uploads, vector store file listings and
// the responses API with the file_search tool.
//
// A single Client is built at startup and shared by all request handlers. It
// holds no per-request state; concurrent use is safe.
//
// Every call waits on a token-bucket rate limiter, runs inside an
// OpenTelemetry span and is counted in Prometheus by operation and result.
// Calls are never retried. A non-2xx reply is returned as *APIError whose
// Error method yields the provider's message text unchanged.
package openai
