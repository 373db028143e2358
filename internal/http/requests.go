package http

// CreateStoreRequest is the form for POST /vector-stores.
type CreateStoreRequest struct {
	Name string `form:"name" json:"name"`
}

// UploadRequest is the form for POST /files. The document itself is the
// multipart file field "f".
type UploadRequest struct {
	VectorStoreID string `form:"vector_store_id" json:"vector_store_id" validate:"required,notblank"`
}

// AskRequest is the form for POST /ask.
type AskRequest struct {
	VectorStoreID string `form:"vector_store_id" json:"vector_store_id" validate:"required,notblank"`
	Question      string `form:"question" json:"question" validate:"required,notblank"`
}

// StatusRequest is the form for POST /status.
type StatusRequest struct {
	VectorStoreID string `form:"vector_store_id" json:"vector_store_id" validate:"required,notblank"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version,omitempty"`
}
