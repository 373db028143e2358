package library

// NoAnswerText is returned as the answer when the provider reply contains no
// output text.
const NoAnswerText = "(No answer text returned.)"

// DefaultStoreName is used when CreateStore is called without a name and the
// service was not configured with another default.
const DefaultStoreName = "my_knowledge_base"

// StoreResult is the outcome of CreateStore.
type StoreResult struct {
	VectorStoreID string `json:"vector_store_id"`
	Name          string `json:"name"`
}

// DocumentResult is the outcome of AddDocument.
type DocumentResult struct {
	FileID        string `json:"file_id"`
	Filename      string `json:"filename"`
	VectorStoreID string `json:"vector_store_id"`
}

// AnswerResult is the outcome of Ask.
type AnswerResult struct {
	Answer string `json:"answer"`
}

// StatusResult is the outcome of Status.
type StatusResult struct {
	Count int          `json:"count"`
	Files []FileStatus `json:"files"`
}

// FileStatus is the ingestion state of one file in a store.
type FileStatus struct {
	ID        string     `json:"id"`
	Status    string     `json:"status"`
	LastError *FileError `json:"last_error,omitempty"`
}

// FileError describes a failed ingestion.
type FileError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
