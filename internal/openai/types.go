package openai

import (
	"encoding/json"
)

// VectorStore is a provider-side collection of indexed documents.
type VectorStore struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"created_at"`
}

// File is an uploaded document.
type File struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Bytes    int64  `json:"bytes"`
	Purpose  string `json:"purpose"`
}

// VectorStoreFile is a file's membership in a vector store along with its
// ingestion state.
type VectorStoreFile struct {
	ID            string     `json:"id"`
	VectorStoreID string     `json:"vector_store_id"`
	Status        string     `json:"status"`
	LastError     *FileError `json:"last_error"`
}

// FileError describes why ingestion of a file failed.
type FileError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Response is the result of a responses API call.
type Response struct {
	ID     string       `json:"id"`
	Status string       `json:"status"`
	Output []OutputItem `json:"-"`
}

// OutputItem is one element of a response's output list. The concrete type
// is one of *MessageItem, *FileSearchCallItem or *UnknownItem.
type OutputItem interface {
	ItemType() string
}

// MessageItem is a message produced by the model.
type MessageItem struct {
	Role    string
	Content []ContentPart
}

// FileSearchCallItem records a file_search tool invocation.
type FileSearchCallItem struct {
	Queries []string
	Status  string
}

// UnknownItem is any output item this client does not interpret.
type UnknownItem struct {
	Type string
}

func (*MessageItem) ItemType() string        { return "message" }
func (*FileSearchCallItem) ItemType() string { return "file_search_call" }
func (u *UnknownItem) ItemType() string      { return u.Type }

// ContentPart is one element of a message's content. The concrete type is
// one of *OutputTextPart, *RefusalPart or *UnknownPart.
type ContentPart interface {
	PartType() string
}

// OutputTextPart carries generated answer text.
type OutputTextPart struct {
	Text string
}

// RefusalPart carries a refusal explanation.
type RefusalPart struct {
	Refusal string
}

// UnknownPart is any content part this client does not interpret.
type UnknownPart struct {
	Type string
}

func (*OutputTextPart) PartType() string { return "output_text" }
func (*RefusalPart) PartType() string    { return "refusal" }
func (u *UnknownPart) PartType() string  { return u.Type }

// UnmarshalJSON decodes the output list by its type discriminator.
// Fields are decoded independently: a field of the wrong shape is left at
// its zero value, an output that is not a list decodes as empty, and items
// that are malformed or of an unrecognized type decode as *UnknownItem.
// Only syntactically invalid JSON is an error.
func (r *Response) UnmarshalJSON(data []byte) error {
	r.ID, r.Status = "", ""
	r.Output = []OutputItem{}

	fields, err := rawFields(data)
	if err != nil {
		return err
	}
	decodeField(fields, "id", &r.ID)
	decodeField(fields, "status", &r.Status)

	var output []json.RawMessage
	decodeField(fields, "output", &output)
	for _, item := range output {
		r.Output = append(r.Output, decodeOutputItem(item))
	}
	return nil
}

// rawFields splits a JSON object into its members. Valid JSON that is not an
// object yields no members.
func rawFields(data []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		if !json.Valid(data) {
			return nil, err
		}
		return nil, nil
	}
	return fields, nil
}

// decodeField unmarshals fields[key] into dst, leaving dst untouched when the
// member is absent or of another shape.
func decodeField(fields map[string]json.RawMessage, key string, dst interface{}) {
	raw, ok := fields[key]
	if !ok {
		return
	}
	_ = json.Unmarshal(raw, dst)
}

func decodeOutputItem(data json.RawMessage) OutputItem {
	fields, err := rawFields(data)
	if err != nil || fields == nil {
		return &UnknownItem{}
	}
	var itemType string
	decodeField(fields, "type", &itemType)

	switch itemType {
	case "message":
		item := &MessageItem{Content: []ContentPart{}}
		decodeField(fields, "role", &item.Role)
		var content []json.RawMessage
		decodeField(fields, "content", &content)
		for _, part := range content {
			item.Content = append(item.Content, decodeContentPart(part))
		}
		return item
	case "file_search_call":
		call := &FileSearchCallItem{}
		decodeField(fields, "queries", &call.Queries)
		decodeField(fields, "status", &call.Status)
		return call
	default:
		return &UnknownItem{Type: itemType}
	}
}

func decodeContentPart(data json.RawMessage) ContentPart {
	fields, err := rawFields(data)
	if err != nil || fields == nil {
		return &UnknownPart{}
	}
	var partType string
	decodeField(fields, "type", &partType)

	switch partType {
	case "output_text":
		text := &OutputTextPart{}
		decodeField(fields, "text", &text.Text)
		return text
	case "refusal":
		refusal := &RefusalPart{}
		decodeField(fields, "refusal", &refusal.Refusal)
		return refusal
	default:
		return &UnknownPart{Type: partType}
	}
}

type createVectorStoreRequest struct {
	Name string `json:"name"`
}

type attachFileRequest struct {
	FileID string `json:"file_id"`
}

type listVectorStoreFilesResponse struct {
	Data    []VectorStoreFile `json:"data"`
	HasMore bool              `json:"has_more"`
	LastID  string            `json:"last_id"`
}

type createResponseRequest struct {
	Model string           `json:"model"`
	Input string           `json:"input"`
	Tools []fileSearchTool `json:"tools"`
}

type fileSearchTool struct {
	Type           string   `json:"type"`
	VectorStoreIDs []string `json:"vector_store_ids"`
}
