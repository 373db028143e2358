package library

import (
	"context"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/brainlib/internal/logging"
	"github.com/fyrsmithlabs/brainlib/internal/openai"
)

// Provider is the subset of the hosted RAG API the service needs.
// *openai.Client satisfies it.
type Provider interface {
	CreateVectorStore(ctx context.Context, name string) (*openai.VectorStore, error)
	UploadFile(ctx context.Context, filename string, content io.Reader) (*openai.File, error)
	AttachFile(ctx context.Context, storeID, fileID string) (*openai.VectorStoreFile, error)
	ListVectorStoreFiles(ctx context.Context, storeID string) ([]openai.VectorStoreFile, error)
	CreateResponse(ctx context.Context, storeID, question string) (*openai.Response, error)
}

var _ Provider = (*openai.Client)(nil)

const assistantRole = "assistant"

// Config configures a Service.
type Config struct {
	// DefaultStoreName is used when CreateStore receives an empty name.
	DefaultStoreName string
}

// Service implements the knowledge-base operations on top of a Provider.
type Service struct {
	provider         Provider
	logger           *logging.Logger
	defaultStoreName string
}

// NewService creates a Service. A nil logger discards output.
func NewService(provider Provider, logger *logging.Logger, cfg Config) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	name := cfg.DefaultStoreName
	if name == "" {
		name = DefaultStoreName
	}
	return &Service{
		provider:         provider,
		logger:           logger.Named("library"),
		defaultStoreName: name,
	}
}

// CreateStore creates a vector store. An empty name selects the default.
func (s *Service) CreateStore(ctx context.Context, name string) (*StoreResult, error) {
	if name == "" {
		name = s.defaultStoreName
	}

	store, err := s.provider.CreateVectorStore(ctx, name)
	if err != nil {
		s.logger.Warn(ctx, "create vector store failed", zap.String("name", name), zap.Error(err))
		return nil, err
	}

	s.logger.Info(ctx, "vector store created",
		zap.String("vector_store_id", store.ID),
		zap.String("name", name),
	)
	return &StoreResult{VectorStoreID: store.ID, Name: name}, nil
}

// AddDocument uploads a document and attaches it to a store.
//
// Upload and attach are not atomic. When attach fails the uploaded file is
// left orphaned on the provider; this is logged with the file id and the
// attach error is returned.
func (s *Service) AddDocument(ctx context.Context, storeID, filename string, content io.Reader) (*DocumentResult, error) {
	file, err := s.provider.UploadFile(ctx, filename, content)
	if err != nil {
		s.logger.Warn(ctx, "upload failed", zap.String("filename", filename), zap.Error(err))
		return nil, err
	}

	if _, err := s.provider.AttachFile(ctx, storeID, file.ID); err != nil {
		s.logger.Warn(ctx, "file uploaded but not attached; file is orphaned",
			zap.String("file_id", file.ID),
			zap.String("vector_store_id", storeID),
			zap.String("filename", filename),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info(ctx, "document added",
		zap.String("file_id", file.ID),
		zap.String("vector_store_id", storeID),
		zap.String("filename", filename),
	)
	return &DocumentResult{
		FileID:        file.ID,
		Filename:      filename,
		VectorStoreID: storeID,
	}, nil
}

// Ask answers a question from the documents in a store.
func (s *Service) Ask(ctx context.Context, storeID, question string) (*AnswerResult, error) {
	s.logger.Trace(ctx, "question received",
		zap.String("vector_store_id", storeID),
		zap.String("question", question),
	)

	resp, err := s.provider.CreateResponse(ctx, storeID, question)
	if err != nil {
		s.logger.Warn(ctx, "ask failed", zap.String("vector_store_id", storeID), zap.Error(err))
		return nil, err
	}

	answer := ExtractAnswer(resp)
	s.logger.Debug(ctx, "question answered",
		zap.String("vector_store_id", storeID),
		zap.Int("answer_len", len(answer)),
	)
	return &AnswerResult{Answer: answer}, nil
}

// Status lists the files in a store with their ingestion state.
func (s *Service) Status(ctx context.Context, storeID string) (*StatusResult, error) {
	files, err := s.provider.ListVectorStoreFiles(ctx, storeID)
	if err != nil {
		s.logger.Warn(ctx, "status failed", zap.String("vector_store_id", storeID), zap.Error(err))
		return nil, err
	}

	result := &StatusResult{
		Count: len(files),
		Files: make([]FileStatus, 0, len(files)),
	}
	for _, f := range files {
		fs := FileStatus{ID: f.ID, Status: f.Status}
		if f.LastError != nil {
			fs.LastError = &FileError{Code: f.LastError.Code, Message: f.LastError.Message}
		}
		result.Files = append(result.Files, fs)
	}
	return result, nil
}

// ExtractAnswer collects the text of every output_text part of every
// assistant message, in order, joined by newlines and trimmed. Messages with
// no role are treated as assistant output. It returns NoAnswerText when
// nothing remains.
func ExtractAnswer(resp *openai.Response) string {
	if resp == nil {
		return NoAnswerText
	}

	var parts []string
	for _, item := range resp.Output {
		msg, ok := item.(*openai.MessageItem)
		if !ok || msg == nil {
			continue
		}
		if msg.Role != "" && msg.Role != assistantRole {
			continue
		}
		for _, part := range msg.Content {
			if text, ok := part.(*openai.OutputTextPart); ok && text != nil {
				parts = append(parts, text.Text)
			}
		}
	}

	answer := strings.TrimSpace(strings.Join(parts, "\n"))
	if answer == "" {
		return NoAnswerText
	}
	return answer
}
