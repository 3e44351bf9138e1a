package resume

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"jobmatch/internal/domain"
	"jobmatch/internal/domain/resume"
	"jobmatch/internal/infrastructure/storage"
	"jobmatch/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultMaxBytes int64 = 5 << 20

var (
	ErrUnsupportedFormat = errors.New("unsupported resume format")
	ErrTooLarge          = errors.New("resume exceeds size limit")
	ErrEmptyDocument     = errors.New("resume is empty")
)

type Extractor interface {
	Extract(ctx context.Context, contentType string, data []byte) (resume.ExtractedProfile, error)
}

// Document is an upload as received from the client.
type Document struct {
	Content     io.Reader
	ContentType string
	FileName    string
	SizeBytes   int64
}

type Ingestor struct {
	resumes   repository.ResumeRepository
	store     storage.Store
	extractor Extractor
	maxBytes  int64
	logger    *zap.Logger
	now       func() time.Time
}

func NewIngestor(
	resumes repository.ResumeRepository,
	store storage.Store,
	extractor Extractor,
	maxBytes int64,
	logger *zap.Logger,
) *Ingestor {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingestor{
		resumes:   resumes,
		store:     store,
		extractor: extractor,
		maxBytes:  maxBytes,
		logger:    logger,
		now:       time.Now,
	}
}

func (i *Ingestor) MaxBytes() int64 { return i.maxBytes }

// Submit validates and stores a document, records it as the candidate's
// active Resume in the uploaded stage and returns it. Validation failures
// leave no trace.
func (i *Ingestor) Submit(ctx context.Context, candidateID uuid.UUID, doc Document) (resume.Resume, error) {
	if doc.SizeBytes > i.maxBytes {
		return resume.Resume{}, ErrTooLarge
	}
	contentType := resume.NormalizeContentType(doc.ContentType, doc.FileName)
	if !resume.SupportedContentType(contentType) {
		return resume.Resume{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, contentType)
	}
	if doc.Content == nil {
		return resume.Resume{}, ErrEmptyDocument
	}

	data, err := io.ReadAll(io.LimitReader(doc.Content, i.maxBytes+1))
	if err != nil {
		return resume.Resume{}, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > i.maxBytes {
		return resume.Resume{}, ErrTooLarge
	}
	if len(data) == 0 {
		return resume.Resume{}, ErrEmptyDocument
	}

	id := uuid.New()
	key := fmt.Sprintf("resumes/%s/%s%s", candidateID, id, resume.Extension(contentType))
	ref, err := i.store.Put(ctx, key, data, contentType)
	if err != nil {
		return resume.Resume{}, fmt.Errorf("store resume: %w", err)
	}

	now := i.now().UTC()
	r := resume.Resume{
		ID:          id,
		CandidateID: candidateID,
		StorageRef:  ref,
		FileName:    cleanFileName(doc.FileName, contentType),
		ContentType: contentType,
		SizeBytes:   int64(len(data)),
		UploadedAt:  now,
		UpdatedAt:   now,
		Status:      resume.StatusUploaded,
		Stage:       domain.StageUploaded,
	}
	if err := i.resumes.Create(ctx, r); err != nil {
		i.logger.Warn("resume row not created, stored object orphaned", zap.String("storage_ref", ref), zap.Error(err))
		return resume.Resume{}, fmt.Errorf("create resume: %w", err)
	}

	i.logger.Info("resume stored",
		zap.String("resume_id", id.String()),
		zap.String("candidate_id", candidateID.String()),
		zap.String("content_type", contentType),
		zap.Int("size_bytes", len(data)),
	)
	return r, nil
}

// Extract loads the stored document and extracts a profile from it. Errors
// are always *resume.ExtractionError.
func (i *Ingestor) Extract(ctx context.Context, r resume.Resume) (resume.ExtractedProfile, error) {
	data, err := i.store.Get(ctx, r.StorageRef)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return resume.ExtractedProfile{}, resume.Permanent(err)
		}
		return resume.ExtractedProfile{}, resume.Transient(err)
	}

	p, err := i.extractor.Extract(ctx, r.ContentType, data)
	if err != nil {
		var ee *resume.ExtractionError
		if errors.As(err, &ee) {
			return resume.ExtractedProfile{}, err
		}
		return resume.ExtractedProfile{}, resume.Transient(err)
	}
	return p, nil
}

func cleanFileName(name, contentType string) string {
	name = strings.TrimSpace(name)
	if j := strings.LastIndexAny(name, `/\`); j >= 0 {
		name = name[j+1:]
	}
	if name == "" {
		return "resume" + resume.Extension(contentType)
	}
	return name
}
