package resume

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeContentType(t *testing.T) {
	assert.Equal(t, ContentTypeText, NormalizeContentType("text/plain; charset=utf-8", "cv.txt"))
	assert.Equal(t, ContentTypePDF, NormalizeContentType("application/octet-stream", "CV.PDF"))
	assert.Equal(t, ContentTypeDOCX, NormalizeContentType("", "cv.docx"))
	assert.Equal(t, "image/png", NormalizeContentType("image/png", "cv.pdf"))
}

func TestSupportedContentType(t *testing.T) {
	assert.True(t, SupportedContentType(ContentTypeHTML))
	assert.False(t, SupportedContentType("image/png"))
}

func TestExtractionError(t *testing.T) {
	cause := errors.New("corrupt")
	perm := Permanent(cause)
	trans := fmt.Errorf("wrapped: %w", Transient(cause))

	assert.ErrorIs(t, perm, ErrExtractionFailed)
	assert.ErrorIs(t, trans, ErrExtractionFailed)
	assert.ErrorIs(t, perm, cause)
	assert.True(t, IsPermanent(perm))
	assert.False(t, IsPermanent(trans))
	assert.False(t, IsPermanent(cause))
	assert.Contains(t, perm.Error(), "permanent")
}
