package extraction

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"testing"

	"jobmatch/internal/domain/resume"
	"jobmatch/internal/domain/skill"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVocabulary struct {
	skills []skill.Skill
	err    error
	calls  int
}

func (f *fakeVocabulary) ListAll(ctx context.Context) ([]skill.Skill, error) {
	f.calls++
	return f.skills, f.err
}

const sampleText = `Jane Doe
Location: Berlin, Germany
jane.doe@example.com | +49 151 2345 6789

Backend engineer with 6+ years of experience building services in Go and PostgreSQL.
Worked 2019 - 2023 on Kubernetes platforms; comfortable with docker and REST APIs.
JavaScript on the side.`

func TestExtract_PlainText(t *testing.T) {
	e := New(nil, nil)

	p, err := e.Extract(context.Background(), resume.ContentTypeText, []byte(sampleText))
	require.NoError(t, err)

	assert.Contains(t, p.RawText, "Backend engineer")
	assert.Equal(t, []string{"Docker", "Go", "JavaScript", "Kubernetes", "PostgreSQL", "REST"}, p.CandidateSkills)
	assert.Equal(t, "6 years", p.ExperienceHint)
	assert.Equal(t, "jane.doe@example.com", p.Contact.Email)
	assert.Equal(t, "+49 151 2345 6789", p.Contact.Phone)
	assert.Equal(t, "Berlin, Germany", p.Contact.Location)
}

func TestExtract_SkillBoundaries(t *testing.T) {
	e := New(nil, nil)

	p, err := e.Extract(context.Background(), resume.ContentTypeText, []byte("Google Analytics, MySQL and the rest of the stack"))
	require.NoError(t, err)

	assert.Equal(t, []string{"MySQL"}, p.CandidateSkills)
}

func TestExtract_HTML(t *testing.T) {
	doc := `<html><head><style>body{}</style><script>var Python = 1;</script></head>
<body><h1>John Smith</h1><ul><li>Python</li><li>Django</li></ul>
<p>Experience: 2 years</p></body></html>`

	p, err := New(nil, nil).Extract(context.Background(), resume.ContentTypeHTML, []byte(doc))
	require.NoError(t, err)

	assert.NotContains(t, p.RawText, "var Python")
	assert.Equal(t, []string{"Django", "Python"}, p.CandidateSkills)
	assert.Equal(t, "2 years", p.ExperienceHint)
}

func TestExtract_DOCX(t *testing.T) {
	data := buildDocx(t, `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>
<w:p><w:r><w:t>Skills: Rust &amp; Terraform</w:t></w:r></w:p>
<w:p><w:r><w:t>10 years experience</w:t></w:r></w:p>
</w:body></w:document>`)

	p, err := New(nil, nil).Extract(context.Background(), resume.ContentTypeDOCX, data)
	require.NoError(t, err)

	assert.Contains(t, p.RawText, "Skills: Rust & Terraform")
	assert.Equal(t, []string{"Rust", "Terraform"}, p.CandidateSkills)
	assert.Equal(t, "10 years", p.ExperienceHint)
}

func TestExtract_PermanentFailures(t *testing.T) {
	e := New(nil, nil)
	ctx := context.Background()

	cases := map[string]struct {
		contentType string
		data        []byte
	}{
		"corrupt pdf":  {resume.ContentTypePDF, []byte("not a pdf")},
		"corrupt docx": {resume.ContentTypeDOCX, []byte("not a zip")},
		"empty text":   {resume.ContentTypeText, []byte("   \n\t ")},
		"invalid utf8": {resume.ContentTypeText, []byte{0xff, 0xfe, 0xfd}},
		"unsupported":  {"image/png", []byte{0x89, 0x50}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := e.Extract(ctx, tc.contentType, tc.data)
			require.Error(t, err)
			assert.ErrorIs(t, err, resume.ErrExtractionFailed)
			assert.True(t, resume.IsPermanent(err))
		})
	}
}

func TestExtract_CancelledContextIsTransient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(nil, nil).Extract(ctx, resume.ContentTypeText, []byte("Go"))
	require.Error(t, err)
	assert.ErrorIs(t, err, resume.ErrExtractionFailed)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, resume.IsPermanent(err))
}

func TestExtract_VocabularySource(t *testing.T) {
	src := &fakeVocabulary{skills: []skill.Skill{{Name: "Elixir"}}}
	e := New(src, nil)

	p, err := e.Extract(context.Background(), resume.ContentTypeText, []byte("Elixir and Go"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Elixir"}, p.CandidateSkills)

	_, err = e.Extract(context.Background(), resume.ContentTypeText, []byte("Elixir"))
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls, "vocabulary is cached")
}

func TestExtract_VocabularyFallback(t *testing.T) {
	src := &fakeVocabulary{err: errors.New("db down")}

	p, err := New(src, nil).Extract(context.Background(), resume.ContentTypeText, []byte("Python developer"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Python"}, p.CandidateSkills)
}

func buildDocx(t *testing.T, document string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := map[string]string{
		"[Content_Types].xml":          `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"></Types>`,
		"word/document.xml":            document,
		"word/_rels/document.xml.rels": `<?xml version="1.0" encoding="UTF-8"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`,
	}
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}
