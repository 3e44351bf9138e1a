package extraction

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"jobmatch/internal/domain/resume"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

var (
	errUnsupported = errors.New("unsupported content type")
	errNoText      = errors.New("document has no extractable text")

	xmlParagraphEnd = regexp.MustCompile(`</w:p>`)
	xmlTag          = regexp.MustCompile(`<[^>]+>`)
	blankLines      = regexp.MustCompile(`\n{3,}`)
)

// plainText converts a stored document into text. Malformed documents yield
// permanent extraction errors.
func plainText(contentType string, data []byte) (string, error) {
	var (
		text string
		err  error
	)
	switch contentType {
	case resume.ContentTypeText:
		if !utf8.Valid(data) {
			return "", resume.Permanent(errors.New("text document is not valid utf-8"))
		}
		text = string(data)
	case resume.ContentTypePDF:
		text, err = pdfText(data)
	case resume.ContentTypeDOCX:
		text, err = docxText(data)
	case resume.ContentTypeHTML:
		text, err = htmlText(data)
	default:
		return "", resume.Permanent(fmt.Errorf("%w: %s", errUnsupported, contentType))
	}
	if err != nil {
		return "", resume.Permanent(err)
	}

	text = tidy(text)
	if text == "" {
		return "", resume.Permanent(errNoText)
	}
	return text, nil
}

func pdfText(data []byte) (text string, err error) {
	// the pdf reader panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		t, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(t)
		b.WriteString("\n")
	}
	return b.String(), nil
}

func docxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read docx: %w", err)
	}
	defer doc.Close()

	content := doc.Editable().GetContent()
	content = xmlParagraphEnd.ReplaceAllString(content, "\n")
	content = xmlTag.ReplaceAllString(content, "")
	return html.UnescapeString(content), nil
}

func htmlText(data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("read html: %w", err)
	}
	doc.Find("script, style, noscript").Remove()

	var lines []string
	doc.Find("h1, h2, h3, h4, h5, h6, p, li, td, span, div").Each(func(_ int, s *goquery.Selection) {
		if s.Children().Length() > 0 && goquery.NodeName(s) == "div" {
			return
		}
		if t := strings.TrimSpace(s.Text()); t != "" {
			lines = append(lines, t)
		}
	})
	if len(lines) == 0 {
		return doc.Text(), nil
	}
	return strings.Join(lines, "\n"), nil
}

func tidy(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.Join(strings.Fields(l), " ")
	}
	s = strings.Join(lines, "\n")
	s = blankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
