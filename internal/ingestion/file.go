package ingestion

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// MaxFileBytes bounds what IngestFromFile will read.
const MaxFileBytes = 20 << 20

// Format identifies how a sample was encoded.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatPDF      Format = "pdf"
	FormatDOCX     Format = "docx"
)

// FormatFor maps a file name to its format by extension.
func FormatFor(name string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".txt", "":
		return FormatText, nil
	case ".md", ".markdown":
		return FormatMarkdown, nil
	case ".pdf":
		return FormatPDF, nil
	case ".docx":
		return FormatDOCX, nil
	default:
		return "", &UnsupportedFormatError{Name: name, Extension: ext}
	}
}

// IngestFromFile reads a writing sample from disk and returns its cleaned text.
func IngestFromFile(path string) (string, *Metadata, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, fmt.Errorf("file not found: %w", err)
		}
		return "", nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.Size() > MaxFileBytes {
		return "", nil, fmt.Errorf("file %s is %d bytes, limit is %d", path, info.Size(), MaxFileBytes)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Ingest(filepath.Base(path), raw)
}

// Ingest decodes raw according to the extension of name and cleans the text.
func Ingest(name string, raw []byte) (string, *Metadata, error) {
	format, err := FormatFor(name)
	if err != nil {
		return "", nil, err
	}

	var text string
	switch format {
	case FormatPDF:
		text, err = readPDF(raw)
	case FormatDOCX:
		text, err = readDOCX(raw)
	case FormatMarkdown:
		text = StripMarkdown(string(raw))
	default:
		text = string(raw)
	}
	if err != nil {
		return "", nil, err
	}

	cleaned := CleanText(text)
	if cleaned == "" {
		return "", nil, &EmptyDocumentError{Name: name}
	}
	return cleaned, NewMetadata(cleaned, name, format), nil
}

func readPDF(raw []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(content)
		b.WriteString("\n\n")
	}
	return b.String(), nil
}

func readDOCX(raw []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("failed to open docx archive: %w", err)
	}

	var body []byte
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("failed to open document.xml: %w", err)
		}
		body, err = io.ReadAll(io.LimitReader(rc, MaxFileBytes))
		_ = rc.Close()
		if err != nil {
			return "", fmt.Errorf("failed to read document.xml: %w", err)
		}
		break
	}
	if body == nil {
		return "", fmt.Errorf("docx has no word/document.xml")
	}

	decoder := xml.NewDecoder(bytes.NewReader(body))
	var b strings.Builder
	inText := false
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to decode document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				b.WriteString(" ")
			case "br":
				b.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				// each Word paragraph becomes its own paragraph
				b.WriteString("\n\n")
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return b.String(), nil
}
