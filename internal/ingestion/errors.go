package ingestion

import "fmt"

// UnsupportedFormatError is returned for file types that cannot be read.
type UnsupportedFormatError struct {
	Name      string
	Extension string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file type %q for %s (want .txt, .md, .pdf or .docx)", e.Extension, e.Name)
}

// EmptyDocumentError is returned when a file decodes to no text.
type EmptyDocumentError struct {
	Name string
}

func (e *EmptyDocumentError) Error() string {
	return fmt.Sprintf("no extractable text in %s", e.Name)
}
