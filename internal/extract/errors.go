package extract

import "fmt"

// ExtractionError reports that no usable text could be read from a PDF
// reference: the fetch failed or timed out, the document is unreadable, or
// it holds too little text.
type ExtractionError struct {
	Ref string
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract text from %s: %v", e.Ref, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }
