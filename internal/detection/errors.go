package detection

import "fmt"

// SchemaError reports a raw box that cannot become a valid Record. It means
// the detector and its label table disagree and is not recoverable per request.
type SchemaError struct {
	Index  int
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("malformed detection at index %d: %s", e.Index, e.Reason)
}

// NotFoundError reports that no record carries the requested class name.
type NotFoundError struct {
	ClassName string
}

func (e *NotFoundError) Error() string {
	return e.ClassName + " not found in photo"
}
