package log

import "time"

// Event represents one decode telemetry event.
type Event struct {
	// Timestamp when the event occurred.
	Timestamp time.Time

	// Category classifies the event.
	Category Category

	// Endpoint names the document kind being decoded ("devices" or
	// "appliances").
	Endpoint string

	// Path is the document path at which the event occurred.
	Path string

	// Offset is the input byte offset at which the event occurred.
	Offset int64

	// Detail carries category-specific text: the record identity for
	// CategoryRecord/CategorySubNode, the error text for CategoryError.
	Detail string
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryRecord indicates a completed top-level record emission.
	CategoryRecord Category = iota
	// CategorySubNode indicates a completed sub-node emission.
	CategorySubNode
	// CategoryError indicates a fatal decode error.
	CategoryError
	// CategoryDone indicates successful completion of a document.
	CategoryDone
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryRecord:
		return "RECORD"
	case CategorySubNode:
		return "SUBNODE"
	case CategoryError:
		return "ERROR"
	case CategoryDone:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}
