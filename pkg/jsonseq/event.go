package jsonseq

// Kind identifies the structural meaning of an event.
type Kind uint8

const (
	// KindNone is the zero value; no valid event carries it.
	KindNone Kind = iota
	// KindObjectStart marks a '{'.
	KindObjectStart
	// KindObjectEnd marks a '}'.
	KindObjectEnd
	// KindArrayStart marks a '['.
	KindArrayStart
	// KindArrayEnd marks a ']'.
	KindArrayEnd
	// KindKey is an object member name.
	KindKey
	// KindValue is a scalar value (string, number, boolean or null).
	KindValue
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindObjectStart:
		return "ObjectStart"
	case KindObjectEnd:
		return "ObjectEnd"
	case KindArrayStart:
		return "ArrayStart"
	case KindArrayEnd:
		return "ArrayEnd"
	case KindKey:
		return "Key"
	case KindValue:
		return "Value"
	default:
		return "None"
	}
}

// ScalarKind identifies the payload type of a Key or Value event.
type ScalarKind uint8

const (
	// ScalarNone means the event carries no scalar payload.
	ScalarNone ScalarKind = iota
	// ScalarString is a JSON string; the text is in Event.Bytes.
	ScalarString
	// ScalarInt is a JSON number without fraction or exponent.
	ScalarInt
	// ScalarFloat is any other JSON number.
	ScalarFloat
	// ScalarBool is true or false.
	ScalarBool
	// ScalarNull is null.
	ScalarNull
)

// String returns the scalar kind name.
func (k ScalarKind) String() string {
	switch k {
	case ScalarString:
		return "String"
	case ScalarInt:
		return "Int"
	case ScalarFloat:
		return "Float"
	case ScalarBool:
		return "Bool"
	case ScalarNull:
		return "Null"
	default:
		return "None"
	}
}

// Event is one structural event from the JSON stream.
//
// Bytes aliases the sequencer's scratch buffer and is only valid until the
// next call to [Sequencer.Next]; callers that need the text longer must
// copy it.
type Event struct {
	Kind   Kind
	Scalar ScalarKind

	// Bytes holds string text for ScalarString events.
	Bytes []byte
	// Int holds the value for ScalarInt events.
	Int int64
	// Float holds the value for ScalarFloat events.
	Float float64
	// Bool holds the value for ScalarBool events.
	Bool bool

	// Partial is set when Bytes is a fragment of a string that continues
	// in the next event.
	Partial bool
}
