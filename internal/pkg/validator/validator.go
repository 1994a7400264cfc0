package validator

// Validator validates a struct and returns a field-keyed error on failure.
type Validator interface {
	Validate(data any) error
}

// Violation is a single failed rule, reported in struct field order.
type Violation struct {
	Field   string
	Rule    string
	Message string
}

// Checker reports every violated rule in declaration order.
type Checker interface {
	Check(data any) ([]Violation, error)
}

// StructValidator validates whole structs and reports individual violations.
type StructValidator interface {
	Validator
	Checker
}
