package submission

import "fmt"

// SchemaError is returned when a required column is absent from the header row
type SchemaError struct {
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("required column %q not found", e.Column)
}
