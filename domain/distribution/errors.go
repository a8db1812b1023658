package distribution

import "errors"

// ErrEmptyContent is returned when a file would be saved with no content
var ErrEmptyContent = errors.New("file content is empty")
