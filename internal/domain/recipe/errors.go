package recipe

import "errors"

// Entity validation errors
var (
	ErrTitleRequired = errors.New("recipe title is required")
	ErrOwnerRequired = errors.New("recipe owner is required")
)
