package cases

import "errors"

var (
	ErrCaseNotFound   = errors.New("case_not_found")
	ErrEmptyCase      = errors.New("empty_case")
	ErrInvalidCatalog = errors.New("invalid_catalog")
	ErrPlayerNotFound = errors.New("player_not_found")
)
