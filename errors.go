package md2site

import "errors"

// Sentinel errors for library operations.
var (
	ErrEmptySource     = errors.New("document source cannot be empty")
	ErrNoMetadata      = errors.New("document has no metadata header")
	ErrUnpublished     = errors.New("document is not published")
	ErrInvalidMetadata = errors.New("invalid metadata header")
	ErrDuplicateSlug   = errors.New("duplicate slug")
	ErrRender          = errors.New("rendering failed")
	ErrTemplate        = errors.New("template execution failed")
	ErrInvalidWorkers  = errors.New("invalid worker count")

	// Asset loading errors.
	ErrStyleNotFound         = errors.New("style not found")
	ErrTemplateSetNotFound   = errors.New("template set not found")
	ErrIncompleteTemplateSet = errors.New("template set missing required template")
	ErrInvalidAssetPath      = errors.New("invalid asset path")
)
