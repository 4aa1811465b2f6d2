package assets

// AssetLoader defines the contract for loading stylesheets and template sets.
type AssetLoader interface {
	// LoadStyle loads a stylesheet by name (without .css extension).
	// Returns ErrStyleNotFound if the style doesn't exist.
	LoadStyle(name string) (string, error)

	// LoadTemplateSet loads the post and index templates stored under name.
	// Returns ErrTemplateSetNotFound if neither template exists and
	// ErrIncompleteTemplateSet if only one does.
	LoadTemplateSet(name string) (*TemplateSet, error)
}
