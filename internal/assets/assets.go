package assets

// defaultLoader serves the built-in theme.
var defaultLoader = NewEmbeddedLoader()

// LoadStyle loads a built-in stylesheet by name (without .css).
func LoadStyle(name string) (string, error) {
	return defaultLoader.LoadStyle(name)
}

// LoadTemplateSet loads a built-in template set by name.
func LoadTemplateSet(name string) (*TemplateSet, error) {
	return defaultLoader.LoadTemplateSet(name)
}
