package assets

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
)

//go:embed styles/*.css
var styles embed.FS

//go:embed templates
var templates embed.FS

// EmbeddedLoader loads the built-in theme compiled into the binary.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

// LoadStyle loads an embedded stylesheet by name.
func (e *EmbeddedLoader) LoadStyle(name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}

	content, err := styles.ReadFile("styles/" + name + ".css")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrStyleNotFound, name)
	}

	return string(content), nil
}

// LoadTemplateSet loads an embedded template set by name.
func (e *EmbeddedLoader) LoadTemplateSet(name string) (*TemplateSet, error) {
	if err := ValidateAssetName(name); err != nil {
		return nil, err
	}

	dir := path.Join("templates", name)
	post, postErr := fs.ReadFile(templates, path.Join(dir, PostTemplateFile))
	index, indexErr := fs.ReadFile(templates, path.Join(dir, IndexTemplateFile))

	return buildTemplateSet(name, post, postErr, index, indexErr, func(err error) bool {
		return errors.Is(err, fs.ErrNotExist)
	})
}

// buildTemplateSet classifies the two read results the same way for every
// loader: both missing is not found, one missing is incomplete.
func buildTemplateSet(name string, post []byte, postErr error, index []byte, indexErr error, notExist func(error) bool) (*TemplateSet, error) {
	if notExist(postErr) && notExist(indexErr) {
		return nil, fmt.Errorf("%w: %q", ErrTemplateSetNotFound, name)
	}
	if postErr != nil && !notExist(postErr) {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrAssetRead, PostTemplateFile, postErr)
	}
	if indexErr != nil && !notExist(indexErr) {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrAssetRead, IndexTemplateFile, indexErr)
	}
	if notExist(postErr) {
		return nil, fmt.Errorf("%w: %q missing %s", ErrIncompleteTemplateSet, name, PostTemplateFile)
	}
	if notExist(indexErr) {
		return nil, fmt.Errorf("%w: %q missing %s", ErrIncompleteTemplateSet, name, IndexTemplateFile)
	}

	return &TemplateSet{
		Name:  name,
		Post:  string(post),
		Index: string(index),
	}, nil
}

// Compile-time interface check.
var _ AssetLoader = (*EmbeddedLoader)(nil)
