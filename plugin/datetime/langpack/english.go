package langpack

import (
	"bytes"
	_ "embed"

	"github.com/pkg/errors"
)

//go:embed english.yaml
var englishYAML []byte

// EnglishDefinition decodes the embedded English pack definition.
func EnglishDefinition() (*Definition, error) {
	def, err := LoadDefinition(bytes.NewReader(englishYAML))
	if err != nil {
		return nil, errors.Wrap(err, "embedded english pack")
	}
	return def, nil
}

// NewEnglish builds the embedded English pack.
func NewEnglish(opts ...Option) (*Pack, error) {
	def, err := EnglishDefinition()
	if err != nil {
		return nil, err
	}
	return Build(def, opts...)
}
