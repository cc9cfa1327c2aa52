package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadYAMLFile decodes a YAML file into the provided value.
// Unlike Load, the result is not cached: file-based configuration is used for
// data that does not fit environment variables, such as the host to tenant
// mapping table, and is read once at startup by the caller.
func LoadYAMLFile[T any](path string, v *T) error {
	if v == nil {
		return ErrNilPointer
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Join(ErrReadingFile, err)
	}

	if err := yaml.Unmarshal(data, v); err != nil {
		return errors.Join(ErrParsingFile, err)
	}

	return nil
}
