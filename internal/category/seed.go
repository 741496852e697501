package category

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// ParseSeed reads a YAML list of categories:
//
//	- name: food
//	  default: true
//	- name: rent
func ParseSeed(r io.Reader) ([]CreateParams, error) {
	var params []CreateParams

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(&params); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}

		return nil, fmt.Errorf("parsing seed file: %w", err)
	}

	for i, p := range params {
		if p.Name == "" {
			return nil, fmt.Errorf("entry %d: %w", i+1, ErrMissingName)
		}
	}

	return params, nil
}
