package network

import (
	"encoding/gob"
	"fmt"
	"os"
)

// SaveParams writes a named parameter collection to path as a gob
// blob. Checkpoints are keyed externally (by epoch index) through the
// path.
func SaveParams(path string, params []Param) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("saveparams: could not create %v: %v", path, err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(params); err != nil {
		return fmt.Errorf("saveparams: could not encode parameters: %v", err)
	}
	return nil
}

// LoadParams reads a parameter collection previously written by
// SaveParams.
func LoadParams(path string) ([]Param, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loadparams: could not open %v: %v", path, err)
	}
	defer f.Close()

	var params []Param
	if err := gob.NewDecoder(f).Decode(&params); err != nil {
		return nil, fmt.Errorf("loadparams: could not decode parameters: %v",
			err)
	}
	return params, nil
}
