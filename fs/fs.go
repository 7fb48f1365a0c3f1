// Package fs stores a knowledge base as plain files in a project directory.
//
// Layout:
//
//	<project>/project.yaml
//	<project>/save.json
//	<project>/index/{topics,keywords,questions}.json
//	<project>/documents/<id>/status.txt
//	<project>/documents/<id>/source.txt
//	<project>/documents/<id>/trimmed.txt
//	<project>/documents/<id>/chunks/{raw,pretty}/{h1,h2,h3}/<i>.txt
//	<project>/documents/<id>/chunks/synthetic/<i>.json
//	<project>/documents/<id>/records.json
package fs

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fwojciec/helpkb"
)

// writeFile writes data to a temporary file next to path and renames it
// into place, so readers never observe a partial write.
func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// readFile reads path, reporting a missing file as ENOTFOUND.
func readFile(path string, what string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, helpkb.Errorf(helpkb.ENOTFOUND, "%s not found", what)
	}
	return data, err
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

func readJSON(path string, what string, v any) error {
	data, err := readFile(path, what)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return helpkb.Errorf(helpkb.EINVALID, "%s is corrupt: %s", what, err)
	}
	return nil
}
