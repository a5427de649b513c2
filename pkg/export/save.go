package export

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chazu/cutout/pkg/kernel"
)

// Format is an output file format.
type Format string

const (
	FormatOBJ  Format = "obj"
	FormatSTL  Format = "stl"
	FormatJSON Format = "json"
)

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))); f {
	case FormatOBJ, FormatSTL, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("export: unsupported output extension %q (want .obj, .stl or .json)", filepath.Ext(path))
}

// IsBinary reports whether f cannot be streamed as text.
func (f Format) IsBinary() bool {
	return f == FormatSTL
}

// Save writes meshes to path in the format named by its extension.
func Save(path string, meshes []*kernel.Mesh) error {
	f, err := FormatFor(path)
	if err != nil {
		return err
	}
	switch f {
	case FormatOBJ:
		return SaveOBJ(path, meshes)
	case FormatSTL:
		return SaveSTL(path, meshes)
	default:
		return writeFile(path, func(w io.Writer) error {
			return WriteJSON(w, meshes)
		})
	}
}

// Write streams meshes in a text format. Materials are not referenced
// from streamed OBJ output.
func Write(w io.Writer, f Format, meshes []*kernel.Mesh) error {
	switch f {
	case FormatOBJ:
		return WriteOBJ(w, meshes, "")
	case FormatJSON:
		return WriteJSON(w, meshes)
	}
	return fmt.Errorf("export: format %s cannot be streamed", f)
}
