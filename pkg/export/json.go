// Package export writes kernel meshes to files: Wavefront OBJ with a
// companion MTL and texture PNGs, binary STL, and a JSON document in the
// layout served to viewers.
package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/chazu/cutout/pkg/kernel"
)

// colorPalette assigns distinct display colors to pieces.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// PaletteColor returns the display color for the i-th piece.
func PaletteColor(i int) string {
	return colorPalette[i%len(colorPalette)]
}

// GroupData is a JSON index-buffer range.
type GroupData struct {
	Start         int `json:"start"`
	Count         int `json:"count"`
	MaterialIndex int `json:"materialIndex"`
}

// MaterialData is the JSON form of a kernel material.
type MaterialData struct {
	Name      string  `json:"name"`
	Metalness float64 `json:"metalness"`
	Roughness float64 `json:"roughness"`
	Color     string  `json:"color"`
	Map       string  `json:"map,omitempty"` // texture file name, when written alongside
}

// MeshData is the JSON-serializable mesh format.
type MeshData struct {
	Vertices  []float32      `json:"vertices"`
	Normals   []float32      `json:"normals"`
	UVs       []float32      `json:"uvs"`
	Indices   []uint32       `json:"indices"`
	Groups    []GroupData    `json:"groups"`
	Materials []MaterialData `json:"materials"`
	PartName  string         `json:"partName"`
	Color     string         `json:"color"`
}

// HexColor formats a 0xRRGGBB value as "#rrggbb".
func HexColor(c uint32) string {
	return fmt.Sprintf("#%06x", c&0xffffff)
}

// ToMeshData converts a kernel mesh for JSON output.
func ToMeshData(m *kernel.Mesh, color string) MeshData {
	md := MeshData{
		Vertices:  m.Vertices,
		Normals:   m.Normals,
		UVs:       m.UVs,
		Indices:   m.Indices,
		Groups:    make([]GroupData, len(m.Groups)),
		Materials: make([]MaterialData, len(m.Materials)),
		PartName:  m.PartName,
		Color:     color,
	}
	for i, g := range m.Groups {
		md.Groups[i] = GroupData{Start: g.Start, Count: g.Count, MaterialIndex: g.MaterialIndex}
	}
	for i, mat := range m.Materials {
		md.Materials[i] = MaterialData{
			Name:      mat.Name,
			Metalness: mat.Metalness,
			Roughness: mat.Roughness,
			Color:     HexColor(mat.Color),
		}
	}
	return md
}

// WriteJSON encodes meshes as an indented JSON array.
func WriteJSON(w io.Writer, meshes []*kernel.Mesh) error {
	data := make([]MeshData, len(meshes))
	for i, m := range meshes {
		data[i] = ToMeshData(m, PaletteColor(i))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("export: encode json: %w", err)
	}
	return nil
}
