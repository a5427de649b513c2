package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/cutout/pkg/kernel"
	"github.com/disintegration/imaging"
)

// MaterialName returns the OBJ/MTL name of material mi of m.
func MaterialName(m *kernel.Mesh, mi int) string {
	part := sanitize(m.PartName)
	if part == "" {
		part = "piece"
	}
	mat := "material"
	if mi >= 0 && mi < len(m.Materials) && m.Materials[mi].Name != "" {
		mat = sanitize(m.Materials[mi].Name)
	}
	return part + "_" + mat
}

// sanitize replaces characters OBJ tools treat as separators.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', '#', '/', '\\':
			return '_'
		}
		return r
	}, s)
}

// WriteOBJ writes meshes as one OBJ document, one object per mesh and
// one usemtl block per group. Indices are rebased so the meshes share
// the global 1-based vertex numbering. mtllib is omitted when empty.
func WriteOBJ(w io.Writer, meshes []*kernel.Mesh, mtllib string) error {
	bw := bufio.NewWriter(w)
	if mtllib != "" {
		fmt.Fprintf(bw, "mtllib %s\n", mtllib)
	}

	base := 1
	for _, m := range meshes {
		fmt.Fprintf(bw, "o %s\n", sanitize(m.PartName))
		n := m.VertexCount()
		for i := 0; i < n; i++ {
			fmt.Fprintf(bw, "v %g %g %g\n", m.Vertices[i*3], m.Vertices[i*3+1], m.Vertices[i*3+2])
		}
		hasUV := len(m.UVs) == n*2
		if hasUV {
			for i := 0; i < n; i++ {
				fmt.Fprintf(bw, "vt %g %g\n", m.UVs[i*2], m.UVs[i*2+1])
			}
		}
		hasNormals := len(m.Normals) == n*3
		if hasNormals {
			for i := 0; i < n; i++ {
				fmt.Fprintf(bw, "vn %g %g %g\n", m.Normals[i*3], m.Normals[i*3+1], m.Normals[i*3+2])
			}
		}

		groups := m.Groups
		if len(groups) == 0 {
			groups = []kernel.Group{{Start: 0, Count: len(m.Indices)}}
		}
		for _, g := range groups {
			if mtllib != "" {
				fmt.Fprintf(bw, "usemtl %s\n", MaterialName(m, g.MaterialIndex))
			}
			for t := g.Start; t+2 < g.Start+g.Count; t += 3 {
				bw.WriteString("f")
				for k := 0; k < 3; k++ {
					writeFaceVertex(bw, int(m.Indices[t+k])+base, hasUV, hasNormals)
				}
				bw.WriteString("\n")
			}
		}
		base += n
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("export: write obj: %w", err)
	}
	return nil
}

func writeFaceVertex(w *bufio.Writer, idx int, uv, normal bool) {
	switch {
	case uv && normal:
		fmt.Fprintf(w, " %d/%d/%d", idx, idx, idx)
	case uv:
		fmt.Fprintf(w, " %d/%d", idx, idx)
	case normal:
		fmt.Fprintf(w, " %d//%d", idx, idx)
	default:
		fmt.Fprintf(w, " %d", idx)
	}
}

// WriteMTL writes one material block per mesh material. textures maps a
// material name to the texture file referenced by map_Kd.
func WriteMTL(w io.Writer, meshes []*kernel.Mesh, textures map[string]string) error {
	bw := bufio.NewWriter(w)
	for _, m := range meshes {
		for mi, mat := range m.Materials {
			name := MaterialName(m, mi)
			r, g, b := rgb(mat.Color)
			fmt.Fprintf(bw, "newmtl %s\n", name)
			fmt.Fprintf(bw, "Kd %.4f %.4f %.4f\n", r, g, b)
			fmt.Fprintf(bw, "Ks %.4f %.4f %.4f\n", mat.Metalness, mat.Metalness, mat.Metalness)
			fmt.Fprintf(bw, "Ns %.1f\n", (1-mat.Roughness)*1000)
			fmt.Fprintf(bw, "Pr %.4f\n", mat.Roughness)
			fmt.Fprintf(bw, "Pm %.4f\n", mat.Metalness)
			if tex, ok := textures[name]; ok {
				fmt.Fprintf(bw, "map_Kd %s\n", tex)
			}
			bw.WriteString("\n")
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("export: write mtl: %w", err)
	}
	return nil
}

func rgb(c uint32) (r, g, b float64) {
	return float64(c>>16&0xff) / 255, float64(c>>8&0xff) / 255, float64(c&0xff) / 255
}

// SaveOBJ writes path, a companion .mtl next to it, and one PNG per
// textured material.
func SaveOBJ(path string, meshes []*kernel.Mesh) error {
	dir := filepath.Dir(path)
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	mtlName := stem + ".mtl"

	textures := make(map[string]string)
	for _, m := range meshes {
		for mi, mat := range m.Materials {
			if mat.Texture == nil {
				continue
			}
			name := MaterialName(m, mi)
			file := stem + "_" + name + ".png"
			if err := imaging.Save(mat.Texture, filepath.Join(dir, file)); err != nil {
				return fmt.Errorf("export: save texture %s: %w", file, err)
			}
			textures[name] = file
		}
	}

	if err := writeFile(filepath.Join(dir, mtlName), func(w io.Writer) error {
		return WriteMTL(w, meshes, textures)
	}); err != nil {
		return err
	}
	return writeFile(path, func(w io.Writer) error {
		return WriteOBJ(w, meshes, mtlName)
	})
}

// writeFile creates path and hands it to write, reporting close errors.
func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("export: close %s: %w", path, cerr)
		}
	}()
	return write(f)
}
