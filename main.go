package main

import (
	"flag"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chazu/cutout/pkg/export"
	"github.com/chazu/cutout/pkg/kernel"
	"github.com/chazu/cutout/pkg/kernel/bevel"
	"github.com/chazu/cutout/pkg/kernel/sdfx"
	"github.com/chazu/cutout/pkg/outline"
	"github.com/chazu/cutout/pkg/texture"
	"github.com/disintegration/imaging"
	"golang.org/x/term"
)

const banner = `cutout: turn a drawn shape into a beveled 3D piece.

Usage:
  cutout -in drawing.jpg -out piece.obj
  cutout -script pieces.cut -out pieces.stl

`

// pipeName is the file name that indicates stdin/stdout is being used.
const pipeName = "-"

func main() {
	var (
		// Flags
		source      = flag.String("in", "", "Source image, - reads stdin")
		script      = flag.String("script", "", "Lisp design script, - reads stdin")
		destination = flag.String("out", pipeName, "Destination mesh: .obj, .stl or .json")
		format      = flag.String("format", "", "Output format when writing to stdout: obj|json")
		kernelName  = flag.String("kernel", "bevel", "Extrusion kernel: bevel|sdfx")
		cells       = flag.Int("cells", sdfx.DefaultMeshCells, "Marching cubes cells for the sdfx kernel")
		thickness   = flag.Float64("thickness", kernel.DefaultThickness, "Piece thickness (image input)")
		divisions   = flag.Int("divisions", kernel.DefaultEdgeDivisions, "Edge divisions (image input)")
		step        = flag.Int("step", outline.DefaultOptions().Step, "Keep every n-th boundary point (image input)")
		texSize     = flag.Int("texture-size", texture.DefaultSize, "Texture canvas size in pixels (image input)")
		feather     = flag.Float64("feather", texture.DefaultFeather, "Texture mask blur sigma (image input)")
	)

	log.SetFlags(0)
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, banner)
		flag.PrintDefaults()
	}
	flag.Parse()

	if (*source == "") == (*script == "") {
		log.Fatal("Usage: cutout -in input.jpg -out out.obj | cutout -script design.cut -out out.obj")
	}

	var k kernel.Kernel
	switch *kernelName {
	case "bevel":
		k = bevel.New()
	case "sdfx":
		k = sdfx.NewWithCells(*cells)
	default:
		log.Fatalf("Unknown kernel: %q (want bevel or sdfx)", *kernelName)
	}
	app := NewAppWithKernel(k)

	start := time.Now()

	var meshes []*kernel.Mesh
	if *script != "" {
		src, err := readSource(*script)
		if err != nil {
			log.Fatalf("Unable to read script: %v", err)
		}
		res := app.Evaluate(string(src))
		for _, w := range res.Warnings {
			log.Printf("warning: %s", w.Message)
		}
		if len(res.Errors) > 0 {
			for _, e := range res.Errors {
				if e.Line > 0 {
					log.Printf("%s:%d:%d: %s", *script, e.Line, e.Col, e.Message)
				} else {
					log.Printf("%s: %s", *script, e.Message)
				}
			}
			os.Exit(1)
		}
		meshes = res.KernelMeshes()
	} else {
		img, err := decodeImage(*source)
		if err != nil {
			log.Fatalf("Unable to decode image: %v", err)
		}
		opts := DefaultImageOptions()
		opts.Outline.Step = *step
		opts.Texture.Size = *texSize
		opts.Texture.Feather = *feather
		opts.Thickness = *thickness
		opts.EdgeDivisions = *divisions

		m, err := app.ProcessImage(pieceName(*source), img, opts)
		if err != nil {
			log.Fatalf("Extraction error: %v", err)
		}
		meshes = []*kernel.Mesh{m}
	}

	if err := writeMeshes(*destination, *format, meshes); err != nil {
		log.Fatalf("Error writing the output: %v", err)
	}

	var verts, tris int
	for _, m := range meshes {
		verts += m.VertexCount()
		tris += m.TriangleCount()
	}
	log.Printf("%d piece(s), %d vertices, %d triangles with the %s kernel in %.2fs",
		len(meshes), verts, tris, k.Name(), time.Since(start).Seconds())
}

// readSource reads a script from a file or from stdin.
func readSource(path string) ([]byte, error) {
	if path == pipeName {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			log.Fatalln("`-` should be used with a pipe for stdin")
		}
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// decodeImage opens the source image, honouring EXIF orientation.
func decodeImage(path string) (image.Image, error) {
	if path == pipeName {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			log.Fatalln("`-` should be used with a pipe for stdin")
		}
		return imaging.Decode(os.Stdin, imaging.AutoOrientation(true))
	}
	return outline.Load(path)
}

// pieceName derives a piece name from the image file name.
func pieceName(path string) string {
	if path == pipeName {
		return "piece"
	}
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func writeMeshes(dst, format string, meshes []*kernel.Mesh) error {
	if dst != pipeName {
		return export.Save(dst, meshes)
	}
	if term.IsTerminal(int(os.Stdout.Fd())) {
		log.Fatalln("`-` should be used with a pipe for stdout")
	}
	f := export.FormatOBJ
	if format != "" {
		f = export.Format(strings.ToLower(format))
	}
	if f.IsBinary() {
		return fmt.Errorf("%s output needs a file name", f)
	}
	return export.Write(os.Stdout, f, meshes)
}
