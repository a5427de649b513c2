package main

import (
	"fmt"
	"image"
	"log"

	"github.com/chazu/cutout/pkg/design"
	"github.com/chazu/cutout/pkg/engine"
	"github.com/chazu/cutout/pkg/export"
	"github.com/chazu/cutout/pkg/kernel"
	"github.com/chazu/cutout/pkg/kernel/bevel"
	"github.com/chazu/cutout/pkg/outline"
	"github.com/chazu/cutout/pkg/tessellate"
	"github.com/chazu/cutout/pkg/texture"
	"github.com/chazu/cutout/pkg/triangulate"
)

// App ties the engine, the outline extractor and an extrusion kernel
// together. It is the entry point shared by the CLI and tests.
type App struct {
	engine *engine.Engine
	kernel kernel.Kernel
}

// EvalErrorData is a JSON-serializable eval error.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of evaluating a script.
type EvalResult struct {
	Meshes   []export.MeshData `json:"meshes"`
	Errors   []EvalErrorData   `json:"errors"`
	Warnings []EvalErrorData   `json:"warnings"`

	meshes []*kernel.Mesh
}

// KernelMeshes returns the kernel meshes behind Meshes.
func (r EvalResult) KernelMeshes() []*kernel.Mesh {
	return r.meshes
}

// ImageOptions control ProcessImage.
type ImageOptions struct {
	Outline       outline.Options
	Texture       texture.Options
	Thickness     float64
	EdgeDivisions int
}

// DefaultImageOptions returns the defaults of every stage.
func DefaultImageOptions() ImageOptions {
	return ImageOptions{
		Outline:       outline.DefaultOptions(),
		Texture:       texture.DefaultOptions(),
		Thickness:     kernel.DefaultThickness,
		EdgeDivisions: kernel.DefaultEdgeDivisions,
	}
}

// NewApp creates a new App with an engine and the bevel kernel.
func NewApp() *App {
	return NewAppWithKernel(bevel.New())
}

// NewAppWithKernel creates an App that extrudes with k.
func NewAppWithKernel(k kernel.Kernel) *App {
	return &App{
		engine: engine.NewEngine(),
		kernel: k,
	}
}

// Evaluate takes Lisp source and returns mesh data + errors.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Meshes:   []export.MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	// Step 1: Evaluate the Lisp source into a design.
	d, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		log.Printf("Evaluate fatal error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}

	// Step 2: Convert eval errors.
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	// Step 3: Validate; warnings are reported but do not block.
	v := design.Validate(d)
	for _, w := range v.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{Message: w.Error()})
	}
	if !v.OK() {
		for _, e := range v.Errors {
			result.Errors = append(result.Errors, EvalErrorData{Message: e.Error()})
		}
		return result
	}

	// Step 4: Triangulate and extrude every piece.
	meshes, err := tessellate.Tessellate(d, a.kernel)
	if err != nil {
		log.Printf("Tessellate error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{
			Message: "tessellation failed: " + err.Error(),
		})
		return result
	}

	// Step 5: Convert kernel meshes to the serializable format.
	for i, m := range meshes {
		result.Meshes = append(result.Meshes, export.ToMeshData(m, export.PaletteColor(i)))
	}
	result.meshes = meshes

	return result
}

// ProcessImage extracts the most central piece of img, renders its
// texture, and extrudes it into a single mesh named name.
func (a *App) ProcessImage(name string, img image.Image, opts ImageOptions) (*kernel.Mesh, error) {
	res, err := outline.Extract(img, opts.Outline)
	if err != nil {
		return nil, err
	}
	log.Printf("outline: %d candidate piece(s), selected %v with %d boundary points, kept %d",
		res.Found, res.Piece.Bounds, len(res.Piece.Contour), len(res.Outline))

	tri, err := triangulate.Triangulate(res.Outline)
	if err != nil {
		return nil, fmt.Errorf("triangulate %q: %w", name, err)
	}

	tex, err := texture.Render(img, res.Piece.Bounds, res.Piece.Contour, opts.Texture)
	if err != nil {
		return nil, err
	}

	prof := kernel.NewProfile(name, res.Outline, tri.Triangles)
	prof.Thickness = opts.Thickness
	prof.EdgeDivisions = opts.EdgeDivisions
	prof.Texture = tex

	m, err := a.kernel.Extrude(prof)
	if err != nil {
		return nil, fmt.Errorf("%s kernel failed for %q: %w", a.kernel.Name(), name, err)
	}
	return m, nil
}
