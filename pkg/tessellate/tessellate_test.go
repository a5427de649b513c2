package tessellate_test

import (
	"errors"
	"image"
	"math"
	"strings"
	"testing"

	"github.com/chazu/cutout/pkg/design"
	"github.com/chazu/cutout/pkg/geom"
	"github.com/chazu/cutout/pkg/kernel"
	"github.com/chazu/cutout/pkg/kernel/bevel"
	"github.com/chazu/cutout/pkg/kernel/sdfx"
	"github.com/chazu/cutout/pkg/tessellate"
)

func square(size float64) []geom.Vec2 {
	h := size / 2
	return []geom.Vec2{{X: -h, Y: -h}, {X: h, Y: -h}, {X: h, Y: h}, {X: -h, Y: h}}
}

// failingKernel rejects every profile.
type failingKernel struct{}

func (failingKernel) Name() string { return "failing" }
func (failingKernel) Extrude(p *kernel.Profile) (*kernel.Mesh, error) {
	return nil, errors.New("boom")
}

func TestNilDesign(t *testing.T) {
	meshes, err := tessellate.Tessellate(nil, bevel.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meshes != nil {
		t.Errorf("expected nil meshes, got %d", len(meshes))
	}
}

func TestEmptyDesign(t *testing.T) {
	meshes, err := tessellate.Tessellate(design.New(), bevel.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(meshes) != 0 {
		t.Errorf("expected 0 meshes, got %d", len(meshes))
	}
}

func TestSingleSquare(t *testing.T) {
	d := design.New()
	d.AddPiece(&design.Piece{Name: "sq", Outline: square(1)})

	meshes, err := tessellate.Tessellate(d, bevel.New())
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(meshes))
	}
	m := meshes[0]
	if m.PartName != "sq" {
		t.Errorf("PartName = %q, want %q", m.PartName, "sq")
	}
	// N * (divisions + 1) vertices.
	if got := m.VertexCount(); got != 16 {
		t.Errorf("VertexCount = %d, want 16", got)
	}
	if err := m.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	min, max := m.Bounds()
	if math.Abs(min[2]+kernel.DefaultThickness/2) > 1e-6 || math.Abs(max[2]-kernel.DefaultThickness/2) > 1e-6 {
		t.Errorf("z range = [%f, %f], want ±%f", min[2], max[2], kernel.DefaultThickness/2)
	}
}

func TestPieceSettingsReachKernel(t *testing.T) {
	d := design.New()
	d.Defaults.EdgeDivisions = 5
	d.AddPiece(&design.Piece{Name: "thick", Outline: square(1), Thickness: 0.2})

	meshes, err := tessellate.Tessellate(d, bevel.New())
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	m := meshes[0]
	if got := m.VertexCount(); got != 4*6 {
		t.Errorf("VertexCount = %d, want %d", got, 4*6)
	}
	min, max := m.Bounds()
	if math.Abs(max[2]-min[2]-0.2) > 1e-6 {
		t.Errorf("thickness = %f, want 0.2", max[2]-min[2])
	}
}

func TestMultiplePiecesInOrder(t *testing.T) {
	d := design.New()
	d.AddPiece(&design.Piece{Name: "a", Outline: square(1)})
	d.AddPiece(&design.Piece{Name: "b", Outline: geom.RegularPolygon(6, 0.5)})
	d.AddPiece(&design.Piece{Name: "c", Outline: geom.RegularPolygon(12, 0.3)})

	meshes, err := tessellate.Tessellate(d, bevel.New())
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 3 {
		t.Fatalf("expected 3 meshes, got %d", len(meshes))
	}
	for i, want := range []string{"a", "b", "c"} {
		if meshes[i].PartName != want {
			t.Errorf("mesh %d PartName = %q, want %q", i, meshes[i].PartName, want)
		}
	}
}

func TestClockwiseOutlineIsReversed(t *testing.T) {
	d := design.New()
	p := &design.Piece{Name: "cw", Outline: geom.Reverse(square(1))}
	d.AddPiece(p)

	prof, err := tessellate.Profile(d, p)
	if err != nil {
		t.Fatalf("Profile failed: %v", err)
	}
	if !geom.IsCCW(prof.Points) {
		t.Error("profile points should be counter-clockwise")
	}
	if len(prof.Triangles) != 2 {
		t.Errorf("expected 2 triangles, got %d", len(prof.Triangles))
	}
	if geom.IsCCW(p.Outline) {
		t.Error("piece outline must not be mutated")
	}
}

func TestInvalidDesign(t *testing.T) {
	d := design.New()
	d.AddPiece(&design.Piece{Name: "a", Outline: square(1)[:2]})

	_, err := tessellate.Tessellate(d, bevel.New())
	if !errors.Is(err, tessellate.ErrInvalidDesign) {
		t.Fatalf("error = %v, want ErrInvalidDesign", err)
	}
}

func TestKernelErrorNamesPiece(t *testing.T) {
	d := design.New()
	d.AddPiece(&design.Piece{Name: "first", Outline: square(1)})

	meshes, err := tessellate.Tessellate(d, failingKernel{})
	if err == nil {
		t.Fatal("expected error")
	}
	if meshes != nil {
		t.Error("no meshes should be returned on failure")
	}
	if !strings.Contains(err.Error(), `"first"`) || !strings.Contains(err.Error(), "failing") {
		t.Errorf("error %q should name the piece and kernel", err)
	}
}

func TestTexturesBoundByName(t *testing.T) {
	d := design.New()
	d.AddPiece(&design.Piece{Name: "a", Outline: square(1)})
	d.AddPiece(&design.Piece{Name: "b", Outline: square(1)})
	tex := image.NewRGBA(image.Rect(0, 0, 4, 4))

	meshes, err := tessellate.TessellateTextured(d, bevel.New(), map[string]image.Image{"a": tex})
	if err != nil {
		t.Fatalf("TessellateTextured failed: %v", err)
	}
	if meshes[0].Materials[kernel.MaterialDrawing].Texture != tex {
		t.Error("piece a should carry its texture")
	}
	if meshes[1].Materials[kernel.MaterialDrawing].Texture != nil {
		t.Error("piece b should be untextured")
	}
	if meshes[0].Materials[kernel.MaterialEdge].Texture != nil {
		t.Error("edge material must never carry the texture")
	}
}

func TestSdfxKernel(t *testing.T) {
	d := design.New()
	d.AddPiece(&design.Piece{Name: "hex", Outline: geom.RegularPolygon(6, 0.5)})

	meshes, err := tessellate.Tessellate(d, sdfx.NewWithCells(30))
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 1 || meshes[0].IsEmpty() {
		t.Fatal("expected one non-empty mesh")
	}
	if meshes[0].PartName != "hex" {
		t.Errorf("PartName = %q, want %q", meshes[0].PartName, "hex")
	}
}
