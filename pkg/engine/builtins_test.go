package engine

import (
	"math"
	"strings"
	"testing"

	"github.com/chazu/cutout/pkg/design"
	"github.com/chazu/cutout/pkg/kernel"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(piece "a" :outline pts)`,
			expect: `(piece "a" "__kw_outline" pts)`,
		},
		{
			name:   "multiple keywords",
			input:  `(defaults :thickness 0.1 :divisions 4)`,
			expect: `(defaults "__kw_thickness" 0.1 "__kw_divisions" 4)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "escaped quote in string",
			input:  `"a \" :b"`,
			expect: `"a \" :b"`,
		},
		{
			name:   "backtick string preserved",
			input:  "`regular-polygon :x`",
			expect: "`regular-polygon :x`",
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(regular-polygon 6 0.5)`,
			expect: `(regular_polygon 6 0.5)`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "negative literal preserved",
			input:  `(vec2 -0.5 1)`,
			expect: `(vec2 -0.5 1)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:edge-divisions`,
			expect: `"__kw_edge-divisions"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Builtins
// ---------------------------------------------------------------------------

func mustEvaluate(t *testing.T, source string) *design.Design {
	t.Helper()
	d, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if d == nil {
		t.Fatal("expected non-nil design")
	}
	return d
}

func TestPieceExplicitOutline(t *testing.T) {
	d := mustEvaluate(t, `
(piece "tri"
  :outline (list (vec2 0 0) (vec2 1 0) (vec2 0 1))
  :thickness 0.1
  :divisions 4)
`)
	if d.PieceCount() != 1 {
		t.Fatalf("expected 1 piece, got %d", d.PieceCount())
	}
	p := d.Lookup("tri")
	if p == nil {
		t.Fatal("expected piece named 'tri'")
	}
	if len(p.Outline) != 3 {
		t.Fatalf("expected 3 points, got %d", len(p.Outline))
	}
	if p.Outline[1].X != 1 || p.Outline[1].Y != 0 {
		t.Errorf("point 1 = %v, want (1, 0)", p.Outline[1])
	}
	if p.Thickness != 0.1 {
		t.Errorf("thickness = %f, want 0.1", p.Thickness)
	}
	if p.EdgeDivisions != 4 {
		t.Errorf("divisions = %d, want 4", p.EdgeDivisions)
	}
}

func TestPieceDefaultsApply(t *testing.T) {
	d := mustEvaluate(t, `(piece "sq" :outline (rect 1 1))`)
	p := d.MustLookup("sq")
	if p.Thickness != 0 || p.EdgeDivisions != 0 {
		t.Errorf("unset settings should stay zero, got %f/%d", p.Thickness, p.EdgeDivisions)
	}
	if got := d.ThicknessOf(p); got != kernel.DefaultThickness {
		t.Errorf("effective thickness = %f, want %f", got, kernel.DefaultThickness)
	}
}

func TestDefaultsBuiltin(t *testing.T) {
	d := mustEvaluate(t, `
(defaults :thickness 0.2 :divisions 6)
(piece "sq" :outline (rect 1 1))
`)
	if d.Defaults.Thickness != 0.2 {
		t.Errorf("default thickness = %f, want 0.2", d.Defaults.Thickness)
	}
	if got := d.EdgeDivisionsOf(d.MustLookup("sq")); got != 6 {
		t.Errorf("effective divisions = %d, want 6", got)
	}
}

func TestRect(t *testing.T) {
	d := mustEvaluate(t, `(piece "r" :outline (rect 2 1))`)
	p := d.MustLookup("r")
	if len(p.Outline) != 4 {
		t.Fatalf("expected 4 points, got %d", len(p.Outline))
	}
	if p.Outline[0].X != -1 || p.Outline[0].Y != -0.5 {
		t.Errorf("first corner = %v, want (-1, -0.5)", p.Outline[0])
	}
	if p.Outline[2].X != 1 || p.Outline[2].Y != 0.5 {
		t.Errorf("third corner = %v, want (1, 0.5)", p.Outline[2])
	}
}

func TestRegularPolygon(t *testing.T) {
	d := mustEvaluate(t, `(piece "hex" :outline (regular-polygon 6 0.5))`)
	p := d.MustLookup("hex")
	if len(p.Outline) != 6 {
		t.Fatalf("expected 6 points, got %d", len(p.Outline))
	}
	for i, v := range p.Outline {
		if r := v.Magnitude(); math.Abs(r-0.5) > 1e-9 {
			t.Errorf("point %d radius = %f, want 0.5", i, r)
		}
	}
}

func TestTranslateAndScale(t *testing.T) {
	d := mustEvaluate(t, `(piece "r" :outline (translate (scale (rect 2 2) 0.5) 3 4))`)
	p := d.MustLookup("r")
	if p.Outline[0].X != 2.5 || p.Outline[0].Y != 3.5 {
		t.Errorf("first corner = %v, want (2.5, 3.5)", p.Outline[0])
	}
}

func TestVariableReference(t *testing.T) {
	d := mustEvaluate(t, `
(def pts (regular-polygon 5 1))
(def thick 0.08)
(piece "a" :outline pts :thickness thick)
(piece "b" :outline pts)
`)
	if d.PieceCount() != 2 {
		t.Fatalf("expected 2 pieces, got %d", d.PieceCount())
	}
	if d.MustLookup("a").Thickness != 0.08 {
		t.Errorf("thickness from variable = %f, want 0.08", d.MustLookup("a").Thickness)
	}
	names := d.Names()
	if names[0] != "a" || names[1] != "b" {
		t.Errorf("names = %v, want declaration order", names)
	}
}

func TestBuiltinErrors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		wantMsg string
	}{
		{"missing outline", `(piece "a")`, "missing :outline"},
		{"missing name", `(piece :outline (rect 1 1))`, "name"},
		{"duplicate piece", `(piece "a" :outline (rect 1 1)) (piece "a" :outline (rect 1 1))`, "duplicate"},
		{"bad point", `(piece "a" :outline (list 1 2 3))`, "point 0"},
		{"polygon sides", `(regular-polygon 2 1)`, "at least 3"},
		{"vec2 arity", `(vec2 1)`, "2 arguments"},
		{"rect negative", `(rect 0 1)`, "positive"},
		{"fractional divisions", `(piece "a" :outline (rect 1 1) :divisions 2.5)`, "integer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, evalErrs, err := NewEngine().Evaluate(tt.source)
			if err != nil {
				t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
			}
			if d != nil {
				t.Fatal("expected nil design on eval error")
			}
			if len(evalErrs) == 0 {
				t.Fatal("expected at least one eval error")
			}
			if !strings.Contains(evalErrs[0].Message, tt.wantMsg) {
				t.Errorf("message = %q, want containing %q", evalErrs[0].Message, tt.wantMsg)
			}
		})
	}
}

func TestArithmeticStillWorks(t *testing.T) {
	d := mustEvaluate(t, `
(def w (* 2 0.5))
(piece "sq" :outline (rect w (+ w 1)))
`)
	p := d.MustLookup("sq")
	if p.Outline[2].Y != 1 {
		t.Errorf("top edge = %f, want 1", p.Outline[2].Y)
	}
}

func TestEvaluatedDesignValidates(t *testing.T) {
	d := mustEvaluate(t, `
(piece "hex" :outline (regular-polygon 6 0.5))
(piece "sq" :outline (rect 1 1))
`)
	res := design.Validate(d)
	if !res.OK() {
		t.Errorf("validation errors: %v", res.Errors)
	}
}
