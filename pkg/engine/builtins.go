package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/chazu/cutout/pkg/design"
	"github.com/chazu/cutout/pkg/geom"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec2 wraps a geom.Vec2.
type sexpVec2 struct {
	vec geom.Vec2
}

func (v *sexpVec2) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec2 %g %g)", v.vec.X, v.vec.Y)
}
func (v *sexpVec2) Type() *zygo.RegisteredType { return nil }

// sexpPieceRef is returned by `piece` so scripts can print or collect it.
type sexpPieceRef struct {
	name string
}

func (p *sexpPieceRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(piece %q)", p.name)
}
func (p *sexpPieceRef) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an integer; floats are accepted when integral.
func toInt(s zygo.Sexp) (int, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return int(v.Val), nil
	case *zygo.SexpFloat:
		if v.Val == math.Trunc(v.Val) {
			return int(v.Val), nil
		}
		return 0, fmt.Errorf("expected integer, got %g", v.Val)
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toVec2 accepts a (vec2 x y) value or a two-number list.
func toVec2(s zygo.Sexp) (geom.Vec2, error) {
	if v, ok := s.(*sexpVec2); ok {
		return v.vec, nil
	}
	items, err := sexpListToSlice(s)
	if err != nil || len(items) != 2 {
		return geom.Vec2{}, fmt.Errorf("expected vec2, got %T (%s)", s, s.SexpString(nil))
	}
	x, err := toFloat64(items[0])
	if err != nil {
		return geom.Vec2{}, fmt.Errorf("x: %w", err)
	}
	y, err := toFloat64(items[1])
	if err != nil {
		return geom.Vec2{}, fmt.Errorf("y: %w", err)
	}
	return geom.V(x, y), nil
}

// toOutline converts a list of points to a polygon.
func toOutline(s zygo.Sexp) ([]geom.Vec2, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	pts := make([]geom.Vec2, 0, len(items))
	for i, item := range items {
		v, err := toVec2(item)
		if err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
		pts = append(pts, v)
	}
	return pts, nil
}

// outlineToSexp returns points as a Lisp list of vec2 values.
func outlineToSexp(pts []geom.Vec2) zygo.Sexp {
	items := make([]zygo.Sexp, len(pts))
	for i, p := range pts {
		items[i] = &sexpVec2{vec: p}
	}
	return zygo.MakeList(items)
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the cutout DSL builtins into a zygomys
// environment. The builtins populate d during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, d *design.Design) {

	// -----------------------------------------------------------------------
	// (vec2 0.5 -0.25)
	// -----------------------------------------------------------------------
	env.AddFunction("vec2", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("vec2 requires 2 arguments, got %d", len(args))
		}
		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec2: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec2: y: %w", err)
		}
		return &sexpVec2{vec: geom.V(x, y)}, nil
	})

	// -----------------------------------------------------------------------
	// (regular-polygon 6 0.5)
	// -----------------------------------------------------------------------
	env.AddFunction("regular_polygon", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("regular-polygon requires 2 arguments, got %d", len(args))
		}
		n, err := toInt(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("regular-polygon: sides: %w", err)
		}
		if n < 3 {
			return zygo.SexpNull, fmt.Errorf("regular-polygon: sides must be at least 3, got %d", n)
		}
		r, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("regular-polygon: radius: %w", err)
		}
		if r <= 0 {
			return zygo.SexpNull, fmt.Errorf("regular-polygon: radius must be positive, got %g", r)
		}
		return outlineToSexp(geom.RegularPolygon(n, r)), nil
	})

	// -----------------------------------------------------------------------
	// (rect 1 0.5), centered on the origin
	// -----------------------------------------------------------------------
	env.AddFunction("rect", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("rect requires 2 arguments, got %d", len(args))
		}
		w, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rect: width: %w", err)
		}
		h, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rect: height: %w", err)
		}
		if w <= 0 || h <= 0 {
			return zygo.SexpNull, fmt.Errorf("rect: width and height must be positive, got %g x %g", w, h)
		}
		hw, hh := w/2, h/2
		return outlineToSexp([]geom.Vec2{
			{X: -hw, Y: -hh}, {X: hw, Y: -hh}, {X: hw, Y: hh}, {X: -hw, Y: hh},
		}), nil
	})

	// -----------------------------------------------------------------------
	// (translate outline dx dy)
	// -----------------------------------------------------------------------
	env.AddFunction("translate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("translate requires 3 arguments, got %d", len(args))
		}
		pts, err := toOutline(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: outline: %w", err)
		}
		dx, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: dx: %w", err)
		}
		dy, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: dy: %w", err)
		}
		off := geom.V(dx, dy)
		for i := range pts {
			pts[i] = pts[i].Add(off)
		}
		return outlineToSexp(pts), nil
	})

	// -----------------------------------------------------------------------
	// (scale outline 0.5)
	// -----------------------------------------------------------------------
	env.AddFunction("scale", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("scale requires 2 arguments, got %d", len(args))
		}
		pts, err := toOutline(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("scale: outline: %w", err)
		}
		s, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("scale: factor: %w", err)
		}
		for i := range pts {
			pts[i] = pts[i].Multiply(s)
		}
		return outlineToSexp(pts), nil
	})

	// -----------------------------------------------------------------------
	// (defaults :thickness 0.05 :divisions 3)
	// -----------------------------------------------------------------------
	env.AddFunction("defaults", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if v, ok := pa.kw["thickness"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("defaults: thickness: %w", err)
			}
			d.Defaults.Thickness = f
		}
		if v, ok := pa.kw["divisions"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("defaults: divisions: %w", err)
			}
			d.Defaults.EdgeDivisions = n
		}
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (piece "name" :outline (list (vec2 0 0) ...) :thickness 0.05 :divisions 3)
	// -----------------------------------------------------------------------
	env.AddFunction("piece", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("piece requires a name argument")
		}
		pieceName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("piece: name: %w", err)
		}
		if d.Lookup(pieceName) != nil {
			return zygo.SexpNull, fmt.Errorf("piece: duplicate name %q", pieceName)
		}

		p := &design.Piece{Name: pieceName}

		v, ok := pa.kw["outline"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("piece %q: missing :outline", pieceName)
		}
		p.Outline, err = toOutline(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("piece %q: outline: %w", pieceName, err)
		}
		if v, ok := pa.kw["thickness"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("piece %q: thickness: %w", pieceName, err)
			}
			p.Thickness = f
		}
		if v, ok := pa.kw["divisions"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("piece %q: divisions: %w", pieceName, err)
			}
			p.EdgeDivisions = n
		}

		d.AddPiece(p)
		return &sexpPieceRef{name: pieceName}, nil
	})
}
