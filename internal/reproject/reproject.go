// Package reproject reconciles geometry collections between coordinate
// reference systems. CRS identifiers are proj4 strings; the transform
// mathematics are delegated to github.com/ctessum/geom/proj.
//
// Reconciliation is a batch step: all zones or points of one call are
// transformed together, once, before any per-zone work. When source and
// target identifiers are equal the input is returned untouched, so a
// no-op reconcile preserves coordinates bitwise.
package reproject

import (
	"fmt"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/proj"
)

// CRSError reports an undefined or non-reconcilable CRS pair. It aborts
// the whole batch call: reconciliation is shared by every zone, so there
// is no per-zone recovery.
type CRSError struct {
	Source string
	Target string
	Err    error
}

func (e *CRSError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot reconcile CRS %q -> %q: %v", e.Source, e.Target, e.Err)
	}
	return fmt.Sprintf("cannot reconcile CRS %q -> %q", e.Source, e.Target)
}

func (e *CRSError) Unwrap() error { return e.Err }

// Same reports whether two CRS identifiers are equal after trimming
// surrounding whitespace. Identifier equality is the no-op criterion;
// no semantic CRS comparison is attempted.
func Same(a, b string) bool {
	return strings.TrimSpace(a) == strings.TrimSpace(b)
}

// transformer builds the source-to-target coordinate transform, or nil
// when the two systems are identical.
func transformer(source, target string) (proj.Transformer, error) {
	if Same(source, target) {
		return nil, nil
	}
	if strings.TrimSpace(source) == "" || strings.TrimSpace(target) == "" {
		return nil, &CRSError{Source: source, Target: target,
			Err: fmt.Errorf("both CRS must be defined when they differ")}
	}
	srcSR, err := proj.Parse(source)
	if err != nil {
		return nil, &CRSError{Source: source, Target: target, Err: err}
	}
	dstSR, err := proj.Parse(target)
	if err != nil {
		return nil, &CRSError{Source: source, Target: target, Err: err}
	}
	t, err := srcSR.NewTransform(dstSR)
	if err != nil {
		return nil, &CRSError{Source: source, Target: target, Err: err}
	}
	return t, nil
}

// Geometries returns the input geometries expressed in the target CRS,
// preserving count and order. If source equals target the input slice is
// returned unchanged, without copying.
func Geometries(geoms []geom.Geom, source, target string) ([]geom.Geom, error) {
	t, err := transformer(source, target)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return geoms, nil
	}

	out := make([]geom.Geom, len(geoms))
	for i, g := range geoms {
		if g == nil {
			continue
		}
		gg, err := g.Transform(t)
		if err != nil {
			return nil, &CRSError{Source: source, Target: target,
				Err: fmt.Errorf("geometry %d: %w", i, err)}
		}
		out[i] = gg
	}
	return out, nil
}

// Points is the point-collection form of Geometries.
func Points(points []geom.Point, source, target string) ([]geom.Point, error) {
	t, err := transformer(source, target)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return points, nil
	}

	out := make([]geom.Point, len(points))
	for i, p := range points {
		gg, err := p.Transform(t)
		if err != nil {
			return nil, &CRSError{Source: source, Target: target,
				Err: fmt.Errorf("point %d: %w", i, err)}
		}
		out[i] = gg.(geom.Point)
	}
	return out, nil
}
