package geo

import "github.com/shopspring/decimal"

// IsInside reports whether point lies inside the polygon described by fence.
//
// The polygon is implicitly closed (the last vertex connects to the first) and
// may be given in either winding direction. Fewer than three vertices never
// contain anything.
//
// Boundary policy is inclusive: a point exactly on an edge or vertex is inside.
// Otherwise the even-odd rule is applied to a ray cast from point toward
// increasing longitude. An edge is crossed only when point's latitude lies in the
// half-open interval [min, max) of the edge's latitudes, so horizontal edges are
// ignored and a ray through a shared vertex is counted once.
func IsInside(point LatLng, fence []LatLng) bool {
	n := len(fence)
	if n < 3 {
		return false
	}

	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		if onSegment(point, fence[j], fence[i]) {
			return true
		}
	}

	inside := false
	y, x := point.lat, point.lng
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		yi, xi := fence[i].lat, fence[i].lng
		yj, xj := fence[j].lat, fence[j].lng
		if yi.GreaterThan(y) == yj.GreaterThan(y) {
			continue
		}
		// x < xi + (y-yi)*(xj-xi)/(yj-yi), multiplied through by (yj-yi).
		dy := yj.Sub(yi)
		lhs := x.Sub(xi).Mul(dy)
		rhs := y.Sub(yi).Mul(xj.Sub(xi))
		if (dy.Sign() > 0 && lhs.LessThan(rhs)) || (dy.Sign() < 0 && lhs.GreaterThan(rhs)) {
			inside = !inside
		}
	}
	return inside
}

// onSegment reports whether p lies on the closed segment a-b.
func onSegment(p, a, b LatLng) bool {
	cross := b.lat.Sub(a.lat).Mul(p.lng.Sub(a.lng)).Sub(b.lng.Sub(a.lng).Mul(p.lat.Sub(a.lat)))
	if !cross.IsZero() {
		return false
	}
	return between(p.lat, a.lat, b.lat) && between(p.lng, a.lng, b.lng)
}

func between(v, a, b decimal.Decimal) bool {
	lo, hi := decimal.Min(a, b), decimal.Max(a, b)
	return v.GreaterThanOrEqual(lo) && v.LessThanOrEqual(hi)
}
