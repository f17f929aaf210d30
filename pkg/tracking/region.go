package tracking

import "image"

// Moments holds the raw spatial moments of a region up to first order.
type Moments struct {
	M00, M10, M01 float64
}

// PolygonMoments computes the moments of the polygon enclosed by a contour
// using Green's theorem, the same way OpenCV treats a contour passed to
// cv::moments. Orientation is normalised so M00 is never negative.
func PolygonMoments(pts []image.Point) Moments {
	n := len(pts)
	if n < 3 {
		return Moments{}
	}

	var m Moments
	prev := pts[n-1]
	for _, p := range pts {
		xi, yi := float64(prev.X), float64(prev.Y)
		xj, yj := float64(p.X), float64(p.Y)

		cross := xi*yj - xj*yi
		m.M00 += cross
		m.M10 += cross * (xi + xj)
		m.M01 += cross * (yi + yj)

		prev = p
	}

	m.M00 /= 2
	m.M10 /= 6
	m.M01 /= 6

	if m.M00 < 0 {
		m.M00, m.M10, m.M01 = -m.M00, -m.M10, -m.M01
	}
	return m
}

// Centroid returns the area-weighted centre (M10/M00, M01/M00), truncated
// to whole pixels. ok is false for degenerate regions with no area.
func (m Moments) Centroid() (p image.Point, ok bool) {
	if m.M00 == 0 {
		return image.Point{}, false
	}
	return image.Pt(int(m.M10/m.M00), int(m.M01/m.M00)), true
}

// Region is one connected area of a classification mask.
type Region struct {
	Area    float64
	Moments Moments
	Contour []image.Point
}

// Centroid returns the region's centroid.
func (r Region) Centroid() (image.Point, bool) {
	return r.Moments.Centroid()
}

// SelectLargest picks the region with the largest area.
// Ties go to the first region in enumeration order. Regions with zero area
// are never selected, so nil means no usable region.
func SelectLargest(regions []Region) *Region {
	var best *Region
	maxArea := 0.0

	for i := range regions {
		if regions[i].Area > maxArea {
			maxArea = regions[i].Area
			best = &regions[i]
		}
	}

	return best
}
