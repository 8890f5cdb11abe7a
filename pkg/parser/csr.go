package parser

import "math"

// PrintDPI is the resolution lengths are converted to before the cut-split-rotate search.
const PrintDPI = 96.0

// csrMaxIterations bounds the angle search.
const csrMaxIterations = 1000

type point struct{ x, y float64 }

// segment is a directed line in screen coordinates, y pointing down.
type segment struct{ p1, p2 point }

func (s segment) dx() float64 { return s.p2.x - s.p1.x }
func (s segment) dy() float64 { return s.p2.y - s.p1.y }

func (s segment) length() float64 {
	return math.Hypot(s.dx(), s.dy())
}

// angle is measured counter-clockwise in degrees within [0, 360).
func (s segment) angle() float64 {
	theta := radToDeg(math.Atan2(-s.dy(), s.dx()))
	if theta < 0 {
		theta += 360
	}

	if fuzzyCompare(theta, 360) {
		return 0
	}

	return theta
}

func (s segment) withAngle(deg float64) segment {
	r := degToRad(deg)
	l := s.length()
	s.p2 = point{x: s.p1.x + math.Cos(r)*l, y: s.p1.y - math.Sin(r)*l}
	return s
}

func (s segment) withLength(l float64) segment {
	old := s.length()
	if old > 0 && !math.IsInf(old, 0) {
		s.p2 = point{x: s.p1.x + l*s.dx()/old, y: s.p1.y + l*s.dy()/old}
	}
	return s
}

func (s segment) angleTo(o segment) float64 {
	delta := o.angle() - s.angle()
	if fuzzyCompare(delta, 360) {
		return 0
	}

	if delta < 0 {
		delta += 360
	}

	return delta
}

// intersect returns the crossing point of the two infinite lines, if they are not parallel.
func (s segment) intersect(o segment) (point, bool) {
	a := point{s.p2.x - s.p1.x, s.p2.y - s.p1.y}
	b := point{o.p1.x - o.p2.x, o.p1.y - o.p2.y}
	c := point{s.p1.x - o.p1.x, s.p1.y - o.p1.y}

	den := a.y*b.x - a.x*b.y
	if den == 0 || math.IsInf(den, 0) || math.IsNaN(den) {
		return point{}, false
	}

	na := (b.y*c.x - b.x*c.y) / den
	return point{s.p1.x + a.x*na, s.p1.y + a.y*na}, true
}

// csr cuts a piece of the given length, splits it by split and returns the angle the second part
// must be rotated by so that the gap forms an arc of arcLength.
func csr(length, split, arcLength float64) float64 {
	length = math.Abs(length)
	arcLength = math.Abs(arcLength)

	if isFuzzyNull(length) || isFuzzyNull(split) || isFuzzyNull(arcLength) {
		return 0
	}

	sgn := math.Copysign(1, split)
	line := segment{p1: point{0, 0}, p2: point{0, length}}

	tmp := line.withAngle(line.angle() + 90*sgn).withLength(split)
	p1 := tmp.p2

	tmp = segment{p1: point{0, length}, p2: point{0, 0}}
	tmp = tmp.withAngle(tmp.angle() - 90*sgn).withLength(split)
	p2 := tmp.p2

	line2 := segment{p1: p1, p2: p2}

	angle := 180.0
	arcL := float64(math.MaxInt32)
	tolerance := 0.5 / 25.4 * PrintDPI

	for i := 0; i < csrMaxIterations; i++ {
		switch {
		case arcL > arcLength:
			angle -= angle / 2
		case arcL < arcLength:
			angle += angle / 2
		default:
			return angle
		}

		if angle < 0.00001 || angle >= 360 {
			return 0
		}

		rotated := line2.withAngle(line2.angle() + angle*sgn)
		cross, ok := line.intersect(rotated)
		if !ok {
			return 0
		}

		radius := segment{p1: cross, p2: rotated.p2}
		var arcAngle float64
		if sgn > 0 {
			arcAngle = line.angleTo(radius)
		} else {
			arcAngle = radius.angleTo(line)
		}

		arcL = math.Pi * radius.length() / 180 * arcAngle
		if math.Abs(arcL-arcLength) <= tolerance {
			return angle
		}
	}

	return 0
}
