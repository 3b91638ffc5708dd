package roads

import (
	"math"

	"roadnet/internal/domain/entity"
)

// GRS80 ellipsoid and UTM constants.
const (
	grs80A          = 6378137.0
	grs80F          = 1 / 298.257222101
	utmScale        = 0.9996
	utmFalseEasting = 500000.0
)

// utmToWGS84 converts northern-hemisphere UTM coordinates on GRS80 to
// latitude/longitude. Accurate to well under a metre inside the zone.
func utmToWGS84(easting, northing float64, zone int) entity.Point {
	e2 := grs80F * (2 - grs80F)
	ep2 := e2 / (1 - e2)
	sqrtE := math.Sqrt(1 - e2)
	e1 := (1 - sqrtE) / (1 + sqrtE)

	x := easting - utmFalseEasting
	lon0 := float64(zone*6-183) * math.Pi / 180

	m := northing / utmScale
	mu := m / (grs80A * (1 - e2/4 - 3*e2*e2/64 - 5*e2*e2*e2/256))

	phi1 := mu +
		(3*e1/2-27*math.Pow(e1, 3)/32)*math.Sin(2*mu) +
		(21*e1*e1/16-55*math.Pow(e1, 4)/32)*math.Sin(4*mu) +
		(151*math.Pow(e1, 3)/96)*math.Sin(6*mu) +
		(1097*math.Pow(e1, 4)/512)*math.Sin(8*mu)

	sinPhi, cosPhi := math.Sincos(phi1)
	tanPhi := sinPhi / cosPhi
	w := 1 - e2*sinPhi*sinPhi

	n1 := grs80A / math.Sqrt(w)
	t1 := tanPhi * tanPhi
	c1 := ep2 * cosPhi * cosPhi
	r1 := grs80A * (1 - e2) / math.Pow(w, 1.5)
	d := x / (n1 * utmScale)

	lat := phi1 - (n1*tanPhi/r1)*(d*d/2-
		(5+3*t1+10*c1-4*c1*c1-9*ep2)*math.Pow(d, 4)/24+
		(61+90*t1+298*c1+45*t1*t1-252*ep2-3*c1*c1)*math.Pow(d, 6)/720)
	lon := lon0 + (d-
		(1+2*t1+c1)*math.Pow(d, 3)/6+
		(5-2*c1+28*t1-3*c1*c1+8*ep2+24*t1*t1)*math.Pow(d, 5)/120)/cosPhi

	return entity.NewPoint(lat*180/math.Pi, lon*180/math.Pi)
}
