package ingest

import (
	"fmt"
	"math"

	"github.com/tinytelemetry/splot/internal/model"
)

// recolorAppearances assigns evenly spaced hues across all current series so
// neighbors stay distinguishable as the set grows.
func recolorAppearances(apps []model.SeriesAppearance) {
	n := len(apps)
	for i := range apps {
		apps[i].Color = uniqueColorInList(i, n)
	}
}

func uniqueColorInList(i, n int) string {
	hue := float64(i) / float64(n)
	r, g, b := hsvToRGB(hue, 0.8, 0.95)
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// hsvToRGB converts h in [0,1), s and v in [0,1] to 8-bit RGB.
func hsvToRGB(h, s, v float64) (uint8, uint8, uint8) {
	h = h - math.Floor(h)
	sector := h * 6
	i := int(sector) % 6
	f := sector - math.Floor(sector)

	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)

	var r, g, b float64
	switch i {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}

	return uint8(math.Round(r * 255)), uint8(math.Round(g * 255)), uint8(math.Round(b * 255))
}
