package utils

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

func Radians(degree float32) float32 {
	return degree * math.Pi / 180.0
}

// MedianV3 returns the component-wise median of points, the same
// center that "origin to geometry (median)" snaps an object to.
func MedianV3(points []mgl32.Vec3) mgl32.Vec3 {
	if len(points) == 0 {
		return mgl32.Vec3{}
	}
	var m mgl32.Vec3
	axis := make([]float64, len(points))
	for c := 0; c < 3; c++ {
		for i, p := range points {
			axis[i] = float64(p[c])
		}
		sort.Float64s(axis)
		if len(axis)%2 == 1 {
			m[c] = float32(axis[len(axis)/2])
		} else {
			m[c] = float32((axis[len(axis)/2-1] + axis[len(axis)/2]) / 2)
		}
	}
	return m
}
