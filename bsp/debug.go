//go:build bspdebug

package bsp

import (
	"fmt"
	"math"

	"honnef.co/go/curve"
)

const normalTolerance = 1e-4

func checkNormal(normal curve.Vec2) {
	if l := normal.Hypot(); math.Abs(l-1) > normalTolerance {
		panic(fmt.Sprintf("bsp: split normal %v is not normalized (length %g)", normal, l))
	}
}
