package contour

import (
	"context"
	"testing"
)

func circleGrid(size int) Grid {
	g := NewGrid(size, size)
	c, r := size/2, size/2-2
	for y := range size {
		for x := range size {
			dy, dx := y-c, x-c
			if dx*dx+dy*dy <= r*r {
				g.Set(y, x, 1)
			}
		}
	}
	return g
}

func BenchmarkTrace_Square(b *testing.B) {
	g := squareGrid(100, 100, 10, 10, 80)

	b.ResetTimer()
	for range b.N {
		if _, err := Trace(g); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkTrace_Circle(b *testing.B) {
	g := circleGrid(200)

	b.ResetTimer()
	for range b.N {
		if _, err := Trace(g); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkTracer_LargeImage(b *testing.B) {
	g := squareGrid(1000, 1000, 100, 100, 800)
	tracer := NewTracer()
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for range b.N {
		if _, err := tracer.Trace(ctx, g); err != nil {
			b.Fatal(err)
		}
	}
}
