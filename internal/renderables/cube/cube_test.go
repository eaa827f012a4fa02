package cube

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerticesFormOneStrip(t *testing.T) {
	assert.Len(t, Vertices, VertexCount*3)
	for _, v := range Vertices {
		assert.Contains(t, []float32{-1, 1}, v)
	}
}

func TestStripTouchesEveryCorner(t *testing.T) {
	seen := map[[3]float32]bool{}
	for i := 0; i < len(Vertices); i += 3 {
		seen[[3]float32{Vertices[i], Vertices[i+1], Vertices[i+2]}] = true
	}
	assert.Len(t, seen, 8)
}
