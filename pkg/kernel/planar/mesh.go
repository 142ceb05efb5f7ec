package planar

import (
	"fmt"

	"github.com/deadsy/sdfx/render"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/burl/pkg/kernel"
)

// defaultMeshCells controls marching cubes tessellation resolution.
const defaultMeshCells = 200

// volumeGrid is the per-axis sample count for volume estimation.
const volumeGrid = 48

// ToMesh converts a solid or compound to a triangle mesh using marching
// cubes over its signed distance field.
func (k *Kernel) ToMesh(s kernel.Shape) (*kernel.Mesh, error) {
	h := sdfOf(asShape(s))
	if h == nil {
		return nil, fmt.Errorf("planar: %s has no volume to mesh", s.Kind())
	}

	renderer := render.NewMarchingCubesUniform(defaultMeshCells)
	triangles := render.ToTriangles(h, renderer)

	numTri := len(triangles)
	numVerts := numTri * 3

	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		n := tri.Normal()
		nx := float32(n.X)
		ny := float32(n.Y)
		nz := float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}

// Volume estimates a solid's volume by uniform sampling of its distance
// field over the bounding box. The estimate converges with the grid
// resolution; tests use it with generous tolerances.
func (k *Kernel) Volume(s kernel.Shape) float64 {
	sh := asShape(s)
	h := sdfOf(sh)
	if h == nil {
		return 0
	}
	b := sh.box
	d := b.Max.Sub(b.Min)
	if d.X <= 0 || d.Y <= 0 || d.Z <= 0 {
		return 0
	}
	step := v3.Vec{X: d.X / volumeGrid, Y: d.Y / volumeGrid, Z: d.Z / volumeGrid}
	cell := step.X * step.Y * step.Z
	inside := 0
	for i := 0; i < volumeGrid; i++ {
		for j := 0; j < volumeGrid; j++ {
			for l := 0; l < volumeGrid; l++ {
				p := v3.Vec{
					X: b.Min.X + (float64(i)+0.5)*step.X,
					Y: b.Min.Y + (float64(j)+0.5)*step.Y,
					Z: b.Min.Z + (float64(l)+0.5)*step.Z,
				}
				if h.Evaluate(p) <= 0 {
					inside++
				}
			}
		}
	}
	return float64(inside) * cell
}
