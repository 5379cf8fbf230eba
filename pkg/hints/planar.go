package hints

import (
	"math"
	"sort"

	"github.com/samber/lo"

	"github.com/chazu/meshstep/pkg/geom"
	"github.com/chazu/meshstep/pkg/kernel"
)

// coplanarCos is the minimum normal dot product for two adjacent faces to
// join the same cluster.
const coplanarCos = 1 - 1e-6

type edgeKey struct{ lo, hi int }

func makeEdgeKey(a, b int) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

// ExtractPlanar clusters edge-adjacent faces with coincident normals and
// reports every cluster covering at least minAreaFraction of the total area,
// largest first. Clusters of equal area keep discovery order (lowest face
// index first).
func ExtractPlanar(m *kernel.Mesh, minAreaFraction float64) []PlanarHint {
	if !usable(m) {
		return nil
	}
	faces := computeFaces(m)
	total := lo.SumBy(faces, func(f faceData) float64 { return f.area })
	if total <= 0 {
		return nil
	}

	var hints []PlanarHint
	for _, cluster := range clusterFaces(m, faces) {
		area := lo.SumBy(cluster, func(fi int) float64 { return faces[fi].area })
		if area/total < minAreaFraction {
			continue
		}
		hints = append(hints, describeCluster(m, faces, cluster, area))
	}

	sort.SliceStable(hints, func(i, j int) bool {
		return hints[i].Area > hints[j].Area
	})
	return hints
}

// clusterFaces partitions the usable faces into connected groups of
// edge-adjacent faces whose normals coincide with the group's seed, its
// lowest face index. Comparing against the seed rather than the neighbour
// keeps gently curved surfaces from chaining into one plane. Groups are
// returned in seed order, members in breadth-first order from the seed.
func clusterFaces(m *kernel.Mesh, faces []faceData) [][]int {
	adjacency := make(map[edgeKey][]int, len(m.Faces)*3/2)
	for fi, f := range m.Faces {
		if !faces[fi].ok {
			continue
		}
		for j := 0; j < 3; j++ {
			k := makeEdgeKey(f[j], f[(j+1)%3])
			adjacency[k] = append(adjacency[k], fi)
		}
	}

	visited := make([]bool, len(m.Faces))
	var clusters [][]int

	for seed := range m.Faces {
		if visited[seed] || !faces[seed].ok {
			continue
		}
		visited[seed] = true
		ref := faces[seed].normal
		cluster := []int{seed}
		for q := 0; q < len(cluster); q++ {
			cur := cluster[q]
			f := m.Faces[cur]
			for j := 0; j < 3; j++ {
				for _, nb := range adjacency[makeEdgeKey(f[j], f[(j+1)%3])] {
					if visited[nb] || faces[nb].normal.Dot(ref) < coplanarCos {
						continue
					}
					visited[nb] = true
					cluster = append(cluster, nb)
				}
			}
		}
		clusters = append(clusters, cluster)
	}
	return clusters
}

// describeCluster fits a bounding rectangle in the cluster's plane.
func describeCluster(m *kernel.Mesh, faces []faceData, cluster []int, area float64) PlanarHint {
	normal := faces[cluster[0]].normal

	indices := lo.Uniq(lo.FlatMap(cluster, func(fi int, _ int) []int {
		f := m.Faces[fi]
		return f[:]
	}))
	points := lo.Map(indices, func(vi int, _ int) geom.Vec3 { return m.Vertices[vi] })

	xAxis, yAxis := geom.Basis(normal)

	centroid := lo.Reduce(points, func(acc geom.Vec3, p geom.Vec3, _ int) geom.Vec3 {
		return acc.Add(p)
	}, geom.Zero).Scale(1 / float64(len(points)))

	minU, maxU := math.Inf(1), math.Inf(-1)
	minV, maxV := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		d := p.Sub(centroid)
		u, v := d.Dot(xAxis), d.Dot(yAxis)
		minU, maxU = math.Min(minU, u), math.Max(maxU, u)
		minV, maxV = math.Min(minV, v), math.Max(maxV, v)
	}

	uc, vc := (minU+maxU)/2, (minV+maxV)/2
	return PlanarHint{
		Normal:    normal,
		Area:      area,
		Center:    centroid.Add(xAxis.Scale(uc)).Add(yAxis.Scale(vc)),
		Width:     maxU - minU,
		Height:    maxV - minV,
		XAxis:     xAxis,
		YAxis:     yAxis,
		FaceCount: len(cluster),
	}
}
