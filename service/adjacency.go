package service

import (
	"sort"

	"empiremap/api/log"
	"empiremap/api/model"

	"github.com/peterstace/simplefeatures/geom"
	"github.com/peterstace/simplefeatures/rtree"
)

// 所有者数量超过该阈值时改用空间索引做候选过滤
const pairwiseThreshold = 50

// AdjacencyGraph 所有者 -> 相邻所有者集合。对称：a 在 b 的邻接集里
// 当且仅当 b 也在 a 的里。
type AdjacencyGraph map[model.OwnerKey]map[model.OwnerKey]struct{}

func (g AdjacencyGraph) addEdge(a, b model.OwnerKey) {
	if g[a] == nil {
		g[a] = make(map[model.OwnerKey]struct{})
	}
	if g[b] == nil {
		g[b] = make(map[model.OwnerKey]struct{})
	}
	g[a][b] = struct{}{}
	g[b][a] = struct{}{}
}

// Degree 邻接度
func (g AdjacencyGraph) Degree(k model.OwnerKey) int { return len(g[k]) }

// BuildAdjacency 在合并后的所有者几何上构建邻接图。
// 判定准则：两几何 intersects（含仅共享边界的 touches）。自环排除。
// 小规模或 forcePairwise 时走 O(n^2) 逐对；大规模用 RTree 查候选，
// 两种模式的边集一致（浮点边界情况除外）。
func BuildAdjacency(merged map[model.OwnerKey]geom.Geometry, forcePairwise bool) AdjacencyGraph {
	adjacency := make(AdjacencyGraph, len(merged))
	owners := make([]model.OwnerKey, 0, len(merged))
	for k := range merged {
		owners = append(owners, k)
		// 孤立所有者也要出现在图里（度为 0）
		if adjacency[k] == nil {
			adjacency[k] = make(map[model.OwnerKey]struct{})
		}
	}
	sort.Slice(owners, func(i, j int) bool { return owners[i].Less(owners[j]) })

	if forcePairwise || len(owners) <= pairwiseThreshold {
		buildPairwise(adjacency, owners, merged)
		return adjacency
	}
	buildWithIndex(adjacency, owners, merged)
	return adjacency
}

func buildPairwise(adjacency AdjacencyGraph, owners []model.OwnerKey, merged map[model.OwnerKey]geom.Geometry) {
	for i := 0; i < len(owners); i++ {
		for j := i + 1; j < len(owners); j++ {
			if geom.Intersects(merged[owners[i]], merged[owners[j]]) {
				adjacency.addEdge(owners[i], owners[j])
			}
		}
	}
}

// buildWithIndex RTree 版本：先按包围盒查候选，再做精确判定。
// 索引命中是下标（RecordID），由 owners 切片映射回所有者。
func buildWithIndex(adjacency AdjacencyGraph, owners []model.OwnerKey, merged map[model.OwnerKey]geom.Geometry) {
	items := make([]rtree.BulkItem, 0, len(owners))
	boxes := make([]rtree.Box, len(owners))
	present := make([]bool, len(owners))
	for i, k := range owners {
		mn, mx, ok := merged[k].Envelope().MinMaxXYs()
		if !ok {
			continue
		}
		boxes[i] = rtree.Box{MinX: mn.X, MinY: mn.Y, MaxX: mx.X, MaxY: mx.Y}
		present[i] = true
		items = append(items, rtree.BulkItem{Box: boxes[i], RecordID: i})
	}
	tree := rtree.BulkLoad(items)

	for i := range owners {
		if !present[i] {
			continue
		}
		err := tree.RangeSearch(boxes[i], func(recordID int) error {
			j := recordID
			if j <= i { // 每个无序对只判一次
				return nil
			}
			if geom.Intersects(merged[owners[i]], merged[owners[j]]) {
				adjacency.addEdge(owners[i], owners[j])
			}
			return nil
		})
		if err != nil {
			// 单个查询失败视作无边，不中断整体构建
			log.Errorf("rtree query for empire %d error: %v", owners[i].ID, err)
		}
	}
}
