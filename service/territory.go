package service

import (
	"fmt"
	"time"

	"empiremap/api/log"
	"empiremap/api/model"

	"github.com/peterstace/simplefeatures/geom"
)

// ---------- chunk 分类 ----------

// BuildOwnerAndContestedPolys 把 chunkmap 分类为：
//   - 每个独占所有者的 chunk 多边形列表
//   - 争夺中（>=2 个所有者）的 chunk 多边形列表
//
// 无主 chunk 被跳过；构造失败的多边形按记录跳过，不中断。
func BuildOwnerAndContestedPolys(chunkmap model.ChunkMap) (map[model.OwnerKey][]geom.Polygon, []geom.Polygon) {
	ownerPolys := make(map[model.OwnerKey][]geom.Polygon)
	var contested []geom.Polygon

	for _, c := range model.SortedChunks(chunkmap) {
		owners := chunkmap[c]
		if len(owners) == 0 {
			continue
		}
		poly, err := ChunkPolygon(c)
		if err != nil {
			log.Errorf("chunk polygon (%d,%d) error: %v", c.X, c.Y, err)
			continue
		}
		if len(owners) == 1 {
			owner := model.SortedOwners(owners)[0]
			ownerPolys[owner] = append(ownerPolys[owner], poly)
		} else {
			contested = append(contested, poly)
		}
	}
	return ownerPolys, contested
}

// ChunkPolygon chunk 的四角闭合环 -> 多边形
func ChunkPolygon(c model.ChunkCoord) (geom.Polygon, error) {
	seq := geom.NewSequence(model.ChunkRing(c), geom.DimXY)
	ring := geom.NewLineString(seq)
	poly := geom.NewPolygon([]geom.LineString{ring})
	if err := poly.Validate(); err != nil {
		return geom.Polygon{}, fmt.Errorf("validate: %w", err)
	}
	return poly, nil
}

// ---------- 所有者几何合并 ----------

// MergeOwnerGeometries 对每个所有者做多边形 union。union 失败的所有者
// 记日志后丢弃（该所有者本轮没有领土输出），不中断整体。
func MergeOwnerGeometries(ownerPolys map[model.OwnerKey][]geom.Polygon) map[model.OwnerKey]geom.Geometry {
	merged := make(map[model.OwnerKey]geom.Geometry, len(ownerPolys))
	start := time.Now()
	for owner, polys := range ownerPolys {
		g, err := UnionPolygons(polys)
		if err != nil {
			log.Errorf("merge polygons for empire %d (%s) error: %v", owner.ID, owner.Name, err)
			continue
		}
		merged[owner] = g
	}
	log.Infof("merged owner polygons: %d owners (took %.2fs)", len(merged), time.Since(start).Seconds())
	return merged
}

// UnionPolygons 多边形集合的 union（逐个折叠）
func UnionPolygons(polys []geom.Polygon) (geom.Geometry, error) {
	if len(polys) == 0 {
		return geom.Geometry{}, fmt.Errorf("empty polygon list")
	}
	out := polys[0].AsGeometry()
	for _, p := range polys[1:] {
		var err error
		out, err = geom.Union(out, p.AsGeometry())
		if err != nil {
			return geom.Geometry{}, fmt.Errorf("union: %w", err)
		}
	}
	return out, nil
}
