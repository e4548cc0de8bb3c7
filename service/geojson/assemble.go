package geojson

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"empiremap/api/log"
	"empiremap/api/model"

	"github.com/peterstace/simplefeatures/geom"
)

/* ---------- 顶层组装 ---------- */

// Assemble 管线产物 -> 完整 FeatureCollection：
// 固定 layer 控制 marker + 逐所有者领土 + 争夺领土。
// 签名与 service.AssembleFunc 对齐。
func Assemble(
	merged map[model.OwnerKey]geom.Geometry,
	contested []geom.Polygon,
	colors map[model.OwnerKey]string,
	details map[int64]model.EmpireDetail,
	claims map[int64]model.Claim,
	chunkmap model.ChunkMap,
) model.FeatureCollection {
	features := []model.Feature{LayerControlFeature()}
	features = append(features, AssembleOwnerFeatures(merged, colors, details, claims)...)
	if f, ok := ContestedFeature(contested); ok {
		features = append(features, f)
	}
	return model.NewFeatureCollection(features)
}

/* ---------- 所有者 Feature ---------- */

// AssembleOwnerFeatures 合并后的所有者几何 -> GeoJSON Feature 列表。
// details / claims 可为 nil，对应 popup 行留空。输出按所有者键排序。
func AssembleOwnerFeatures(merged map[model.OwnerKey]geom.Geometry, colors map[model.OwnerKey]string, details map[int64]model.EmpireDetail, claims map[int64]model.Claim) []model.Feature {
	owners := make([]model.OwnerKey, 0, len(merged))
	for k := range merged {
		owners = append(owners, k)
	}
	sort.Slice(owners, func(i, j int) bool { return owners[i].Less(owners[j]) })

	features := make([]model.Feature, 0, len(owners))
	for _, owner := range owners {
		color := colors[owner]
		if color == "" {
			color = model.DefaultEmpireColor
		}
		features = append(features, model.Feature{
			Type: "Feature",
			Properties: model.FeatureProperties{
				PopupText:   ownerPopup(owner, details, claims),
				Color:       color,
				FillColor:   color,
				FillOpacity: model.OwnerFillOpac,
			},
			Geometry: merged[owner],
		})
	}
	return features
}

// ownerPopup 五行 popup：名称 / 空行 / 首都(含 tier) / region / 坐标。
// 没有详情时只剩名称一行。
func ownerPopup(owner model.OwnerKey, details map[int64]model.EmpireDetail, claims map[int64]model.Claim) []string {
	var detail *model.EmpireDetail
	if details != nil {
		if d, ok := details[owner.ID]; ok {
			detail = &d
		}
	}
	if detail == nil {
		return []string{owner.Name}
	}

	popup := []string{owner.Name, "", "", "", ""}

	if detail.CapitalClaimName != "" {
		line := "Capital : " + detail.CapitalClaimName
		if claims != nil && detail.CapitalClaimID.Valid() {
			if claim, ok := claims[detail.CapitalClaimID.Int64()]; ok && claim.Tier != nil {
				line = fmt.Sprintf("Capital : %s (T%d)", detail.CapitalClaimName, *claim.Tier)
			}
		}
		popup[2] = line
	}
	if detail.CapitalRegionID.Valid() {
		popup[3] = fmt.Sprintf("Region : %d", detail.CapitalRegionID.Int64())
	}
	if detail.LocationX != nil && detail.LocationZ != nil {
		// 前端地图以 3 tile 为一格显示
		e := math.Round(*detail.LocationX / 3.0)
		n := math.Round(*detail.LocationZ / 3.0)
		popup[4] = fmt.Sprintf("Location : N %.0f E %.0f", n, e)
	}
	return popup
}

/* ---------- 争夺领土 Feature ---------- */

// ContestedFeature 争夺 chunk 的多边形 union 成单个中性色 Feature。
// ok=false 表示没有争夺领土或 union 失败。
func ContestedFeature(contested []geom.Polygon) (model.Feature, bool) {
	if len(contested) == 0 {
		return model.Feature{}, false
	}
	g := contested[0].AsGeometry()
	for _, p := range contested[1:] {
		next, err := geom.Union(g, p.AsGeometry())
		if err != nil {
			log.Errorf("merge contested polygons error: %v", err)
			return model.Feature{}, false
		}
		g = next
	}
	return model.Feature{
		Type: "Feature",
		Properties: model.FeatureProperties{
			PopupText:   "Contested",
			Color:       model.ContestedColor,
			FillColor:   model.ContestedColor,
			FillOpacity: model.ContestedFillOpac,
		},
		Geometry: g,
	}, true
}

/* ---------- 固定 marker ---------- */

// LayerControlFeature 前端据此关闭干扰图层的固定 Point marker
func LayerControlFeature() model.Feature {
	return model.Feature{
		Type: "Feature",
		Properties: model.FeatureProperties{
			PopupText:    []string{"Empire territory overlay"},
			IconName:     "Hex_Logo",
			TurnLayerOff: []string{"ruinedLayer", "treesLayer", "templesLayer"},
		},
		Geometry: model.PointGeometry{Type: "Point", Coordinates: [2]float64{-5000, -5000}},
	}
}

/* ---------- 未合并的 per-chunk 输出（调试/降级路径） ---------- */

// ChunkFeatures 不做合并，每个 chunk 一个四角多边形 Feature。
// 多所有者显示 Contested 及名单，单所有者用默认色。
func ChunkFeatures(chunkmap model.ChunkMap) []model.Feature {
	var features []model.Feature
	for _, c := range model.SortedChunks(chunkmap) {
		owners := model.SortedOwners(chunkmap[c])
		if len(owners) == 0 {
			continue
		}
		var props model.FeatureProperties
		if len(owners) > 1 {
			names := make([]string, len(owners))
			for i, o := range owners {
				names[i] = o.Name
			}
			sort.Strings(names)
			props = model.FeatureProperties{
				PopupText:   "Contested: " + strings.Join(names, ", "),
				Color:       model.ContestedColor,
				FillColor:   model.ContestedColor,
				FillOpacity: model.ContestedFillOpac,
			}
		} else {
			props = model.FeatureProperties{
				PopupText:   owners[0].Name,
				Color:       model.DefaultEmpireColor,
				FillColor:   model.DefaultEmpireColor,
				FillOpacity: model.OwnerFillOpac,
			}
		}
		features = append(features, model.Feature{
			Type:       "Feature",
			Properties: props,
			Geometry:   chunkGeometry(c),
		})
	}
	return features
}

func chunkGeometry(c model.ChunkCoord) model.PolygonGeometry {
	ring := model.ChunkRing(c)
	coords := make([][]float64, 0, len(ring)/2)
	for i := 0; i+1 < len(ring); i += 2 {
		coords = append(coords, []float64{ring[i], ring[i+1]})
	}
	return model.PolygonGeometry{Type: "Polygon", Coordinates: [][][]float64{coords}}
}
