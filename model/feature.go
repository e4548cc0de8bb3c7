package model

// 颜色相关常量。调色板 6 色，用尽时退化为 id 取模。
var ColorPalette = []string{
	"#963333ff",
	"#206320ff",
	"#2c5885ff",
	"#746027ff",
	"#7038a8ff",
	"#1f5e5eff",
}

const (
	DefaultEmpireColor = "#FF5500ff"
	ContestedColor     = "#2d2d2d"
	ContestedFillOpac  = 0.5
	OwnerFillOpac      = 0.4
)

// FeatureProperties 前端地图图层消费的属性集合。
// popupText 可能是单个字符串，也可能是多行 []string。
type FeatureProperties struct {
	PopupText    any      `json:"popupText,omitempty"`
	IconName     string   `json:"iconName,omitempty"`
	TurnLayerOff []string `json:"turnLayerOff,omitempty"`
	Color        string   `json:"color,omitempty"`
	FillColor    string   `json:"fillColor,omitempty"`
	FillOpacity  float64  `json:"fillOpacity,omitempty"`
}

// Feature GeoJSON Feature。Geometry 可以是 simplefeatures 的 geom.Geometry
// （自身即按 GeoJSON 序列化）或手工构造的 Point/Polygon 结构。
type Feature struct {
	Type       string            `json:"type"`
	Properties FeatureProperties `json:"properties"`
	Geometry   any               `json:"geometry"`
}

// FeatureCollection GeoJSON 顶层结构
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// PointGeometry 固定点位（layer 控制 marker 用）
type PointGeometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// PolygonGeometry 手工构造的多边形（未合并的 per-chunk 输出路径用）
type PolygonGeometry struct {
	Type        string        `json:"type"`
	Coordinates [][][]float64 `json:"coordinates"`
}

// NewFeatureCollection 组装顶层 FeatureCollection
func NewFeatureCollection(features []Feature) FeatureCollection {
	return FeatureCollection{Type: "FeatureCollection", Features: features}
}
