package model

import "sort"

// 地图常量：SmallHexTile 坐标系与 chunk 网格
const (
	ChunkTileSize = 96    // 每个 chunk 的边长（tile 单位）
	MaxTileCoord  = 23040 // 世界边界（含），坐标必须满足 0 < v <= MaxTileCoord
	TowerRadius   = 2     // 瞭望塔占有半径（chunk 单位），即 5x5
)

// OwnerKey 领土归属单位：帝国 entityId + 展示名。
// 身份以 ID 为准，Name 仅用于展示，可能跨运行被刷新。
type OwnerKey struct {
	ID   int64
	Name string
}

// Less 提供确定性的排序（先按 ID，再按 Name）
func (k OwnerKey) Less(o OwnerKey) bool {
	if k.ID != o.ID {
		return k.ID < o.ID
	}
	return k.Name < o.Name
}

// ChunkCoord chunk 网格坐标
type ChunkCoord struct {
	X int
	Y int
}

func (c ChunkCoord) Less(o ChunkCoord) bool {
	if c.X != o.X {
		return c.X < o.X
	}
	return c.Y < o.Y
}

// OwnerSet chunk 的所有者集合
type OwnerSet map[OwnerKey]struct{}

// ChunkMap chunk -> 所有者集合。不存在的 chunk 表示无主；
// 集合大小 >= 2 表示争夺中（contested）。
type ChunkMap map[ChunkCoord]OwnerSet

// Add 把 owner 加入 chunk 的所有者集合
func (m ChunkMap) Add(c ChunkCoord, owner OwnerKey) {
	set, ok := m[c]
	if !ok {
		set = make(OwnerSet)
		m[c] = set
	}
	set[owner] = struct{}{}
}

// OwnerIDs 返回 chunkmap 中出现过的全部帝国 ID（升序）
func (m ChunkMap) OwnerIDs() []int64 {
	seen := make(map[int64]struct{})
	for _, owners := range m {
		for k := range owners {
			seen[k.ID] = struct{}{}
		}
	}
	ids := make([]int64, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// TileToChunk SmallHexTile 坐标 -> chunk 坐标（向下取整）
func TileToChunk(tileX, tileY int) ChunkCoord {
	return ChunkCoord{X: floorDiv(tileX, ChunkTileSize), Y: floorDiv(tileY, ChunkTileSize)}
}

// floorDiv 负坐标也按 floor 语义取整（chunkmap 理论上允许负 chunk）
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// ChunkRing 返回 chunk 四角的闭合环坐标（固定环绕顺序，首尾相同），
// 可直接作为多边形外环使用。
func ChunkRing(c ChunkCoord) []float64 {
	x0 := float64(c.X * ChunkTileSize)
	y0 := float64(c.Y * ChunkTileSize)
	x1 := float64((c.X + 1) * ChunkTileSize)
	y1 := float64((c.Y + 1) * ChunkTileSize)
	return []float64{x0, y0, x1, y0, x1, y1, x0, y1, x0, y0}
}

// TowerCoveredChunks 瞭望塔占有的 chunk 列表：以塔所在 chunk 为中心，
// 两轴偏移 -TowerRadius..+TowerRadius（5x5 = 25 个）。
func TowerCoveredChunks(tileX, tileY int) []ChunkCoord {
	center := TileToChunk(tileX, tileY)
	out := make([]ChunkCoord, 0, (2*TowerRadius+1)*(2*TowerRadius+1))
	for dx := -TowerRadius; dx <= TowerRadius; dx++ {
		for dy := -TowerRadius; dy <= TowerRadius; dy++ {
			out = append(out, ChunkCoord{X: center.X + dx, Y: center.Y + dy})
		}
	}
	return out
}

// SortedOwners 所有者集合的确定性序
func SortedOwners(set OwnerSet) []OwnerKey {
	out := make([]OwnerKey, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// SortedChunks chunkmap 键的确定性序
func SortedChunks(m ChunkMap) []ChunkCoord {
	out := make([]ChunkCoord, 0, len(m))
	for c := range m {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}
