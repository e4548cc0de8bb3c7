package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"empiremap/api/log"
	"empiremap/api/model"
	"empiremap/api/thirdpart"

	"github.com/peterstace/simplefeatures/geom"
)

// Options 一次生成运行的参数
type Options struct {
	Workers            int
	Throttle           time.Duration
	LimitEmpires       int // 只处理前 N 个帝国，0 不限
	MaxTowersPerEmpire int // 单帝国塔数上限，0 不限
	ForcePairwise      bool
	Verbose            bool
	ColorStorePath     string
	OutputPath         string // 非空时每轮生成后写文件
}

// RunStats 最近一轮生成的统计
type RunStats struct {
	Empires   int       `json:"empires"`
	Chunks    int       `json:"chunks"`
	Owners    int       `json:"owners"`
	Contested int       `json:"contested"`
	Features  int       `json:"features"`
	Duration  float64   `json:"durationSeconds"`
	RanAt     time.Time `json:"ranAt"`
}

// AssembleFunc 把管线产物组装成 FeatureCollection。由上层注入
// （geojson 包），避免 service 反向依赖组装层。
type AssembleFunc func(
	merged map[model.OwnerKey]geom.Geometry,
	contested []geom.Polygon,
	colors map[model.OwnerKey]string,
	details map[int64]model.EmpireDetail,
	claims map[int64]model.Claim,
	chunkmap model.ChunkMap,
) model.FeatureCollection

// Generator 拉取 -> 聚合 -> 着色 -> 组装的编排器。持有最近一次的
// FeatureCollection 供 HTTP 端直接读取。
type Generator struct {
	client *thirdpart.BitJitaClient
	opts   Options

	mu    sync.RWMutex
	last  *model.FeatureCollection
	stats RunStats
}

func NewGenerator(client *thirdpart.BitJitaClient, opts Options) *Generator {
	return &Generator{client: client, opts: opts}
}

// Current 最近一次生成的结果。ok=false 表示还没有完成过一轮。
func (g *Generator) Current() (*model.FeatureCollection, RunStats, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.last, g.stats, g.last != nil
}

// Run 执行一轮完整生成。中断时仍输出已有的部分结果。
func (g *Generator) Run(ctx context.Context, assemble AssembleFunc) (*model.FeatureCollection, error) {
	start := time.Now()

	log.Info("fetching empires...")
	empires := g.client.FetchEmpires(ctx)
	log.Infof("fetched empires: %d", len(empires))

	owners := make([]model.OwnerKey, 0, len(empires))
	for _, e := range empires {
		if g.opts.LimitEmpires > 0 && len(owners) >= g.opts.LimitEmpires {
			break
		}
		if !e.EntityID.Valid() {
			continue
		}
		name := e.Name
		if name == "" {
			name = fmt.Sprintf("empire-%d", e.EntityID.Int64())
		}
		owners = append(owners, model.OwnerKey{ID: e.EntityID.Int64(), Name: name})
	}
	log.Infof("processing %d empires with %d workers", len(owners), g.opts.Workers)

	builder := &ChunkMapBuilder{
		Client:             g.client,
		Workers:            g.opts.Workers,
		Throttle:           g.opts.Throttle,
		MaxTowersPerEmpire: g.opts.MaxTowersPerEmpire,
		Verbose:            g.opts.Verbose,
	}
	chunkmap := builder.Build(ctx, owners)
	log.Infof("chunk map built: %d chunks", len(chunkmap))

	details := FetchEmpireDetails(ctx, g.client, chunkmap, g.opts.Throttle)
	claims := PrefetchClaims(ctx, g.client, details, g.opts.Throttle)

	ownerPolys, contested := BuildOwnerAndContestedPolys(chunkmap)
	merged := MergeOwnerGeometries(ownerPolys)
	adjacency := BuildAdjacency(merged, g.opts.ForcePairwise)
	colors, _ := AssignColors(adjacency, model.ColorPalette, g.opts.Verbose, g.opts.ColorStorePath)

	fc := assemble(merged, contested, colors, details, claims, chunkmap)

	stats := RunStats{
		Empires:   len(owners),
		Chunks:    len(chunkmap),
		Owners:    len(merged),
		Contested: len(contested),
		Features:  len(fc.Features),
		Duration:  time.Since(start).Seconds(),
		RanAt:     time.Now(),
	}
	g.mu.Lock()
	g.last = &fc
	g.stats = stats
	g.mu.Unlock()

	if g.opts.OutputPath != "" {
		if err := WriteFeatureCollection(g.opts.OutputPath, fc); err != nil {
			log.Errorf("write output %s error: %v", g.opts.OutputPath, err)
		} else {
			log.Infof("wrote %d features to %s", len(fc.Features), g.opts.OutputPath)
		}
	}
	log.Infof("generation finished in %.2fs", stats.Duration)
	return &fc, nil
}

// Loop 按间隔循环生成，ctx 取消即退出（teacher 的 scanner 常驻循环式）。
func (g *Generator) Loop(ctx context.Context, interval time.Duration, assemble AssembleFunc) {
	for {
		if _, err := g.Run(ctx, assemble); err != nil {
			log.Error("generation run error: ", err)
		}
		select {
		case <-ctx.Done():
			log.Info("generator loop stopped")
			return
		case <-time.After(interval):
		}
	}
}

// WriteFeatureCollection GeoJSON 落盘（带缩进，方便 diff）
func WriteFeatureCollection(path string, fc model.FeatureCollection) error {
	raw, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal feature collection: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
