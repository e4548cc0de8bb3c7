package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"empiremap/api/log"
	"empiremap/api/model"
	"empiremap/api/thirdpart"
)

// ChunkMapBuilder 并行拉取各帝国的瞭望塔并汇总成 chunk 所有权图。
// 塔的过滤规则：active（缺省 true）、两轴坐标 0 < v <= 23040，
// 坐标截断为整数后换算 chunk，每塔占有 5x5 chunk。
type ChunkMapBuilder struct {
	Client             *thirdpart.BitJitaClient
	Workers            int           // 并发拉取的 worker 数
	Throttle           time.Duration // 每收取一个结果后的节流等待
	MaxTowersPerEmpire int           // 单帝国塔数上限，0 不限
	Verbose            bool
}

type empireResult struct {
	owner         model.OwnerKey
	chunks        []model.ChunkCoord
	towersHandled int
}

// Build 按固定 worker 池取塔，全部结果回收后在单线程内合并。
// 共享的 chunkmap 只有编排方写，worker 只产出本地结果，不需要锁。
// 单个帝国拉取失败不影响其他帝国。ctx 中断时返回已收到的部分结果。
func (b *ChunkMapBuilder) Build(ctx context.Context, empires []model.OwnerKey) model.ChunkMap {
	chunkmap := make(model.ChunkMap)
	if len(empires) == 0 {
		return chunkmap
	}

	workers := b.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(empires) {
		workers = len(empires)
	}

	tasks := make(chan model.OwnerKey, len(empires))
	// 带缓冲：收集方提前退出时 worker 不会卡在发送上
	results := make(chan empireResult, len(empires))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for owner := range tasks {
				results <- b.fetchEmpire(ctx, owner)
			}
		}()
	}
	for _, e := range empires {
		tasks <- e
	}
	close(tasks)
	go func() {
		wg.Wait()
		close(results)
	}()

	// 回收：每取到一个结果节流一次，独立于池内并发控制总吞吐
	collected := make([]empireResult, 0, len(empires))
collect:
	for range empires {
		select {
		case res, ok := <-results:
			if !ok {
				break collect
			}
			collected = append(collected, res)
			if b.Throttle > 0 {
				time.Sleep(b.Throttle)
			}
		case <-ctx.Done():
			log.Warn("chunk map build interrupted, emitting partial results")
			break collect
		}
	}

	// 单线程合并，固定顺序保证确定性
	sortResults(collected)
	for _, res := range collected {
		for _, c := range dedupSortedChunks(res.chunks) {
			chunkmap.Add(c, res.owner)
		}
		if b.Verbose {
			log.Debugf("processed empire %d (%s), towers handled: %d", res.owner.ID, res.owner.Name, res.towersHandled)
		}
	}
	return chunkmap
}

// fetchEmpire 单帝国任务：取塔、过滤、展开 5x5 占有块。
// 失败软处理为空塔列表。
func (b *ChunkMapBuilder) fetchEmpire(ctx context.Context, owner model.OwnerKey) empireResult {
	if b.Verbose {
		log.Debugf("fetching towers for empire %d (%s)", owner.ID, owner.Name)
	}
	start := time.Now()
	towers := b.Client.FetchTowers(ctx, owner.ID)
	if b.Verbose {
		log.Debugf("fetched %d towers for %d in %.2fs", len(towers), owner.ID, time.Since(start).Seconds())
	}

	res := empireResult{owner: owner}
	for _, tower := range towers {
		if b.MaxTowersPerEmpire > 0 && res.towersHandled >= b.MaxTowersPerEmpire {
			break
		}
		if !tower.IsActive() {
			continue
		}
		if tower.LocationX == nil || tower.LocationZ == nil {
			continue
		}
		x, z := *tower.LocationX, *tower.LocationZ
		if x <= 0 || z <= 0 || x > model.MaxTileCoord || z > model.MaxTileCoord {
			continue
		}
		res.chunks = append(res.chunks, model.TowerCoveredChunks(int(x), int(z))...)
		res.towersHandled++
	}
	return res
}

func sortResults(results []empireResult) {
	sort.Slice(results, func(i, j int) bool { return results[i].owner.Less(results[j].owner) })
}

// dedupSortedChunks 去重并排序，保证合并顺序可复现
func dedupSortedChunks(chunks []model.ChunkCoord) []model.ChunkCoord {
	set := make(map[model.ChunkCoord]struct{}, len(chunks))
	for _, c := range chunks {
		set[c] = struct{}{}
	}
	out := make([]model.ChunkCoord, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}
