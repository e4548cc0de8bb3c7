package service

import (
	"context"
	"sort"
	"time"

	mycache "empiremap/api/cache"
	"empiremap/api/log"
	"empiremap/api/model"
	"empiremap/api/thirdpart"
)

// popup 富化：领土所有者的帝国详情，加上首都 claim 的 tier。
// 全部软失败：拿不到的条目直接缺席，不影响地图生成。

const claimPrefetchPages = 3

// FetchEmpireDetails 逐个拉取 chunkmap 中出现过的帝国详情（带缓存与节流）。
func FetchEmpireDetails(ctx context.Context, client *thirdpart.BitJitaClient, chunkmap model.ChunkMap, throttle time.Duration) map[int64]model.EmpireDetail {
	ids := chunkmap.OwnerIDs()
	details := make(map[int64]model.EmpireDetail, len(ids))
	if len(ids) == 0 {
		return details
	}
	log.Infof("fetching details for %d owning empires", len(ids))

	success, failed := 0, 0
	for idx, id := range ids {
		select {
		case <-ctx.Done():
			log.Warn("empire detail fetch interrupted")
			return details
		default:
		}

		if cached, ok := mycache.GetEmpireDetail(id); ok {
			details[id] = *cached
			success++
			continue
		}

		log.Debugf("fetching empire details (%d/%d): %d", idx+1, len(ids), id)
		detail, ok := client.FetchEmpire(ctx, id)
		if !ok {
			log.Infof("no details returned for empire %d", id)
			failed++
		} else {
			details[id] = detail
			mycache.SetEmpireDetail(id, &detail)
			success++
		}
		if throttle > 0 {
			time.Sleep(throttle)
		}
	}
	log.Infof("finished fetching empire details: success=%d, failed=%d", success, failed)
	return details
}

// PrefetchClaims 先按 tier 排序批量预取 claim 页，减少逐个查询；
// 预取没覆盖到的 capitalClaimId 再单独补拉。
func PrefetchClaims(ctx context.Context, client *thirdpart.BitJitaClient, details map[int64]model.EmpireDetail, throttle time.Duration) map[int64]model.Claim {
	claims := make(map[int64]model.Claim)

	log.Debug("prefetching top-tier claims pages")
	fetched := 0
	for page := 1; page <= claimPrefetchPages; page++ {
		select {
		case <-ctx.Done():
			return claims
		default:
		}
		for _, claim := range client.FetchClaimsPage(ctx, "tier", 100, page) {
			if !claim.EntityID.Valid() {
				continue
			}
			c := claim
			claims[claim.EntityID.Int64()] = c
			mycache.SetClaim(claim.EntityID.Int64(), &c)
			fetched++
		}
		if throttle > 0 {
			time.Sleep(throttle)
		}
	}
	log.Debugf("prefetched %d claims from top-tier pages", fetched)

	// 需要但预取没命中的首都 claim
	var remaining []int64
	for _, detail := range details {
		if !detail.CapitalClaimID.Valid() {
			continue
		}
		id := detail.CapitalClaimID.Int64()
		if _, ok := claims[id]; ok {
			continue
		}
		if cached, ok := mycache.GetClaim(id); ok {
			claims[id] = *cached
			continue
		}
		remaining = append(remaining, id)
	}
	sort.Slice(remaining, func(i, j int) bool { return remaining[i] < remaining[j] })

	if len(remaining) > 0 {
		log.Debugf("fetching %d individual claims not covered by prefetch", len(remaining))
		for idx, id := range remaining {
			select {
			case <-ctx.Done():
				return claims
			default:
			}
			log.Debugf("fetching claim (%d/%d): %d", idx+1, len(remaining), id)
			claim, ok := client.FetchClaim(ctx, id)
			if ok {
				claims[id] = claim
				mycache.SetClaim(id, &claim)
			}
			if throttle > 0 {
				time.Sleep(throttle)
			}
		}
	}
	log.Debugf("claims map now has %d entries", len(claims))
	return claims
}
