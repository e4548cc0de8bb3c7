package mycache

import (
	"strconv"
	"time"

	"empiremap/api/model"

	"github.com/dgraph-io/ristretto/v2"
)

const detailCacheTTL = 10 * time.Minute

var EmpireDetailCache *ristretto.Cache[string, *model.EmpireDetail]
var ClaimCache *ristretto.Cache[string, *model.Claim]

func init() {
	empires, err := ristretto.NewCache[string, *model.EmpireDetail](&ristretto.Config[string, *model.EmpireDetail]{
		NumCounters: 10000,
		MaxCost:     8 * 1024 * 1024,
		BufferItems: 64,
	})
	if err != nil {
		panic(err)
	}
	EmpireDetailCache = empires

	claims, err := ristretto.NewCache[string, *model.Claim](&ristretto.Config[string, *model.Claim]{
		NumCounters: 10000,
		MaxCost:     8 * 1024 * 1024,
		BufferItems: 64,
	})
	if err != nil {
		panic(err)
	}
	ClaimCache = claims
}

func idKey(id int64) string { return strconv.FormatInt(id, 10) }

// GetEmpireDetail 读帝国详情缓存，ok 表示命中
func GetEmpireDetail(id int64) (*model.EmpireDetail, bool) {
	EmpireDetailCache.Wait()
	return EmpireDetailCache.Get(idKey(id))
}

// SetEmpireDetail 写入帝国详情，TTL 10 分钟
func SetEmpireDetail(id int64, detail *model.EmpireDetail) {
	if detail == nil {
		return
	}
	EmpireDetailCache.SetWithTTL(idKey(id), detail, 1, detailCacheTTL)
	EmpireDetailCache.Wait()
}

// GetClaim 读 claim 缓存，ok 表示命中
func GetClaim(id int64) (*model.Claim, bool) {
	ClaimCache.Wait()
	return ClaimCache.Get(idKey(id))
}

// SetClaim 写入 claim，TTL 10 分钟
func SetClaim(id int64, claim *model.Claim) {
	if claim == nil {
		return
	}
	ClaimCache.SetWithTTL(idKey(id), claim, 1, detailCacheTTL)
	ClaimCache.Wait()
}
