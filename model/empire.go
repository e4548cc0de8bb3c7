package model

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// FlexID BitJita 的 entityId 有时是 JSON number，有时是字符串，统一成 int64。
// 解析失败（空串、null、非数字）时值为 0，Valid 返回 false。
type FlexID int64

func (f FlexID) Valid() bool  { return f != 0 }
func (f FlexID) Int64() int64 { return int64(f) }

func (f FlexID) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(int64(f), 10)), nil
}

func (f *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*f = 0
			return nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = FlexID(n)
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		// 可能是浮点写法
		var fv float64
		if err := json.Unmarshal(data, &fv); err != nil {
			*f = 0
			return nil
		}
		*f = FlexID(int64(fv))
		return nil
	}
	*f = FlexID(n)
	return nil
}

// Empire /api/empires 列表条目
type Empire struct {
	EntityID FlexID `json:"entityId"`
	Name     string `json:"name"`
}

// Tower /api/empires/{id}/towers 条目。active 缺省按 true 处理，
// 坐标缺失或越界的塔在上游被过滤。
type Tower struct {
	Active    *bool    `json:"active"`
	LocationX *float64 `json:"locationX"`
	LocationZ *float64 `json:"locationZ"`
}

// IsActive active 字段缺省视为 true
func (t Tower) IsActive() bool {
	return t.Active == nil || *t.Active
}

// EmpireDetail /api/empires/{id} 详情（popup 富化用）
type EmpireDetail struct {
	EntityID         FlexID   `json:"entityId"`
	Name             string   `json:"name"`
	CapitalClaimID   FlexID   `json:"capitalClaimId"`
	CapitalClaimName string   `json:"capitalClaimName"`
	CapitalRegionID  FlexID   `json:"capitalRegionId"`
	LocationX        *float64 `json:"locationX"`
	LocationZ        *float64 `json:"locationZ"`
}

// Claim /api/claims/{id} 或 /api/claims 列表条目
type Claim struct {
	EntityID FlexID `json:"entityId"`
	Name     string `json:"name"`
	Tier     *int   `json:"tier"`
	RegionID FlexID `json:"regionId"`
}
