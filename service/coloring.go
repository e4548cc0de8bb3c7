package service

import (
	"sort"

	"empiremap/api/log"
	"empiremap/api/model"
)

// 贪婪图着色 + 持久化色彩存储。
//
// 已入库的颜色无条件复用（即使与新邻居撞色），保证跨运行的视觉稳定；
// 代价是不回头重排旧分配。新所有者按邻接度降序优先挑色，
// 调色板被邻居用尽时退化为 id 取模的确定性颜色。

// AssignColors 按邻接图着色。storePath 为空则不持久化。
// 返回每个所有者的颜色和 store 是否发生变更。
func AssignColors(adjacency AdjacencyGraph, palette []string, verbose bool, storePath string) (map[model.OwnerKey]string, bool) {
	store := ColorStore{}
	if storePath != "" {
		loaded, err := LoadColorStore(storePath)
		if err != nil {
			log.Errorf("load color store %s error: %v; continuing with empty store", storePath, err)
		} else {
			store = loaded
			log.Infof("loaded color store from %s (%d entries)", storePath, len(store))
		}
	}

	assigned, updated := assignColors(adjacency, palette, store, verbose)

	if storePath != "" && updated {
		if err := SaveColorStore(storePath, store); err != nil {
			log.Errorf("save color store %s error: %v", storePath, err)
		} else {
			log.Infof("updated color store %s (%d entries)", storePath, len(store))
		}
	}
	return assigned, updated
}

// assignColors 核心逻辑，直接操作传入的 store（便于测试持久化语义）。
func assignColors(adjacency AdjacencyGraph, palette []string, store ColorStore, verbose bool) (map[model.OwnerKey]string, bool) {
	// 邻接度降序，同度按所有者键升序保证确定性
	owners := make([]model.OwnerKey, 0, len(adjacency))
	for k := range adjacency {
		owners = append(owners, k)
	}
	sort.Slice(owners, func(i, j int) bool {
		di, dj := adjacency.Degree(owners[i]), adjacency.Degree(owners[j])
		if di != dj {
			return di > dj
		}
		return owners[i].Less(owners[j])
	})

	assigned := make(map[model.OwnerKey]string, len(owners))
	updated := false

	for _, owner := range owners {
		if entry, ok := store[owner.ID]; ok && entry.Color != "" {
			// 入库颜色原样复用，不碰调色板；展示名变了就刷新
			assigned[owner] = NormalizeColor(entry.Color)
			if entry.Name != owner.Name {
				entry.Name = owner.Name
				store[owner.ID] = entry
				updated = true
			}
			if verbose {
				log.Debugf("using stored color for empire %d (%s): %s", owner.ID, owner.Name, assigned[owner])
			}
			continue
		}

		// 已着色邻居占用的颜色
		used := make(map[string]struct{})
		for neighbor := range adjacency[owner] {
			if c, ok := assigned[neighbor]; ok {
				used[c] = struct{}{}
			}
		}

		color := ""
		for _, c := range palette {
			if _, taken := used[c]; !taken {
				color = c
				break
			}
		}
		if color == "" {
			// 调色板被邻居用尽：退化为 id 取模的确定性颜色
			idx := owner.ID % int64(len(palette))
			if idx < 0 {
				idx += int64(len(palette))
			}
			color = palette[idx]
		}

		assigned[owner] = color
		store[owner.ID] = ColorEntry{Name: owner.Name, Color: color}
		updated = true
		if verbose {
			log.Debugf("assigned new color for empire %d (%s): %s", owner.ID, owner.Name, color)
		}
	}
	return assigned, updated
}
