package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// 色彩存储：entityId 为顶层键的 YAML 映射，例如
//
//	40:
//	  name: The Ottoadman Empire
//	  color: '#AAFF00ff'
//
// 这是唯一跨运行存活的状态，保证同一帝国的地图颜色稳定。

// ColorEntry 单个帝国的持久化条目
type ColorEntry struct {
	Name  string `yaml:"name"`
	Color string `yaml:"color"`
}

// ColorStore entityId -> 条目
type ColorStore map[int64]ColorEntry

// NormalizeColor 读写统一保证颜色串带 '#' 前缀；空串原样返回
func NormalizeColor(color string) string {
	if color == "" {
		return ""
	}
	if strings.HasPrefix(color, "#") {
		return color
	}
	return "#" + color
}

// LoadColorStore 读取色彩存储。文件不存在返回空 store（nil error）；
// 解析失败返回错误，调用方可按空 store 继续。
func LoadColorStore(path string) (ColorStore, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ColorStore{}, nil
		}
		return ColorStore{}, fmt.Errorf("read color store: %w", err)
	}
	var loaded map[int64]ColorEntry
	if err := yaml.Unmarshal(raw, &loaded); err != nil {
		return ColorStore{}, fmt.Errorf("parse color store: %w", err)
	}
	out := make(ColorStore, len(loaded))
	for id, entry := range loaded {
		entry.Color = NormalizeColor(entry.Color)
		out[id] = entry
	}
	return out, nil
}

// SaveColorStore 写回色彩存储，父目录不存在时自动创建。
func SaveColorStore(path string, store ColorStore) error {
	dumpable := make(map[int64]ColorEntry, len(store))
	for id, entry := range store {
		entry.Color = NormalizeColor(entry.Color)
		dumpable[id] = entry
	}
	raw, err := yaml.Marshal(dumpable)
	if err != nil {
		return fmt.Errorf("marshal color store: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create color store dir: %w", err)
		}
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write color store: %w", err)
	}
	return nil
}
