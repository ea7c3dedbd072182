package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"sudooom.boba/internal/engine"
)

// distributionFile 卡牌配比文件格式
//
//	cards:
//	  tapioca_pearl: 14
//	  mochi_ice_cream: 8
type distributionFile struct {
	Cards map[string]int `yaml:"cards"`
}

// LoadDistribution 读取自定义卡牌配比，path 为空时返回 nil（使用默认配比）
func LoadDistribution(path string) (engine.Cards, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read distribution: %w", err)
	}
	return ParseDistribution(data)
}

// ParseDistribution 解析 yaml 配比，卡牌可以写编码或显示名称
func ParseDistribution(data []byte) (engine.Cards, error) {
	var file distributionFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse distribution: %w", err)
	}
	if len(file.Cards) == 0 {
		return nil, fmt.Errorf("distribution has no cards")
	}

	cards := make(engine.Cards, len(file.Cards))
	for name, count := range file.Cards {
		kind, err := engine.ParseCardKind(name)
		if err != nil {
			return nil, err
		}
		if count < 0 {
			return nil, fmt.Errorf("negative count %d for %s", count, name)
		}
		cards.Add(kind, count)
	}
	return cards, nil
}
