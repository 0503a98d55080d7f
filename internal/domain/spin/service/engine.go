package service

import (
	"sort"
	"topup_store/internal/domain/spin/model"
)

// poolSize 只在权重最高的前两个奖品中抽取
const poolSize = 2

// SelectPool 按权重降序取前 poolSize 个奖品
func SelectPool(prizes []model.Prize) []model.Prize {
	sorted := make([]model.Prize, len(prizes))
	copy(sorted, prizes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Weight > sorted[j].Weight
	})
	if len(sorted) > poolSize {
		sorted = sorted[:poolSize]
	}
	return sorted
}

// TotalWeight 奖池总权重，负权重按 0 计
func TotalWeight(pool []model.Prize) int {
	total := 0
	for _, p := range pool {
		if p.Weight > 0 {
			total += p.Weight
		}
	}
	return total
}

// Pick 按累计权重选出 draw 落入的奖品，draw 取值 [0, TotalWeight)
func Pick(pool []model.Prize, draw int) model.Prize {
	cumulative := 0
	for _, p := range pool {
		if p.Weight <= 0 {
			continue
		}
		cumulative += p.Weight
		if draw < cumulative {
			return p
		}
	}
	return pool[len(pool)-1]
}
