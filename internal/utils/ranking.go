package utils

import (
	"math"
	"time"
)

type RankConfig struct {
	Gravity       float64 // 时间重力 (1.5)
	WeightLike    float64 // 1.0
	WeightDislike float64 // 1.5
	WeightPlay    float64 // 0.05，游玩次数量级大，权重要小
	ScaleFactor   float64 // 放大系数 (100)
	HourOffset    float64 // 新游戏的时间偏移 (2)
}

var DefaultRankConfig = RankConfig{
	Gravity:       1.2,
	WeightLike:    1.0,
	WeightDislike: 1.5,
	WeightPlay:    0.05,
	ScaleFactor:   100.0,
	HourOffset:    2,
}

// CalculateHotScore 计算游戏热度，输入全部取自 games 表上的计数列
func CalculateHotScore(createdAt time.Time, likes, dislikes, plays int) float64 {
	return DefaultRankConfig.Score(time.Since(createdAt).Hours(), likes, dislikes, plays)
}

func (cfg RankConfig) Score(hours float64, likes, dislikes, plays int) float64 {
	if hours < 0 {
		hours = 0
	}

	weighted := float64(likes)*cfg.WeightLike +
		float64(plays)*cfg.WeightPlay -
		float64(dislikes)*cfg.WeightDislike
	if weighted < 0 {
		weighted = 0 // 防止负数无法取对数
	}

	numerator := math.Log10(weighted+1) * cfg.ScaleFactor
	decay := math.Pow(hours+cfg.HourOffset, cfg.Gravity)
	return numerator / decay
}
