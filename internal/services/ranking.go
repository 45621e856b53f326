package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"playhub/internal/models"
	"playhub/internal/utils"

	"gorm.io/gorm"
)

// RankingService 异步计算并更新游戏热度 hot_score
type RankingService struct {
	db          *gorm.DB
	revalidator *Revalidator
	queue       chan uint // 待更新的游戏 ID 队列
	pending     map[uint]bool
	mu          sync.Mutex
	batchSize   int
	interval    time.Duration
}

func NewRankingService(db *gorm.DB, revalidator *Revalidator) *RankingService {
	return &RankingService{
		db:          db,
		revalidator: revalidator,
		queue:       make(chan uint, 1000), // 缓冲队列，防止阻塞
		pending:     make(map[uint]bool),
		batchSize:   50,
		interval:    500 * time.Millisecond,
	}
}

// Start 启动后台 worker，ctx 取消后退出
func (s *RankingService) Start(ctx context.Context) {
	go s.worker(ctx)
	go s.nightly(ctx)
}

// ScheduleUpdate 将游戏加入更新队列（异步），队列中已有的 ID 不重复加入
func (s *RankingService) ScheduleUpdate(gameID uint) {
	s.mu.Lock()
	if s.pending[gameID] {
		s.mu.Unlock()
		return
	}
	s.pending[gameID] = true
	s.mu.Unlock()

	select {
	case s.queue <- gameID:
	default:
		s.mu.Lock()
		delete(s.pending, gameID)
		s.mu.Unlock()
		slog.Warn("ranking queue full, skipping", "game_id", gameID)
	}
}

// worker 收集一批请求后统一处理
func (s *RankingService) worker(ctx context.Context) {
	batch := make([]uint, 0, s.batchSize)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case id := <-s.queue:
			batch = append(batch, id)
			if len(batch) >= s.batchSize {
				s.processBatch(ctx, batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				s.processBatch(ctx, batch)
				batch = batch[:0]
			}
		}
	}
}

func (s *RankingService) processBatch(ctx context.Context, ids []uint) {
	for _, id := range ids {
		if err := s.UpdateScore(ctx, id); err != nil {
			slog.Error("update hot score failed", "game_id", id, "error", err)
		}
		s.mu.Lock()
		delete(s.pending, id)
		s.mu.Unlock()
	}
	if s.revalidator != nil {
		s.revalidator.Revalidate(ctx, TagGames)
	}
}

// UpdateScore 同步重算单个游戏的热度。只写 hot_score，不碰投票计数。
func (s *RankingService) UpdateScore(ctx context.Context, gameID uint) error {
	var game models.Game
	err := s.db.WithContext(ctx).
		Select("id", "created_at", "likes", "dislikes", "plays").
		Take(&game, gameID).Error
	if err != nil {
		return err
	}
	score := utils.CalculateHotScore(game.CreatedAt, game.Likes, game.Dislikes, game.Plays)
	return s.db.WithContext(ctx).Model(&models.Game{}).
		Where("id = ?", gameID).
		UpdateColumn("hot_score", score).Error
}

// nightly 每天凌晨 3 点刷新近 7 天和热度前 30 的游戏，让时间衰减生效
func (s *RankingService) nightly(ctx context.Context) {
	for {
		now := time.Now()
		next := time.Date(now.Year(), now.Month(), now.Day(), 3, 0, 0, 0, now.Location())
		if now.After(next) {
			next = next.Add(24 * time.Hour)
		}
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		n := s.RefreshHot(ctx)
		slog.Info("nightly hot score refresh done", "games", n)
	}
}

// RefreshHot 返回本次更新的游戏数量
func (s *RankingService) RefreshHot(ctx context.Context) int {
	processed := make(map[uint]bool)

	var ids []uint
	s.db.WithContext(ctx).Model(&models.Game{}).
		Where("created_at >= ?", time.Now().AddDate(0, 0, -7)).
		Pluck("id", &ids)

	var top []uint
	s.db.WithContext(ctx).Model(&models.Game{}).
		Order("hot_score DESC").Limit(30).
		Pluck("id", &top)
	ids = append(ids, top...)

	for _, id := range ids {
		if processed[id] {
			continue
		}
		processed[id] = true
		if err := s.UpdateScore(ctx, id); err != nil {
			slog.Error("update hot score failed", "game_id", id, "error", err)
		}
	}
	if len(processed) > 0 && s.revalidator != nil {
		s.revalidator.Revalidate(ctx, TagGames)
	}
	return len(processed)
}
