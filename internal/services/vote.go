package services

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"playhub/internal/models"

	"golang.org/x/crypto/blake2b"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrVoterUnidentified = errors.New("voter identity unavailable")
	ErrGameNotFound      = errors.New("game not found")
	ErrVoteFailed        = errors.New("vote transaction failed")
)

// VoteAction 一次投票请求造成的状态迁移
type VoteAction string

const (
	VoteCreated   VoteAction = "created"
	VoteSwitched  VoteAction = "switched"
	VoteCancelled VoteAction = "cancelled"
)

// VoteState 某个投票者对某个游戏的当前状态
type VoteState string

const (
	NoVote       VoteState = ""
	VoteLiked    VoteState = "like"
	VoteDisliked VoteState = "dislike"
)

type VoteResult struct {
	Action   VoteAction `json:"action"`
	Likes    int        `json:"likes"`
	Dislikes int        `json:"dislikes"`
}

// VoteService 维护 game_votes 与 games.likes/dislikes 的一致性。
// 计数只在 Vote 的事务内增减，不从 COUNT(*) 重算。
type VoteService struct {
	db          *gorm.DB
	ranking     *RankingService
	revalidator *Revalidator
}

func NewVoteService(db *gorm.DB, ranking *RankingService, revalidator *Revalidator) *VoteService {
	return &VoteService{db: db, ranking: ranking, revalidator: revalidator}
}

// HashVoterKey 把客户端地址加盐哈希，数据库里不保存原始 IP
func HashVoterKey(salt, address string) string {
	sum := blake2b.Sum256([]byte(salt + "|" + address))
	return hex.EncodeToString(sum[:])
}

// unknownVoterKey 中间件无法识别客户端地址时的占位值
const unknownVoterKey = "unknown"

// identified voterKey 应是 HashVoterKey 的结果；空值和占位值都视为无法识别
func identified(voterKey string) bool {
	k := strings.TrimSpace(voterKey)
	return k != "" && k != unknownVoterKey
}

// Vote 切换投票：
//   - 无票：新建，对应计数 +1 (created)
//   - 同向：删除，对应计数 -1 (cancelled)
//   - 反向：改极性，一减一增 (switched)
//
// voterKey 必须是 middleware.VoterIdentity 生成的哈希值。
func (s *VoteService) Vote(ctx context.Context, gameID uint, voterKey string, isLike bool) (*VoteResult, error) {
	if !identified(voterKey) {
		return nil, ErrVoterUnidentified
	}

	result := &VoteResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 锁住游戏行，同一游戏的并发投票串行执行
		var game models.Game
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "likes", "dislikes").
			Take(&game, gameID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGameNotFound
		}
		if err != nil {
			return err
		}

		var existing models.GameVote
		err = tx.Where("game_id = ? AND voter_key = ?", gameID, voterKey).Take(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			vote := models.GameVote{GameID: gameID, VoterKey: voterKey, IsLike: isLike}
			if err := tx.Create(&vote).Error; err != nil {
				return err
			}
			if err := bumpCounter(tx, gameID, counterColumn(isLike), 1); err != nil {
				return err
			}
			result.Action = VoteCreated

		case err != nil:
			return err

		case existing.IsLike == isLike:
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			if err := bumpCounter(tx, gameID, counterColumn(isLike), -1); err != nil {
				return err
			}
			result.Action = VoteCancelled

		default:
			if err := tx.Model(&existing).Update("is_like", isLike).Error; err != nil {
				return err
			}
			if err := bumpCounter(tx, gameID, counterColumn(!isLike), -1); err != nil {
				return err
			}
			if err := bumpCounter(tx, gameID, counterColumn(isLike), 1); err != nil {
				return err
			}
			result.Action = VoteSwitched
		}

		// 事务内读回最新计数
		if err := tx.Select("likes", "dislikes").Take(&game, gameID).Error; err != nil {
			return err
		}
		result.Likes = game.Likes
		result.Dislikes = game.Dislikes
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrGameNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrVoteFailed, err)
	}

	if s.revalidator != nil {
		s.revalidator.Revalidate(ctx, GameTag(gameID))
	}
	if s.ranking != nil {
		s.ranking.ScheduleUpdate(gameID)
	}
	return result, nil
}

// GetVote 查询投票者当前状态，未投票返回 NoVote
func (s *VoteService) GetVote(ctx context.Context, gameID uint, voterKey string) (VoteState, error) {
	if !identified(voterKey) {
		return NoVote, ErrVoterUnidentified
	}
	var vote models.GameVote
	err := s.db.WithContext(ctx).
		Where("game_id = ? AND voter_key = ?", gameID, voterKey).
		Take(&vote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NoVote, nil
	}
	if err != nil {
		return NoVote, fmt.Errorf("load vote: %w", err)
	}
	if vote.IsLike {
		return VoteLiked, nil
	}
	return VoteDisliked, nil
}

func counterColumn(isLike bool) string {
	if isLike {
		return "likes"
	}
	return "dislikes"
}

// bumpCounter 原子增减计数，减到 0 为止
func bumpCounter(tx *gorm.DB, gameID uint, column string, delta int) error {
	var expr clause.Expr
	if delta >= 0 {
		expr = gorm.Expr(column+" + ?", delta)
	} else {
		expr = gorm.Expr("CASE WHEN "+column+" >= ? THEN "+column+" - ? ELSE 0 END", -delta, -delta)
	}
	return tx.Model(&models.Game{}).Where("id = ?", gameID).UpdateColumn(column, expr).Error
}
