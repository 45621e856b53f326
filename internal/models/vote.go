package models

import (
	"time"
)

// GameVote 每个 (game_id, voter_key) 最多一票。
// voter_key 由客户端网络地址派生（哈希后存储），随游戏级联删除。
type GameVote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	GameID    uint      `gorm:"not null;uniqueIndex:idx_game_voter" json:"game_id"`
	VoterKey  string    `gorm:"size:64;not null;uniqueIndex:idx_game_voter" json:"-"`
	IsLike    bool      `gorm:"not null" json:"is_like"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
