package utils

import (
	"testing"
	"time"
)

func TestHotScoreZeroInteraction(t *testing.T) {
	if got := DefaultRankConfig.Score(1, 0, 0, 0); got != 0 {
		t.Fatalf("score without interaction = %v, want 0", got)
	}
}

func TestHotScoreDislikesDoNotGoNegative(t *testing.T) {
	if got := DefaultRankConfig.Score(1, 0, 10, 0); got != 0 {
		t.Fatalf("score = %v, want 0", got)
	}
}

func TestHotScoreOrdering(t *testing.T) {
	cfg := DefaultRankConfig
	if cfg.Score(1, 10, 0, 0) <= cfg.Score(1, 5, 0, 0) {
		t.Error("more likes should rank higher")
	}
	if cfg.Score(1, 10, 0, 0) <= cfg.Score(48, 10, 0, 0) {
		t.Error("newer games should rank higher")
	}
	if cfg.Score(1, 10, 0, 0) <= cfg.Score(1, 10, 3, 0) {
		t.Error("dislikes should lower the score")
	}
}

func TestCalculateHotScoreUsesAge(t *testing.T) {
	fresh := CalculateHotScore(time.Now(), 3, 0, 100)
	old := CalculateHotScore(time.Now().Add(-72*time.Hour), 3, 0, 100)
	if fresh <= old {
		t.Fatalf("fresh=%v old=%v", fresh, old)
	}
}
