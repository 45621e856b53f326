package handlers

import (
	"errors"
	"net/http"

	"playhub/internal/middleware"
	"playhub/internal/services"
	"playhub/internal/utils"

	"github.com/gin-gonic/gin"
)

type VoteHandler struct {
	votes *services.VoteService
}

func NewVoteHandler(votes *services.VoteService) *VoteHandler {
	return &VoteHandler{votes: votes}
}

type voteForm struct {
	IsLike *bool `json:"is_like" form:"is_like" binding:"required"`
}

// Vote 点赞/点踩切换，返回 {action, likes, dislikes}
func (h *VoteHandler) Vote(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid game id"})
		return
	}
	var form voteForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "is_like is required"})
		return
	}

	res, err := h.votes.Vote(c.Request.Context(), id, middleware.CurrentVoter(c), *form.IsLike)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetVote 返回 {vote: "like"|"dislike"|null}；无法识别的访客视为未投票
func (h *VoteHandler) GetVote(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid game id"})
		return
	}

	state, err := h.votes.GetVote(c.Request.Context(), id, middleware.CurrentVoter(c))
	if err != nil && !errors.Is(err, services.ErrVoterUnidentified) {
		respondError(c, err)
		return
	}

	var vote any
	if state != services.NoVote {
		vote = string(state)
	}
	c.JSON(http.StatusOK, gin.H{"vote": vote})
}
