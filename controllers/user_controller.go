package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"socialspace-api/repositories"
	"socialspace-api/services"
	"socialspace-api/utils"
)

type UserController struct {
	store         repositories.Store
	relationships *services.RelationshipService
}

func NewUserController(store repositories.Store, relationships *services.RelationshipService) *UserController {
	return &UserController{store: store, relationships: relationships}
}

func (uc *UserController) GetProfile(c *gin.Context) {
	userID := c.GetString("user_id")

	user, err := uc.store.Users().Get(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// GetUser renders another user's public profile together with the caller's
// relationship to them.
func (uc *UserController) GetUser(c *gin.Context) {
	userID := c.GetString("user_id")
	targetID := c.Param("user_id")

	user, err := uc.store.Users().Get(targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		utils.SendDomainError(c, err)
		return
	}

	status, err := uc.relationships.FriendshipStatus(userID, targetID)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":   user.Public(),
		"status": status,
	})
}

func (uc *UserController) FollowUser(c *gin.Context) {
	userID := c.GetString("user_id")
	targetID := c.Param("user_id")

	follow, err := uc.relationships.Follow(userID, targetID)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}

	utils.SendSuccess(c, "Following user", gin.H{"follow_id": follow.ID})
}

func (uc *UserController) UnfollowUser(c *gin.Context) {
	userID := c.GetString("user_id")
	targetID := c.Param("user_id")

	if err := uc.relationships.Unfollow(userID, targetID); err != nil {
		utils.SendDomainError(c, err)
		return
	}

	utils.SendSuccess(c, "Unfollowed user", nil)
}

func (uc *UserController) GetFollowers(c *gin.Context) {
	userID := c.GetString("user_id")
	page, limit := pagination(c)

	followers, err := uc.relationships.ListFollowers(userID, page, limit)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"followers": followers})
}

func (uc *UserController) GetFollowing(c *gin.Context) {
	userID := c.GetString("user_id")
	page, limit := pagination(c)

	following, err := uc.relationships.ListFollowing(userID, page, limit)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"following": following})
}

func pagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}
	return page, limit
}
