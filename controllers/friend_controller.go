package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"socialspace-api/services"
	"socialspace-api/utils"
)

type FriendController struct {
	relationships *services.RelationshipService
}

func NewFriendController(relationships *services.RelationshipService) *FriendController {
	return &FriendController{relationships: relationships}
}

func (fc *FriendController) SendFriendRequest(c *gin.Context) {
	senderID := c.GetString("user_id")
	receiverID := c.Param("user_id")

	request, err := fc.relationships.SendFriendRequest(senderID, receiverID)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}

	utils.SendCreated(c, "Friend request sent", gin.H{"request_id": request.ID})
}

func (fc *FriendController) AcceptFriendRequest(c *gin.Context) {
	userID := c.GetString("user_id")
	requestID, ok := parseID(c, "request_id")
	if !ok {
		return
	}

	request, err := fc.relationships.AcceptFriendRequest(requestID, userID)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}

	utils.SendSuccess(c, "Friend request accepted", gin.H{"request": request})
}

func (fc *FriendController) RejectFriendRequest(c *gin.Context) {
	userID := c.GetString("user_id")
	requestID, ok := parseID(c, "request_id")
	if !ok {
		return
	}

	if _, err := fc.relationships.RejectFriendRequest(requestID, userID); err != nil {
		utils.SendDomainError(c, err)
		return
	}

	utils.SendSuccess(c, "Friend request rejected", nil)
}

func (fc *FriendController) CancelFriendRequest(c *gin.Context) {
	userID := c.GetString("user_id")
	requestID, ok := parseID(c, "request_id")
	if !ok {
		return
	}

	if err := fc.relationships.CancelFriendRequest(requestID, userID); err != nil {
		utils.SendDomainError(c, err)
		return
	}

	utils.SendSuccess(c, "Friend request canceled", nil)
}

func (fc *FriendController) RemoveFriend(c *gin.Context) {
	userID := c.GetString("user_id")
	friendshipID, ok := parseID(c, "friendship_id")
	if !ok {
		return
	}

	if err := fc.relationships.RemoveFriendship(friendshipID, userID); err != nil {
		utils.SendDomainError(c, err)
		return
	}

	utils.SendSuccess(c, "Friend removed", nil)
}

func (fc *FriendController) GetFriends(c *gin.Context) {
	userID := c.GetString("user_id")
	page, limit := pagination(c)

	friends, err := fc.relationships.ListFriends(userID, page, limit)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"friends": friends})
}

func (fc *FriendController) GetIncomingRequests(c *gin.Context) {
	userID := c.GetString("user_id")
	page, limit := pagination(c)

	requests, err := fc.relationships.ListIncomingRequests(userID, page, limit)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

func (fc *FriendController) GetOutgoingRequests(c *gin.Context) {
	userID := c.GetString("user_id")
	page, limit := pagination(c)

	requests, err := fc.relationships.ListOutgoingRequests(userID, page, limit)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

func (fc *FriendController) GetFriendshipStatus(c *gin.Context) {
	userID := c.GetString("user_id")
	targetID := c.Param("user_id")

	status, err := fc.relationships.FriendshipStatus(userID, targetID)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil {
		utils.SendError(c, http.StatusBadRequest, "Invalid "+param)
		return 0, false
	}
	return uint(id), true
}
