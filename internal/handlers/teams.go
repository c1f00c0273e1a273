package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"salin-system/internal/middleware"
	"salin-system/internal/services/teams"
)

type TeamHandler struct {
	teams *teams.Service
}

func NewTeamHandler(teamService *teams.Service) *TeamHandler {
	return &TeamHandler{teams: teamService}
}

type CreateTeamRequest struct {
	TeamName string `json:"team_name" binding:"required"`
}

type JoinTeamRequest struct {
	TeamCode string `json:"team_code" binding:"required"`
}

type MemberActionRequest struct {
	MemberID string `json:"member_id" binding:"required,uuid"`
}

type UpdateMemberRoleRequest struct {
	MemberID string `json:"member_id" binding:"required,uuid"`
	NewRole  string `json:"new_role" binding:"required"`
}

func (h *TeamHandler) Create(c *gin.Context) {
	var req CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request: "+err.Error()))
		return
	}

	team, err := h.teams.CreateTeam(c.Request.Context(), c.GetString(middleware.ContextUserID), req.TeamName)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse("Team created", team))
}

func (h *TeamHandler) Join(c *gin.Context) {
	var req JoinTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request: "+err.Error()))
		return
	}

	member, err := h.teams.JoinTeam(c.Request.Context(), c.GetString(middleware.ContextUserID), req.TeamCode)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse("Request to join team sent", member))
}

func (h *TeamHandler) Approve(c *gin.Context) {
	var req MemberActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request: "+err.Error()))
		return
	}

	if err := h.teams.ApproveMember(c.Request.Context(), c.GetString(middleware.ContextUserID), req.MemberID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Member approved", nil))
}

func (h *TeamHandler) Remove(c *gin.Context) {
	var req MemberActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request: "+err.Error()))
		return
	}

	if err := h.teams.RemoveMember(c.Request.Context(), c.GetString(middleware.ContextUserID), req.MemberID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Member removed", nil))
}

func (h *TeamHandler) Leave(c *gin.Context) {
	if err := h.teams.LeaveTeam(c.Request.Context(), c.GetString(middleware.ContextUserID)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Left team", nil))
}

func (h *TeamHandler) UpdateRole(c *gin.Context) {
	var req UpdateMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request: "+err.Error()))
		return
	}

	if err := h.teams.UpdateMemberRole(c.Request.Context(), c.GetString(middleware.ContextUserID), req.MemberID, req.NewRole); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Member role updated", nil))
}

func (h *TeamHandler) Me(c *gin.Context) {
	view, err := h.teams.GetTeamForUser(c.Request.Context(), c.GetString(middleware.ContextUserID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Team retrieved", view))
}

func (h *TeamHandler) Search(c *gin.Context) {
	results, err := h.teams.SearchTeams(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Teams found", results))
}
