package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/postloom/postloom/internal/models"
	"github.com/postloom/postloom/internal/service"
)

// scopeFrom builds the caller's scope: user identity from the auth
// middleware, organization from the X-Organization-ID header (absent means
// personal scope).
func scopeFrom(c *gin.Context) service.Scope {
	scope := service.Scope{UserID: c.GetString(service.ContextUserID)}
	if orgID := c.GetHeader("X-Organization-ID"); orgID != "" {
		scope.OrgID = &orgID
	}
	return scope
}

func (s *Server) fail(c *gin.Context, err error) {
	var validation *service.ValidationError
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication failed"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, service.ErrNotEditable):
		c.JSON(http.StatusConflict, gin.H{"error": "post is no longer editable"})
	default:
		s.Logger.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// --- auth ---

func (s *Server) handleRegister(c *gin.Context) {
	var req struct {
		Email       string `json:"email" binding:"required"`
		Password    string `json:"password" binding:"required"`
		DisplayName string `json:"display_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := s.Auth.Register(c.Request.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

func (s *Server) handleLogin(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
		TOTPCode string `json:"totp_code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, user, err := s.Auth.Login(c.Request.Context(), req.Email, req.Password, req.TOTPCode)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

func (s *Server) handleMe(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"id":    c.GetString(service.ContextUserID),
		"email": c.GetString(service.ContextUserEmail),
	})
}

func (s *Server) handleEnrollTOTP(c *gin.Context) {
	url, err := s.Auth.EnrollTOTP(c.Request.Context(), c.GetString(service.ContextUserID))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"provisioning_url": url})
}

// --- accounts ---

func (s *Server) handleListAccounts(c *gin.Context) {
	accounts, err := s.Accounts.List(c.Request.Context(), scopeFrom(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accounts": accounts})
}

func (s *Server) handleConnectAccount(c *gin.Context) {
	var req struct {
		Platform     string `json:"platform" binding:"required"`
		AccountName  string `json:"account_name"`
		AccountID    string `json:"account_id"`
		AccessToken  string `json:"access_token" binding:"required"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account, err := s.Accounts.Connect(c.Request.Context(), scopeFrom(c), &models.SocialAccount{
		Platform:     req.Platform,
		AccountName:  req.AccountName,
		AccountID:    req.AccountID,
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"account": account})
}

func (s *Server) handleDisconnectAccount(c *gin.Context) {
	if err := s.Accounts.Disconnect(c.Request.Context(), scopeFrom(c), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- scheduled posts ---

func (s *Server) handleListPosts(c *gin.Context) {
	posts, err := s.Posts.List(c.Request.Context(), scopeFrom(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

func (s *Server) handleCreatePost(c *gin.Context) {
	var req struct {
		SocialAccountID string     `json:"social_account_id" binding:"required"`
		Content         string     `json:"content" binding:"required"`
		ScheduledTime   *time.Time `json:"scheduled_time"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := s.Posts.Create(c.Request.Context(), scopeFrom(c), req.SocialAccountID, req.Content, req.ScheduledTime)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"post": post})
}

func (s *Server) handleUpdatePost(c *gin.Context) {
	var patch service.PostPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := s.Posts.Update(c.Request.Context(), scopeFrom(c), c.Param("id"), patch)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": post})
}

func (s *Server) handleDeletePost(c *gin.Context) {
	if err := s.Posts.Delete(c.Request.Context(), scopeFrom(c), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- calendar generation ---

func (s *Server) handleGenerateCalendar(c *gin.Context) {
	var cfg service.GenerationConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := s.Calendar.Generate(c.Request.Context(), scopeFrom(c), cfg)
	if err != nil {
		// A mid-batch persistence failure still created some posts; return
		// the partial report alongside the error.
		if report != nil && len(report.Created) > 0 {
			s.Logger.Error("Calendar batch aborted mid-run", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":  "batch aborted before completion",
				"report": report,
			})
			return
		}
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"report": report})
}

func (s *Server) handleListPlatforms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"platforms": models.KnownPlatforms})
}

// --- inbox ---

func (s *Server) handleListInbox(c *gin.Context) {
	messages, err := s.Inbox.List(c.Request.Context(), scopeFrom(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func (s *Server) handleMarkInboxRead(c *gin.Context) {
	if err := s.Inbox.MarkRead(c.Request.Context(), scopeFrom(c), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleReplyInbox(c *gin.Context) {
	var req struct {
		Reply string `json:"reply" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, err := s.Inbox.Reply(c.Request.Context(), scopeFrom(c), c.Param("id"), req.Reply)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}

// --- reviews ---

func (s *Server) handleListReviews(c *gin.Context) {
	reviews, err := s.Reviews.List(c.Request.Context(), scopeFrom(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

func (s *Server) handleDraftReviewReply(c *gin.Context) {
	draft, err := s.Reviews.DraftReply(c.Request.Context(), scopeFrom(c), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"draft": draft})
}

func (s *Server) handleReplyReview(c *gin.Context) {
	var req struct {
		Reply string `json:"reply" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	review, err := s.Reviews.Reply(c.Request.Context(), scopeFrom(c), c.Param("id"), req.Reply)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"review": review})
}

// --- content library ---

func (s *Server) handleListLibrary(c *gin.Context) {
	items, err := s.Library.List(c.Request.Context(), scopeFrom(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (s *Server) handleAddLibraryItem(c *gin.Context) {
	var req struct {
		Caption  string `json:"caption"`
		MediaURL string `json:"media_url"`
		Tags     string `json:"tags"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := s.Library.Add(c.Request.Context(), scopeFrom(c), &models.ContentItem{
		Caption:  req.Caption,
		MediaURL: req.MediaURL,
		Tags:     req.Tags,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"item": item})
}

func (s *Server) handleDeleteLibraryItem(c *gin.Context) {
	if err := s.Library.Delete(c.Request.Context(), scopeFrom(c), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- monitoring ---

func (s *Server) handleListErrors(c *gin.Context) {
	logs, err := s.Monitoring.UnresolvedErrors(50)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"errors": logs})
}
