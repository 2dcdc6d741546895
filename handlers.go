package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"studyplan/models"
)

func (a *app) setupRoutes(r *gin.Engine) {
	r.POST("/auth/register", a.registerHandler)
	r.POST("/auth/login", a.loginHandler)
	r.POST("/auth/refresh", a.refreshHandler)
	r.POST("/auth/logout", a.logoutHandler)

	authGroup := r.Group("")
	authGroup.Use(a.accessTokenMiddleware())
	authGroup.POST("/auth/logout-all", a.logoutAllHandler)
	authGroup.GET("/me", a.meHandler)
	authGroup.POST("/sessions", a.createSessionHandler)
	authGroup.GET("/sessions", a.listSessionsHandler)
	authGroup.POST("/sessions/:id/complete", a.completeSessionHandler)
	authGroup.DELETE("/sessions/:id", a.deleteSessionHandler)
	authGroup.POST("/templates", a.createTemplateHandler)
	authGroup.GET("/templates", a.listTemplatesHandler)
	authGroup.POST("/templates/:id/schedule", a.scheduleFromTemplateHandler)
	authGroup.GET("/stats/subjects", a.subjectStatsHandler)
}

func (a *app) accessTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || len(authHeader) < 8 || authHeader[:7] != "Bearer " {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid Authorization header"})
			c.Abort()
			return
		}
		claims, err := a.signer.VerifyAccess(authHeader[7:])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}
		id, err := strconv.ParseUint(claims.Subject, 10, 64)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
			c.Abort()
			return
		}
		c.Set("userID", uint(id))
		c.Set("email", claims.Email)
		c.Next()
	}
}

func (a *app) meHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"id": c.GetUint("userID"), "email": c.GetString("email")})
}

// createSessionHandler schedules a StudySession for the authenticated user.
func (a *app) createSessionHandler(c *gin.Context) {
	var req struct {
		Title           string `json:"title" binding:"required"`
		Subject         string `json:"subject"`
		ScheduledAt     string `json:"scheduled_at"` // optional ISO8601
		DurationMinutes int    `json:"duration_minutes" binding:"required,min=1"`
		Notes           string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess := models.StudySession{
		UserID:          c.GetUint("userID"),
		Title:           req.Title,
		Subject:         req.Subject,
		DurationMinutes: req.DurationMinutes,
		Notes:           req.Notes,
		ScheduledAt:     time.Now(),
	}
	if req.ScheduledAt != "" {
		t, err := time.Parse(time.RFC3339, req.ScheduledAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "scheduled_at must be RFC3339"})
			return
		}
		sess.ScheduledAt = t
	}
	if err := a.db.Create(&sess).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": sess.ID})
}

// listSessionsHandler lists recent sessions for the authenticated user.
func (a *app) listSessionsHandler(c *gin.Context) {
	var items []models.StudySession
	err := a.db.Where("user_id = ?", c.GetUint("userID")).
		Order("scheduled_at desc").Limit(200).Find(&items).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, items)
}

func (a *app) completeSessionHandler(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	now := time.Now()
	res := a.db.Model(&models.StudySession{}).
		Where("id = ? AND user_id = ?", uint(id), c.GetUint("userID")).
		Updates(map[string]any{"completed": true, "completed_at": &now})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "session completed"})
}

func (a *app) deleteSessionHandler(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	res := a.db.Where("id = ? AND user_id = ?", uint(id), c.GetUint("userID")).
		Delete(&models.StudySession{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "session deleted"})
}

func (a *app) createTemplateHandler(c *gin.Context) {
	var req struct {
		Name            string `json:"name" binding:"required"`
		Subject         string `json:"subject"`
		DurationMinutes int    `json:"duration_minutes" binding:"required,min=1"`
		Notes           string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tpl := models.SessionTemplate{
		UserID:          c.GetUint("userID"),
		Name:            req.Name,
		Subject:         req.Subject,
		DurationMinutes: req.DurationMinutes,
		Notes:           req.Notes,
	}
	if err := a.db.Create(&tpl).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": tpl.ID})
}

func (a *app) listTemplatesHandler(c *gin.Context) {
	var items []models.SessionTemplate
	err := a.db.Where("user_id = ?", c.GetUint("userID")).
		Order("name asc").Find(&items).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, items)
}

// scheduleFromTemplateHandler instantiates a template into a scheduled
// session owned by the caller.
func (a *app) scheduleFromTemplateHandler(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req struct {
		ScheduledAt string `json:"scheduled_at" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	at, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "scheduled_at must be RFC3339"})
		return
	}
	var tpl models.SessionTemplate
	if err := a.db.Where("id = ? AND user_id = ?", uint(id), c.GetUint("userID")).First(&tpl).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
		return
	}
	sess := models.StudySession{
		UserID:          tpl.UserID,
		Title:           tpl.Name,
		Subject:         tpl.Subject,
		DurationMinutes: tpl.DurationMinutes,
		Notes:           tpl.Notes,
		ScheduledAt:     at,
	}
	if err := a.db.Create(&sess).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": sess.ID})
}

// subjectStatsHandler sums completed study time grouped by subject.
func (a *app) subjectStatsHandler(c *gin.Context) {
	type Result struct {
		Subject   string `json:"subject"`
		Completed int64  `json:"completed"`
		Minutes   int64  `json:"minutes"`
	}
	var results []Result
	rows, err := a.db.Model(&models.StudySession{}).
		Select("subject, count(*) as completed, sum(duration_minutes) as minutes").
		Where("user_id = ? AND completed = ?", c.GetUint("userID"), true).
		Group("subject").Rows()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	defer rows.Close()
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.Subject, &r.Completed, &r.Minutes); err == nil {
			results = append(results, r)
		}
	}
	c.JSON(http.StatusOK, results)
}
