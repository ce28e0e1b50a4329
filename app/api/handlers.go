package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nickykapur/jobpool/app/cfg"
	"github.com/nickykapur/jobpool/app/database"
	"github.com/nickykapur/jobpool/app/jobs"
	"github.com/nickykapur/jobpool/app/profiles"
	"github.com/nickykapur/jobpool/app/scraper"
	"github.com/nickykapur/jobpool/app/tasks"
)

func NewHandler(postingRepo database.PostingRepository, signatureRepo database.SignatureRepository,
	interactionRepo database.InteractionRepository, userRepo database.UserRepository,
	profileCache *profiles.Cache, collector *scraper.Collector, pipeline *jobs.Pipeline,
	viewer *jobs.Viewer, overlay *jobs.Overlay, enforcer *jobs.Enforcer,
	scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		postingRepo:     postingRepo,
		signatureRepo:   signatureRepo,
		interactionRepo: interactionRepo,
		userRepo:        userRepo,
		profileCache:    profileCache,
		collector:       collector,
		pipeline:        pipeline,
		viewer:          viewer,
		overlay:         overlay,
		enforcer:        enforcer,
		scheduler:       scheduler,
	}
}

// resolveUser maps a profile name from the URL to its user row.
func (h *Handler) resolveUser(c *gin.Context) *database.User {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing user name parameter"})
		return nil
	}

	user, err := h.userRepo.GetUserByName(name)
	if err != nil {
		slog.Error("Database error", "operation", "get_user", "user", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return nil
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return nil
	}

	return user
}

func (h *Handler) GetVisibleJobs(c *gin.Context) {
	user := h.resolveUser(c)
	if user == nil {
		return
	}

	views, err := h.viewer.GetVisibleJobs(c.Request.Context(), user.ID)
	if err != nil {
		slog.Error("Failed to build visible jobs", "user", user.Name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build job view"})
		return
	}

	c.Header("X-Job-Count", strconv.Itoa(len(views)))
	c.JSON(http.StatusOK, gin.H{
		"user":  user.Name,
		"total": len(views),
		"jobs":  views,
	})
}

func (h *Handler) SetInteraction(c *gin.Context) {
	user := h.resolveUser(c)
	if user == nil {
		return
	}

	postingID := c.Param("id")
	if postingID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing posting id parameter"})
		return
	}

	var patch jobs.InteractionPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	err := h.overlay.SetInteraction(c.Request.Context(), user.ID, postingID, patch)
	if errors.Is(err, jobs.ErrPostingNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Posting not found"})
		return
	}
	if err != nil {
		slog.Error("Failed to set interaction", "user", user.Name, "posting", postingID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set interaction"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"version": cfg.Get().Version,
	}

	if postingCount, err := h.postingRepo.GetPostingCount(); err == nil {
		health["postings"] = postingCount
	} else {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Database unavailable"})
		return
	}

	health["loaded_profiles"] = h.profileCache.GetProfileCount()

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{}

	if countries, err := h.postingRepo.CountByCountry(); err == nil {
		stats["postings_by_country"] = countries
	}
	if count, err := h.postingRepo.GetPostingCount(); err == nil {
		stats["postings"] = count
	}
	if count, err := h.signatureRepo.GetSignatureCount(); err == nil {
		stats["signatures"] = count
	}
	if count, err := h.interactionRepo.GetInteractionCount(); err == nil {
		stats["interactions"] = count
	}
	if count, err := h.userRepo.GetUserCount(); err == nil {
		stats["users"] = count
	}

	c.JSON(http.StatusOK, stats)
}

// APIIngest accepts a pre-scraped batch and merges it into the pool.
// Intended for the scraper collaborator pushing results directly.
func (h *Handler) APIIngest(c *gin.Context) {
	var records []jobs.RawRecord
	if err := c.ShouldBindJSON(&records); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	batch := make(map[string]jobs.RawRecord, len(records))
	for _, record := range records {
		batch[jobs.PostingID(record.Title, record.Company, record.Location)] = record
	}

	result := h.pipeline.Ingest(c.Request.Context(), batch)

	c.JSON(http.StatusOK, result)
}

// APITriggerIngestRun enqueues a full scrape-and-ingest cycle ahead of the
// cron schedule. The run executes on the scheduler's single ingest worker,
// so it can never overlap a scheduled run.
func (h *Handler) APITriggerIngestRun(c *gin.Context) {
	task := tasks.NewIngestRunTask(h.profileCache, h.collector, h.pipeline)
	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Error("Failed to enqueue ingest run", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to enqueue ingest run", "details": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"task": gin.H{
			"id":   task.ID,
			"type": task.Type,
		},
	})
}

func (h *Handler) APIEnforceQuota(c *gin.Context) {
	limit := cfg.Get().CountryLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
			return
		}
		limit = parsed
	}

	result, err := h.enforcer.EnforceCountryLimit(limit)
	if err != nil {
		slog.Error("Quota enforcement failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Quota enforcement failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) APIListUsers(c *gin.Context) {
	profileList := h.profileCache.GetProfiles()

	users := make([]map[string]interface{}, 0, len(profileList))
	for name, profile := range profileList {
		userInfo := map[string]interface{}{
			"name":    name,
			"queries": len(profile.Queries),
		}

		if user, err := h.userRepo.GetUserByName(name); err == nil && user != nil {
			userInfo["id"] = user.ID
			userInfo["created_at"] = user.CreatedAt
		}

		users = append(users, userInfo)
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"total": len(users),
	})
}
