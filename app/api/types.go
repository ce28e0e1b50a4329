package api

import (
	"github.com/nickykapur/jobpool/app/database"
	"github.com/nickykapur/jobpool/app/jobs"
	"github.com/nickykapur/jobpool/app/profiles"
	"github.com/nickykapur/jobpool/app/scraper"
	"github.com/nickykapur/jobpool/app/tasks"
)

type Handler struct {
	postingRepo     database.PostingRepository
	signatureRepo   database.SignatureRepository
	interactionRepo database.InteractionRepository
	userRepo        database.UserRepository
	profileCache    *profiles.Cache
	collector       *scraper.Collector
	pipeline        *jobs.Pipeline
	viewer          *jobs.Viewer
	overlay         *jobs.Overlay
	enforcer        *jobs.Enforcer
	scheduler       tasks.TaskSchedulerInterface
}
