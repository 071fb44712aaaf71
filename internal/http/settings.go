package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookboss/bookboss/internal/database/settings"
	"github.com/bookboss/bookboss/internal/entities"
	"github.com/bookboss/bookboss/internal/scheduler"
	"github.com/bookboss/bookboss/internal/settingsstore"
	"github.com/bookboss/bookboss/internal/utils"
)

// SettingsController serves the global settings endpoints.
type SettingsController struct {
	repo      *settings.Repository
	store     *settingsstore.SettingsStore
	scheduler *scheduler.MetadataRefreshScheduler
}

// NewSettingsController creates a new settings controller.
func NewSettingsController(repo *settings.Repository, store *settingsstore.SettingsStore, sched *scheduler.MetadataRefreshScheduler) *SettingsController {
	return &SettingsController{repo: repo, store: store, scheduler: sched}
}

// List returns every stored setting plus the effective refresh schedule info.
func (controller *SettingsController) List(c *gin.Context) {
	all, err := controller.repo.GetAllSettings()
	if err != nil {
		respondInternalError(c, err, "list settings")
		return
	}

	refreshCfg := controller.store.GetRefreshConfig()
	response := gin.H{
		"settings": all,
		"metadata_refresh": gin.H{
			"enabled":     refreshCfg.Enabled,
			"schedule":    refreshCfg.Schedule,
			"description": settingsstore.GetCronDescription(refreshCfg.Schedule),
		},
	}
	if controller.scheduler != nil {
		if next := controller.scheduler.GetNextRunTime(); next != nil {
			response["metadata_refresh"].(gin.H)["next_run"] = next
		}
	}

	c.JSON(http.StatusOK, response)
}

type setSettingRequest struct {
	Key   string `json:"key" binding:"required"`
	Value string `json:"value"`
}

// Set creates or updates a setting. Changing the refresh schedule validates
// the cron expression and reschedules the background job.
func (controller *SettingsController) Set(c *gin.Context) {
	var req setSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "key is required")
		return
	}

	switch req.Key {
	case entities.SettingKeyRefreshSchedule:
		if err := settingsstore.ValidateCronSchedule(req.Value); err != nil {
			respondBadRequest(c, err.Error())
			return
		}
	case entities.SettingKeyAccentColor:
		if !utils.ValidHexColor(req.Value) {
			respondBadRequest(c, "accent color must be a hex color like #3b82f6")
			return
		}
	}

	if err := controller.repo.SetSetting(req.Key, req.Value); err != nil {
		respondInternalError(c, err, "set setting")
		return
	}

	if controller.scheduler != nil &&
		(req.Key == entities.SettingKeyRefreshSchedule || req.Key == entities.SettingKeyRefreshEnabled) {
		if err := controller.scheduler.Reschedule(); err != nil {
			respondInternalError(c, err, "reschedule refresh")
			return
		}
	}

	respondSuccess(c, "setting saved")
}
