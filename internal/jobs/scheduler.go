package jobs

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"Excelerate/internal/config"
	"Excelerate/internal/logger"
	"Excelerate/internal/serviceiface"
)

// SchedulerService runs the housekeeping cron jobs. Currently that is one
// job: pruning scratch copies left behind by interrupted uploads.
type SchedulerService struct {
	config map[string]interface{}
	cron   *cron.Cron
}

func NewSchedulerService(cfg map[string]interface{}) serviceiface.Service {
	return &SchedulerService{config: cfg}
}

func (s *SchedulerService) Name() string {
	return "jobs"
}

func (s *SchedulerService) Start() error {
	schedule := config.CleanupSchedule
	if s.config != nil {
		if v, ok := s.config["cleanup_schedule"].(string); ok && v != "" {
			schedule = v
		}
	}

	s.cron = cron.New()
	if _, err := s.cron.AddFunc(schedule, func() {
		removed := CleanTempFiles(os.TempDir(), 24*time.Hour)
		msg := fmt.Sprintf("[Jobs] Temp cleanup removed %d files", removed)
		if logr := logger.GlobalLogger; logr != nil {
			logr.LogAudit(msg)
		} else {
			log.Println(msg)
		}
	}); err != nil {
		return err
	}
	s.cron.Start()
	log.Println("Jobs scheduler started, cleanup schedule:", schedule)
	return nil
}

func (s *SchedulerService) Stop() error {
	if s.cron != nil {
		s.cron.Stop()
	}
	return nil
}

// CleanTempFiles removes scratch upload files older than maxAge and returns
// how many were deleted.
func CleanTempFiles(dir string, maxAge time.Duration) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), config.TempFilePrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if os.Remove(filepath.Join(dir, entry.Name())) == nil {
			removed++
		}
	}
	return removed
}
