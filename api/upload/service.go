package upload

import (
	"Excelerate/api/clearview"
	"Excelerate/internal/directories"
	"Excelerate/internal/notification"
	"Excelerate/internal/serviceiface"
	"Excelerate/internal/store"
)

type UploadService struct {
	config   map[string]interface{}
	store    *store.Store
	dirs     directories.Layout
	notifier *notification.Service
}

func NewUploadService(cfg map[string]interface{}, st *store.Store, dirs directories.Layout, notifier *notification.Service) serviceiface.Service {
	return &UploadService{config: cfg, store: st, dirs: dirs, notifier: notifier}
}

func (s *UploadService) Name() string {
	return "upload"
}

func (s *UploadService) Start() error {
	deps := &Deps{
		Store:      s.store,
		Dirs:       s.dirs,
		Notifier:   s.notifier,
		Reconciler: clearview.NewReconciler(s.dirs),
	}
	go StartUploadService(deps)
	return nil
}

func (s *UploadService) Stop() error {
	return nil
}
