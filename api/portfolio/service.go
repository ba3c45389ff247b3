package portfolio

import (
	"Excelerate/internal/directories"
	"Excelerate/internal/notification"
	"Excelerate/internal/serviceiface"
	"Excelerate/internal/store"
)

type PortfolioService struct {
	config   map[string]interface{}
	store    *store.Store
	dirs     directories.Layout
	notifier *notification.Service
}

func NewPortfolioService(cfg map[string]interface{}, st *store.Store, dirs directories.Layout, notifier *notification.Service) serviceiface.Service {
	return &PortfolioService{config: cfg, store: st, dirs: dirs, notifier: notifier}
}

func (s *PortfolioService) Name() string {
	return "portfolio"
}

func (s *PortfolioService) Start() error {
	go StartPortfolioService(&Deps{Store: s.store, Dirs: s.dirs, Notifier: s.notifier})
	return nil
}

func (s *PortfolioService) Stop() error {
	return nil
}
