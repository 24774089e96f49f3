// Package prefs persists per-user UI state and the shared sidebar flags.
// Everything here is cosmetic: a failed write degrades silently.
package prefs

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"wiselib/internal/models"
	"wiselib/internal/notify"
	"wiselib/internal/storage"
)

const (
	Prefix  = "jrmsu_prefs_"
	Channel = "jrmsu_prefs_channel"

	SidebarCollapsedKey  = "jrmsu_sidebar_collapsed"
	SidebarMobileOpenKey = "jrmsu_sidebar_mobile_open"
	SidebarChannel       = "jrmsu_sidebar_channel"
)

type Service struct {
	backend  storage.Backend
	notifier notify.Notifier
	lg       *zap.SugaredLogger
}

func New(b storage.Backend, n notify.Notifier, lg *zap.SugaredLogger) *Service {
	if n == nil {
		n = notify.Noop{}
	}
	if lg == nil {
		lg = zap.NewNop().Sugar()
	}
	return &Service{backend: b, notifier: n, lg: lg}
}

// Load returns the user's UI state; absent or corrupt data reads as empty.
func (s *Service) Load(userID string) models.UIState {
	state, _ := storage.GetJSON[models.UIState](s.backend, Prefix+userID)
	return state
}

// Save merges patch onto the stored state and broadcasts the change.
func (s *Service) Save(userID string, patch models.UIState) {
	merged := s.Load(userID).Merge(patch)
	if err := storage.PutJSON(s.backend, Prefix+userID, merged); err != nil {
		s.lg.Warnw("prefs write dropped", "user", userID, "error", err)
		return
	}
	val, _ := json.Marshal(userID)
	if err := s.notifier.Publish(context.Background(), Channel, notify.Message{Type: "prefs", Value: val}); err != nil {
		s.lg.Debugw("prefs notify failed", "error", err)
	}
}

// Subscribe fires fn when another process saves preferences.
func (s *Service) Subscribe(ctx context.Context, fn func()) (func(), error) {
	return s.notifier.Subscribe(ctx, Channel, func(notify.Message) { fn() })
}

// SidebarCollapsed reads the shared sidebar flag.
func (s *Service) SidebarCollapsed() bool {
	v, _ := storage.GetJSON[bool](s.backend, SidebarCollapsedKey)
	return v
}

// SetSidebarCollapsed persists and mirrors the flag across processes.
func (s *Service) SetSidebarCollapsed(collapsed bool) {
	s.setFlag(SidebarCollapsedKey, collapsed)
}

// SidebarMobileOpen reads the mobile drawer flag.
func (s *Service) SidebarMobileOpen() bool {
	v, _ := storage.GetJSON[bool](s.backend, SidebarMobileOpenKey)
	return v
}

func (s *Service) SetSidebarMobileOpen(open bool) {
	s.setFlag(SidebarMobileOpenKey, open)
}

func (s *Service) setFlag(key string, v bool) {
	if err := storage.PutJSON(s.backend, key, v); err != nil {
		s.lg.Warnw("sidebar write dropped", "key", key, "error", err)
		return
	}
	val, _ := json.Marshal(v)
	if err := s.notifier.Publish(context.Background(), SidebarChannel, notify.Message{Type: "sidebar", Value: val}); err != nil {
		s.lg.Debugw("sidebar notify failed", "error", err)
	}
}

// SubscribeSidebar fires fn when another process flips a sidebar flag.
func (s *Service) SubscribeSidebar(ctx context.Context, fn func()) (func(), error) {
	return s.notifier.Subscribe(ctx, SidebarChannel, func(notify.Message) { fn() })
}
