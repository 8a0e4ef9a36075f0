package ipc

import "station/internal/settings"

// GetRequest asks for the current settings document.
type GetRequest struct{}

// GetResponse carries the reconciled settings document.
type GetResponse struct {
	Settings settings.Document `json:"settings"`
}

// UpdateRequest carries a partial settings document to merge.
type UpdateRequest struct {
	Settings settings.Partial `json:"settings"`
}

// UpdateResponse reports the save outcome and the resulting document.
type UpdateResponse struct {
	Saved    bool              `json:"saved"`
	Path     string            `json:"path"`
	Settings settings.Document `json:"settings"`
}

// StatusRequest asks for daemon process information.
type StatusRequest struct{}

// StatusResponse reports the daemon process and its settings store.
type StatusResponse struct {
	PID          int    `json:"pid"`
	SettingsPath string `json:"settings_path"`
	State        string `json:"state"`
}
