package handlers

import (
	"net/http"
	"os"
	"strings"
	"sync"
)

// Version may be set at build time with -ldflags "-X cinemuse/handlers.Version=1.2.3".
// When empty it is read from version.txt.
var (
	Version     string
	versionOnce sync.Once
)

type VersionHandler struct{}

type VersionResponse struct {
	Version string `json:"version"`
}

func NewVersionHandler() *VersionHandler {
	return &VersionHandler{}
}

// GetVersion returns the build version (cached after first read).
func GetVersion() string {
	versionOnce.Do(func() {
		if strings.TrimSpace(Version) != "" {
			return
		}
		for _, path := range []string{"version.txt", "/app/version.txt"} {
			if data, err := os.ReadFile(path); err == nil {
				Version = strings.TrimSpace(string(data))
				return
			}
		}
		Version = "dev"
	})
	return Version
}

func (h *VersionHandler) GetVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, VersionResponse{Version: GetVersion()})
}
