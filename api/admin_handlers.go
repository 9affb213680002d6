package api

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/jmcleod/graphgate/space"
)

func currentUsername(r *http.Request) string {
	if user := userFromContext(r.Context()); user != nil {
		return user.Username
	}
	return ""
}

func nameAttr(name string) []slog.Attr {
	return []slog.Attr{slog.String("database", name)}
}

// DatabaseSpace handles GET /databases/{name}/space.
func (a *API) DatabaseSpace(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	report := a.space.ReportFor(currentUsername(r), name)
	writeJSON(w, http.StatusOK, SpaceResponse{Report: report})
}

// SystemResources handles GET /system/resources: the footprint of the
// instances and backups roots plus what is currently open.
func (a *API) SystemResources(w http.ResponseWriter, r *http.Request) {
	resp := SystemResourcesResponse{
		InstancesBytes: a.space.SizeOf(a.instancesRoot, space.All),
		BackupsBytes:   a.space.SizeOf(a.backupsRoot, space.All),
		InstanceCount:  countEntries(a.instancesRoot),
		ArchiveCount:   countEntries(a.backupsRoot),
	}
	resp.InstancesHuman = space.HumanBytes(resp.InstancesBytes)
	resp.BackupsHuman = space.HumanBytes(resp.BackupsBytes)
	if h, ok := a.lifecycle.Current(); ok {
		resp.OpenInstance = h.Name()
	}
	writeJSON(w, http.StatusOK, resp)
}

// ActiveRequests handles GET /admin/active-requests.
func (a *API) ActiveRequests(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ActiveRequestsResponse{Requests: a.tracker.Snapshot()})
}

func countEntries(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	return len(entries)
}
