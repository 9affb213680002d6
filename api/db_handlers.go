package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// CreateDatabase handles POST /db/data/database/{name}/create. Destructive:
// any pre-existing data for the name is wiped before the instance opens.
func (a *API) CreateDatabase(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := a.lifecycle.Create(name); err != nil {
		mapError(w, err)
		return
	}
	a.audit.logEvent(AuditDatabaseCreated, r, currentUsername(r), nameAttr(name)...)
	writeJSON(w, http.StatusCreated, DatabaseResponse{Name: name})
}

// StartDatabase handles POST /db/data/database/{name}/start.
func (a *API) StartDatabase(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := a.lifecycle.Start(name); err != nil {
		mapError(w, err)
		return
	}
	a.audit.logEvent(AuditDatabaseStarted, r, currentUsername(r), nameAttr(name)...)
	writeJSON(w, http.StatusCreated, DatabaseResponse{Name: name})
}

// ShutdownDatabase handles POST /db/data/database. Safe to call with nothing
// open.
func (a *API) ShutdownDatabase(w http.ResponseWriter, r *http.Request) {
	if err := a.lifecycle.Shutdown(); err != nil {
		mapError(w, err)
		return
	}
	a.audit.logEvent(AuditDatabaseStopped, r, currentUsername(r))
	w.WriteHeader(http.StatusNoContent)
}

// DeleteDatabase handles DELETE /db/data/database/{name}. An open instance
// is shut down before its data is removed.
func (a *API) DeleteDatabase(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !a.lifecycle.Delete(name) {
		writeError(w, http.StatusInternalServerError, CodeIOError, "failed to delete instance data")
		return
	}
	a.audit.logEvent(AuditDatabaseDeleted, r, currentUsername(r), nameAttr(name)...)
	w.WriteHeader(http.StatusNoContent)
}

// BackupDatabase handles POST /db/data/database/{name}/backup.
func (a *API) BackupDatabase(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	archive, err := a.archiver.Backup(name)
	if err != nil {
		mapError(w, err)
		return
	}
	a.audit.logEvent(AuditBackupCreated, r, currentUsername(r), nameAttr(name)...)
	writeJSON(w, http.StatusCreated, BackupResponse{Archive: archive})
}

// RestoreDatabase handles POST /db/data/database/{name}/restore, where
// {name} is the archive file name. The target instance name is derived from
// the archive name.
func (a *API) RestoreDatabase(w http.ResponseWriter, r *http.Request) {
	file := chi.URLParam(r, "name")
	name, err := a.archiver.Restore(file)
	if err != nil {
		mapError(w, err)
		return
	}
	a.audit.logEvent(AuditBackupRestored, r, currentUsername(r), nameAttr(name)...)
	writeJSON(w, http.StatusCreated, RestoreResponse{Instance: name, Archive: file})
}
