package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jmcleod/graphgate/auth"
	"github.com/jmcleod/graphgate/backup"
	"github.com/jmcleod/graphgate/lifecycle"
	"github.com/jmcleod/graphgate/storage"
)

// Wire error codes. The closed taxonomy clients branch on; messages are
// advisory only.
const (
	CodeAuthorizationFailed = "Graph.ClientError.Security.AuthorizationFailed"
	CodeForbidden           = "Graph.ClientError.Security.Forbidden"
	CodeInvalidFormat       = "Graph.ClientError.Request.InvalidFormat"
	CodeDatabaseError       = "Graph.ClientError.General.DatabaseError"
	// CodeDatabaseNotFound also covers other missing named resources (user
	// accounts, access logs): the taxonomy is closed and has no narrower
	// code, so the message must name the resource unambiguously.
	CodeDatabaseNotFound = "Graph.ClientError.General.DatabaseNotFound"
	CodeBackupNotFound   = "Graph.ClientError.General.BackupNotFound"
	CodeIOError          = "Graph.ServerError.General.IOError"
)

// WireError is one entry in an error response.
type WireError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// ErrorResponse is returned for all failure cases.
type ErrorResponse struct {
	Errors []WireError `json:"errors"`
	// PasswordChange carries the password-change URL when a request is
	// soft-blocked pending a mandatory password reset.
	PasswordChange string `json:"password_change,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{Errors: []WireError{{Message: msg, Code: code}}})
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", "None")
	writeError(w, http.StatusUnauthorized, CodeAuthorizationFailed, msg)
}

// mapError translates typed failures from the lifecycle, backup, and
// credential layers to status codes 1:1. Anything unclassified becomes a
// generic 500 so internal details never reach the client.
func mapError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, lifecycle.ErrConflict):
		writeError(w, http.StatusConflict, CodeDatabaseError, err.Error())
	case errors.Is(err, backup.ErrConflict):
		writeError(w, http.StatusConflict, CodeDatabaseError, err.Error())
	case errors.Is(err, backup.ErrInstanceNotFound):
		writeError(w, http.StatusNotFound, CodeDatabaseNotFound, err.Error())
	case errors.Is(err, backup.ErrNotFound):
		writeError(w, http.StatusNotFound, CodeBackupNotFound, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, CodeDatabaseNotFound, err.Error())
	case errors.Is(err, auth.ErrDuplicateUser), errors.Is(err, auth.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, CodeInvalidFormat, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, CodeIOError, "internal error")
	}
}
