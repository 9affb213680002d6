package api

import "github.com/jmcleod/graphgate/space"

// LoginRequest is the JSON body for POST /user/login.
type LoginRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me,omitempty"`
}

// RegisterRequest is the JSON body for POST /user/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ChangePasswordRequest is the JSON body for POST /user/{username}/password.
type ChangePasswordRequest struct {
	Password    string `json:"password"`
	NewPassword string `json:"new_password"`
}

// UserStatusResponse is returned from GET /user/{username}/status.
type UserStatusResponse struct {
	Username               string `json:"username"`
	PasswordChangeRequired bool   `json:"password_change_required"`
	PasswordChange         string `json:"password_change"`
}

// DatabaseResponse is returned from lifecycle routes.
type DatabaseResponse struct {
	Name string `json:"name"`
}

// BackupResponse is returned from POST /db/data/database/{name}/backup.
type BackupResponse struct {
	Archive string `json:"archive"`
}

// RestoreResponse is returned from POST /db/data/database/{file}/restore.
type RestoreResponse struct {
	Instance string `json:"instance"`
	Archive  string `json:"archive"`
}

// SystemResourcesResponse is returned from GET /system/resources.
type SystemResourcesResponse struct {
	InstancesBytes int64  `json:"instances_bytes"`
	InstancesHuman string `json:"instances_human"`
	BackupsBytes   int64  `json:"backups_bytes"`
	BackupsHuman   string `json:"backups_human"`
	InstanceCount  int    `json:"instance_count"`
	ArchiveCount   int    `json:"archive_count"`
	OpenInstance   string `json:"open_instance,omitempty"`
}

// ActiveRequestsResponse is returned from GET /admin/active-requests.
type ActiveRequestsResponse struct {
	Requests []ActiveRequest `json:"requests"`
}

// SpaceResponse is returned from GET /databases/{name}/space.
type SpaceResponse struct {
	Report space.Report `json:"report"`
}
