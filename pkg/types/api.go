package types

// VersionsResponse wraps the list of version templates returned by GET /versions.
type VersionsResponse struct {
	// Available version templates.
	Versions []Version `json:"versions"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid form body
	Error string `json:"error" example:"invalid form body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// ServerStatus summarizes one supervised server for /status and /servers.
type ServerStatus struct {
	// Server id.
	// example: 7f8c9b2e
	ID string `json:"id" example:"7f8c9b2e"`
	// Current lifecycle state (starting, ready, stopping, terminated).
	// example: ready
	State string `json:"state" example:"ready"`
	// TCP port the server process was launched to bind.
	// example: 25565
	Port int `json:"port" example:"25565"`
	// Process id of the server process.
	// example: 12345
	PID int `json:"pid,omitempty" example:"12345"`
	// Number of console lines captured so far.
	// example: 240
	ConsoleLines int `json:"console_lines" example:"240"`
	// Start time in unix seconds.
	// example: 1700000000
	StartedUnix int64 `json:"started_unix" example:"1700000000"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Currently supervised servers.
	Servers []ServerStatus `json:"servers"`
	// Available version templates.
	Versions []Version `json:"versions"`
	// Uptime of the daemon in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
	// Total number of successful starts since boot.
	// example: 12
	StartsTotal uint64 `json:"starts_total" example:"12"`
	// Total number of completed stops since boot.
	// example: 11
	StopsTotal uint64 `json:"stops_total" example:"11"`
}
