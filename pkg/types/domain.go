package types

// Version describes one server version template on disk. Templates live as
// subdirectories of the versions root; the directory name doubles as the id.
type Version struct {
	// Version identifier, e.g. "1.16.1" or "1.16.1-fabric".
	// example: 1.16.1
	ID string `json:"id" example:"1.16.1"`
	// Absolute path to the template directory.
	Path string `json:"path,omitempty"`
	// Absolute path to the runnable jar artifact inside the template.
	Jar string `json:"jar,omitempty"`
}
