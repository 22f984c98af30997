package supervisor

import (
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"serbod/internal/common/fsutil"
)

// Defaults applied when corresponding Config fields are unset.
const (
	defaultJarName     = "server.jar"
	defaultJavaBin     = "java"
	defaultHeapMB      = 1024
	defaultPortMin     = 25565
	defaultPortMax     = 35565
	defaultStopCommand = "stop"
	defaultStopGrace   = 5 * time.Second
)

// portToken is replaced with the chosen port in launch command overrides.
const portToken = "{port}"

// Config encapsulates all tunables for Manager construction.
type Config struct {
	// ServersDir holds one working directory per server id.
	ServersDir string
	// VersionsDir holds one template directory per version.
	VersionsDir string
	// JarName is the runnable artifact inside each working directory.
	JarName string
	// JavaBin and HeapMB shape the default launch command.
	JavaBin string
	HeapMB  int
	// PortMin/PortMax bound the range probed when a start does not name a port.
	PortMin int
	PortMax int
	// Launch overrides the java command vector entirely; occurrences of
	// "{port}" are substituted with the chosen port. Used by tests to run
	// scripted fake servers.
	Launch []string
	// StopCommand is the console command sent for a graceful shutdown.
	StopCommand string
	// ReadyCommand builds the synthetic handshake command for a token. The
	// command must make the server echo the token back on its own output.
	ReadyCommand func(token string) string
	// ReadyMatch reports whether an output line carries the handshake echo.
	// The whole line is offered; no fixed-column assumptions.
	ReadyMatch func(line, token string) bool
	// StopGrace bounds how long pump workers get between the stop signal and
	// a hard context cancel. The wait for process exit itself is unbounded;
	// a server that ignores StopCommand hangs its stopper.
	StopGrace time.Duration
	// CopyDir is the directory-copy collaborator used by Create.
	CopyDir func(src, dst string) error
	// Logger receives structured supervision events. Nop when nil.
	Logger *zerolog.Logger
}

// withDefaults returns cfg with zero fields replaced by package defaults.
func (c Config) withDefaults() Config {
	if c.JarName == "" {
		c.JarName = defaultJarName
	}
	if c.JavaBin == "" {
		c.JavaBin = defaultJavaBin
	}
	if c.HeapMB <= 0 {
		c.HeapMB = defaultHeapMB
	}
	if c.PortMin <= 0 {
		c.PortMin = defaultPortMin
	}
	if c.PortMax <= c.PortMin {
		c.PortMax = defaultPortMax
	}
	if c.StopCommand == "" {
		c.StopCommand = defaultStopCommand
	}
	if c.ReadyCommand == nil {
		c.ReadyCommand = func(token string) string { return "say " + token }
	}
	if c.ReadyMatch == nil {
		c.ReadyMatch = func(line, token string) bool { return strings.Contains(line, token) }
	}
	if c.StopGrace <= 0 {
		c.StopGrace = defaultStopGrace
	}
	if c.CopyDir == nil {
		c.CopyDir = fsutil.CopyDir
	}
	return c
}

// launchArgs builds the command vector for one server start.
func (c Config) launchArgs(port int) []string {
	if len(c.Launch) > 0 {
		out := make([]string, len(c.Launch))
		for i, a := range c.Launch {
			out[i] = strings.ReplaceAll(a, portToken, strconv.Itoa(port))
		}
		return out
	}
	heap := strconv.Itoa(c.HeapMB)
	return []string{
		c.JavaBin,
		"-Xmx" + heap + "M",
		"-Xms" + heap + "M",
		"-jar", c.JarName,
		"nogui",
		"--port", strconv.Itoa(port),
	}
}
