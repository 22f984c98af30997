package supervisor

import (
	"fmt"
	"math/rand"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"serbod/internal/common/fsutil"
	"serbod/pkg/types"
)

// Manager owns the collection of live instances keyed by server id, plus the
// filesystem layout used to create and version servers. It is an explicit
// value: callers share one Manager, there is no package-level registry.
type Manager struct {
	mu        sync.RWMutex
	instances map[string]*Instance
	versions  []types.Version
	cfg       Config
	log       zerolog.Logger
	startTime time.Time
	starts    uint64
	stops     uint64
}

// New constructs a Manager, applying package defaults for unset Config fields.
func New(cfg Config) *Manager {
	cfg = cfg.withDefaults()
	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}
	return &Manager{
		instances: make(map[string]*Instance),
		cfg:       cfg,
		log:       log,
		startTime: time.Now(),
	}
}

// serverDir returns the working directory for id.
func (m *Manager) serverDir(id string) string {
	return filepath.Join(m.cfg.ServersDir, id)
}

// versionDir returns the template directory for a version.
func (m *Manager) versionDir(version string) string {
	return filepath.Join(m.cfg.VersionsDir, version)
}

// Exists reports whether server files exist for id, regardless of whether the
// server is running.
func (m *Manager) Exists(id string) bool {
	return fsutil.PathExists(m.serverDir(id))
}

// Create copies the version's template directory into a fresh working
// directory and stamps the EULA acceptance. When id is empty a new one is
// generated. Returns the id the server was created under.
func (m *Manager) Create(id, version string) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}
	src := m.versionDir(version)
	if !fsutil.PathExists(src) {
		return "", ErrVersionUnknown(version)
	}
	dst := m.serverDir(id)
	if fsutil.PathExists(dst) {
		return "", ErrAlreadyExists(id)
	}
	if err := m.cfg.CopyDir(src, dst); err != nil {
		return "", ErrIO("create", dst, err)
	}
	eula := filepath.Join(dst, "eula.txt")
	if err := fsutil.WriteFileAtomic(eula, []byte("eula=true\n"), 0o644); err != nil {
		return "", ErrIO("create", eula, err)
	}
	m.log.Info().Str("id", id).Str("version", version).Msg("server created")
	return id, nil
}

// Start spawns the server process for id on the given port (0 picks a free
// port from the configured range), installs the pump workers, kicks off the
// readiness handshake, and registers the instance. The instance becomes
// visible to Get only after setup is complete. Returns the bound port.
func (m *Manager) Start(id string, port int) (int, error) {
	if !m.Exists(id) {
		return 0, ErrFilesMissing(id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if inst, ok := m.instances[id]; ok {
		if inst.alive() {
			return 0, ErrAlreadyOnline(id)
		}
		// Crashed entry: reap it so the id can be started again. A crash is
		// never resurrected implicitly; this is the explicit restart.
		inst.reap()
		delete(m.instances, id)
		instancesRunning.Dec()
	}

	if port == 0 {
		p, err := pickPortInRange(m.cfg.PortMin, m.cfg.PortMax)
		if err != nil {
			return 0, ErrIO("start", m.serverDir(id), err)
		}
		port = p
	}

	p, err := spawnProc(m.serverDir(id), m.cfg.launchArgs(port))
	if err != nil {
		if err == errNoStdio {
			return 0, ErrThread(id)
		}
		return 0, ErrIO("start", m.serverDir(id), err)
	}

	token := uuid.NewString()
	inst := newInstance(id, port, p, m.cfg, token, m.log)
	m.instances[id] = inst
	m.starts++
	startsTotal.Inc()
	instancesRunning.Inc()
	m.log.Info().Str("id", id).Int("port", port).Int("pid", p.PID()).Msg("server started")
	return port, nil
}

// Stop drives the full shutdown sequence for id and removes the instance from
// the registry once its workers have joined and the process is reaped. It
// blocks until then; there is no timeout. A process found already dead yields
// ErrProcessExited but is still cleaned up and removed.
func (m *Manager) Stop(id string) error {
	m.mu.RLock()
	inst, ok := m.instances[id]
	m.mu.RUnlock()
	if !ok {
		return ErrOffline(id)
	}

	err := inst.shutdown(m.cfg.StopCommand)
	if err != nil && !IsProcessExited(err) {
		// StillStarting or a concurrent stop: the instance stays registered.
		return err
	}

	m.mu.Lock()
	if m.instances[id] == inst {
		delete(m.instances, id)
		m.stops++
		stopsTotal.Inc()
		instancesRunning.Dec()
	}
	m.mu.Unlock()
	m.log.Info().Str("id", id).Err(err).Msg("server stopped")
	return err
}

// Delete stops the server if running (best effort) and removes its working
// directory. Stop failures that just mean "it wasn't running" are swallowed;
// filesystem failures propagate.
func (m *Manager) Delete(id string) error {
	if err := m.Stop(id); err != nil && !IsOffline(err) && !IsStillStarting(err) && !IsProcessExited(err) {
		return err
	}
	dir := m.serverDir(id)
	if !fsutil.PathExists(dir) {
		return ErrFilesMissing(id)
	}
	if err := os.RemoveAll(dir); err != nil {
		return ErrIO("delete", dir, err)
	}
	m.log.Info().Str("id", id).Msg("server deleted")
	return nil
}

// ChangeVersion stops the server if running (best effort) and swaps its jar
// artifact for the one from the target version's template.
func (m *Manager) ChangeVersion(id, version string) error {
	if err := m.Stop(id); err != nil && !IsOffline(err) && !IsStillStarting(err) && !IsProcessExited(err) {
		return err
	}
	if !m.Exists(id) {
		return ErrFilesMissing(id)
	}
	src := filepath.Join(m.versionDir(version), m.cfg.JarName)
	if !fsutil.PathExists(src) {
		return ErrVersionUnknown(version)
	}
	dst := filepath.Join(m.serverDir(id), m.cfg.JarName)
	if err := fsutil.ReplaceFile(src, dst); err != nil {
		return ErrIO("change version", dst, err)
	}
	m.log.Info().Str("id", id).Str("version", version).Msg("server version changed")
	return nil
}

// Get returns the live instance for id, or nil when the id is not registered
// or its process has exited. A crashed server is indistinguishable from an
// offline one here; the stale entry is cleared by Stop or a fresh Start.
func (m *Manager) Get(id string) *Instance {
	m.mu.RLock()
	defer m.mu.RUnlock()
	inst, ok := m.instances[id]
	if !ok || !inst.alive() {
		return nil
	}
	return inst
}

// Send queues a console command for the server. ErrOffline when no live
// instance exists for id.
func (m *Manager) Send(id, msg string) error {
	inst := m.Get(id)
	if inst == nil {
		return ErrOffline(id)
	}
	return inst.Send(msg)
}

// Console returns captured output lines from offset onward. ErrOffline when
// no live instance exists for id.
func (m *Manager) Console(id string, offset int) ([]string, error) {
	inst := m.Get(id)
	if inst == nil {
		return nil, ErrOffline(id)
	}
	return inst.Console(offset), nil
}

// SetVersions installs the current version-template snapshot (fed by the
// registry watcher). Used for reporting only; Create and ChangeVersion check
// the filesystem directly.
func (m *Manager) SetVersions(v []types.Version) {
	m.mu.Lock()
	m.versions = append([]types.Version(nil), v...)
	m.mu.Unlock()
}

// Versions returns the last installed version snapshot.
func (m *Manager) Versions() []types.Version {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]types.Version(nil), m.versions...)
}

// Ready reports whether the manager can serve requests: both configured
// roots must exist.
func (m *Manager) Ready() bool {
	return fsutil.PathExists(m.cfg.ServersDir) && fsutil.PathExists(m.cfg.VersionsDir)
}

// Status returns a read-only projection for the HTTP layer.
func (m *Manager) Status() types.StatusResponse {
	m.mu.RLock()
	defer m.mu.RUnlock()
	servers := make([]types.ServerStatus, 0, len(m.instances))
	for _, inst := range m.instances {
		servers = append(servers, types.ServerStatus{
			ID:           inst.ID,
			State:        string(inst.State()),
			Port:         inst.Port,
			PID:          inst.PID(),
			ConsoleLines: inst.ConsoleLen(),
			StartedUnix:  inst.StartedAt().Unix(),
		})
	}
	now := time.Now()
	return types.StatusResponse{
		Servers:        servers,
		Versions:       append([]types.Version(nil), m.versions...),
		UptimeSeconds:  int64(now.Sub(m.startTime).Seconds()),
		ServerTimeUnix: now.Unix(),
		StartsTotal:    m.starts,
		StopsTotal:     m.stops,
	}
}

// StopAll stops every registered server. Best effort; used on daemon shutdown.
func (m *Manager) StopAll() {
	m.mu.RLock()
	ids := make([]string, 0, len(m.instances))
	for id := range m.instances {
		ids = append(ids, id)
	}
	m.mu.RUnlock()
	for _, id := range ids {
		if err := m.Stop(id); err != nil && !IsOffline(err) && !IsProcessExited(err) {
			m.log.Warn().Str("id", id).Err(err).Msg("stop on shutdown failed")
		}
	}
}

// pickPortInRange probes for a bindable TCP port in [min, max], scanning from
// a random offset so concurrent managers spread out.
func pickPortInRange(min, max int) (int, error) {
	span := max - min + 1
	start := rand.Intn(span)
	for i := 0; i < span; i++ {
		p := min + (start+i)%span
		l, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", p))
		if err != nil {
			continue
		}
		_ = l.Close()
		return p, nil
	}
	return 0, fmt.Errorf("no free port in range %d-%d", min, max)
}
