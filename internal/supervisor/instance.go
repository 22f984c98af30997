package supervisor

import (
	"bufio"
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"vawter.tech/stopper"
)

// InstanceState is the lifecycle state of one supervised server.
type InstanceState string

const (
	// StateStarting covers the window between spawn and the readiness echo.
	StateStarting InstanceState = "starting"
	// StateReady is the normal operating state.
	StateReady InstanceState = "ready"
	// StateStopping covers the shutdown sequence.
	StateStopping InstanceState = "stopping"
	// StateTerminated means the process is reaped; the instance is stale.
	StateTerminated InstanceState = "terminated"
)

// Instance couples one server process with its console buffer, command queue,
// lifecycle state, and the two pump workers bridging the process pipes.
// Instances are created by Manager.Start only.
type Instance struct {
	ID   string
	Port int

	mu      sync.Mutex
	state   InstanceState
	started time.Time

	proc    *proc
	console *ConsoleBuffer
	queue   *CommandQueue
	sctx    *stopper.Context
	readyCh chan struct{}
	token   string
	match   func(line, token string) bool
	grace   time.Duration
	log     zerolog.Logger
}

// newInstance wires an instance around a freshly spawned process and launches
// both pump workers. The readiness handshake command is enqueued before the
// workers start, so it is the first line the stdin pump delivers.
func newInstance(id string, port int, p *proc, cfg Config, token string, log zerolog.Logger) *Instance {
	inst := &Instance{
		ID:      id,
		Port:    port,
		state:   StateStarting,
		started: time.Now(),
		proc:    p,
		console: &ConsoleBuffer{},
		queue:   NewCommandQueue(),
		readyCh: make(chan struct{}),
		token:   token,
		match:   cfg.ReadyMatch,
		grace:   cfg.StopGrace,
		log:     log,
	}
	inst.queue.Enqueue(cfg.ReadyCommand(token))
	inst.sctx = stopper.WithContext(context.Background())
	inst.sctx.Go(inst.runStdoutPump)
	inst.sctx.Go(inst.runStdinPump)
	return inst
}

// State returns the current lifecycle state.
func (i *Instance) State() InstanceState {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state
}

// StartedAt returns the spawn time.
func (i *Instance) StartedAt() time.Time {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.started
}

// PID returns the OS pid of the supervised process.
func (i *Instance) PID() int { return i.proc.PID() }

// Send queues one console command for delivery to the server stdin. The line
// terminator is appended by the stdin pump. Fails when the process has
// already exited; a dead server never accepts commands silently.
func (i *Instance) Send(msg string) error {
	if i.proc.Exited() {
		return ErrProcessExited(i.ID)
	}
	i.queue.Enqueue(msg)
	commandsTotal.Inc()
	return nil
}

// Console returns a copy of the captured output lines from offset onward.
// Offsets past the end yield an empty slice.
func (i *Instance) Console(offset int) []string {
	return i.console.SnapshotFrom(offset)
}

// ConsoleLen returns the number of console lines captured so far.
func (i *Instance) ConsoleLen() int { return i.console.Len() }

// AwaitReady blocks until the readiness echo is observed, the process exits,
// or ctx is done.
func (i *Instance) AwaitReady(ctx context.Context) error {
	select {
	case <-i.readyCh:
		return nil
	case <-i.proc.waitCh:
		return ErrProcessExited(i.ID)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// alive reports whether the process has not exited yet.
func (i *Instance) alive() bool { return !i.proc.Exited() }

// markReady flips Starting to Ready exactly once. Echoes observed in any
// other state are ignored.
func (i *Instance) markReady() {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.state != StateStarting {
		return
	}
	i.state = StateReady
	close(i.readyCh)
	i.log.Info().Str("id", i.ID).Int("port", i.Port).Msg("server ready")
}

// runStdoutPump moves process output into the console buffer, watching for
// the readiness echo while starting. It runs until the output pipe reaches
// EOF, which the shutdown sequence forces by making the process exit; exiting
// earlier would let the pipe back up behind a slow reader.
func (i *Instance) runStdoutPump(sctx *stopper.Context) error {
	for line := range i.proc.Lines() {
		i.console.Append(line)
		consoleLinesTotal.Inc()
		if i.State() == StateStarting && i.match(line, i.token) {
			i.markReady()
		}
	}
	return nil
}

// runStdinPump batch-drains the command queue and writes each line, newline
// terminated, to the process stdin with an immediate flush. It exits only
// when the stop signal is raised and the queue is empty, so the graceful stop
// command enqueued during shutdown is still delivered.
func (i *Instance) runStdinPump(sctx *stopper.Context) error {
	w := bufio.NewWriter(i.proc)
	for {
		i.flushQueue(w)
		select {
		case <-i.queue.Wake():
		case <-sctx.Stopping():
			i.flushQueue(w)
			return nil
		}
	}
}

func (i *Instance) flushQueue(w *bufio.Writer) {
	for _, line := range i.queue.DrainAll() {
		if _, err := w.WriteString(line + "\n"); err != nil {
			i.log.Debug().Str("id", i.ID).Err(err).Msg("stdin write failed")
			return
		}
		if err := w.Flush(); err != nil {
			i.log.Debug().Str("id", i.ID).Err(err).Msg("stdin flush failed")
			return
		}
	}
}

// shutdown drives the stop sequence: liveness probe, graceful stop command,
// worker stop signal, worker join, process reap. It blocks without a timeout;
// that is the documented contract. Returns ErrProcessExited when the process
// was found dead on entry (cleanup still runs), ErrStillStarting when the
// instance never reached Ready, ErrOffline when another stop won the race.
func (i *Instance) shutdown(stopCmd string) error {
	i.mu.Lock()
	if i.state == StateStopping || i.state == StateTerminated {
		i.mu.Unlock()
		return ErrOffline(i.ID)
	}
	crashed := i.proc.Exited()
	if i.state == StateStarting && !crashed {
		// The process has not proven it accepts commands yet; refusing here
		// beats racing the handshake with a graceful stop.
		i.mu.Unlock()
		return ErrStillStarting(i.ID)
	}
	i.state = StateStopping
	i.mu.Unlock()

	if !crashed {
		i.queue.Enqueue(stopCmd)
	}
	i.sctx.Stop(i.grace)
	_ = i.sctx.Wait()
	_ = i.proc.WaitExit()

	i.mu.Lock()
	i.state = StateTerminated
	i.mu.Unlock()

	if crashed {
		return ErrProcessExited(i.ID)
	}
	return nil
}

// reap tears down an instance whose process already exited on its own: no
// stop command, just worker join and state flip. Used when a crashed entry is
// cleared to make way for a fresh start.
func (i *Instance) reap() {
	i.mu.Lock()
	if i.state == StateTerminated {
		i.mu.Unlock()
		return
	}
	i.state = StateStopping
	i.mu.Unlock()

	i.sctx.Stop(i.grace)
	_ = i.sctx.Wait()
	_ = i.proc.WaitExit()

	i.mu.Lock()
	i.state = StateTerminated
	i.mu.Unlock()
}
