// Package supervisor manages long-running game-server processes. It is
// structured into small files by concern:
//
//   - manager.go: Manager (id -> Instance collection, filesystem ops,
//     create/start/stop/delete/changeVersion/get).
//   - instance.go: Instance lifecycle state machine and the two pump workers
//     (stdout -> ConsoleBuffer, CommandQueue -> stdin), readiness handshake,
//     shutdown sequence.
//   - proc.go: spawned-process handle (pipes, liveness probe, reaper).
//   - console.go: ConsoleBuffer, the append-only output log.
//   - queue.go: CommandQueue, the FIFO of pending stdin lines.
//   - config.go: Config and package defaults.
//   - errors.go: error taxonomy and Is* helpers.
//   - metrics.go: prometheus collectors.
//
// Stopping a server blocks until its pump workers join and the process is
// reaped, with no timeout: a server that ignores the graceful stop command
// hangs the caller. Callers needing a bound run Stop on their own goroutine.
//
// External packages should treat this package as the supervision layer and
// use public methods only (New, Create, Start, Stop, Delete, ChangeVersion,
// Get, Send, Console, Status, StopAll).
package supervisor
