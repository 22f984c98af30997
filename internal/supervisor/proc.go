package supervisor

import (
	"bufio"
	"errors"
	"io"
	"os"
	"os/exec"
)

// proc owns one spawned server process: its stdin pipe, a line channel fed
// from the merged stdout/stderr pipe, and a reaper goroutine around Wait so
// liveness can be probed without blocking.
type proc struct {
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	lines   chan string
	waitCh  chan struct{}
	waitErr error
}

// outputChanDepth buffers bursts of server output between pump wakeups.
const outputChanDepth = 256

var errNoStdio = errors.New("stdio pipe unavailable")

// spawnProc launches argv[0] with the remaining argv as arguments, in dir,
// with stdin piped and stdout+stderr merged into the line channel. The
// scanner goroutine drains the output pipe until EOF no matter what, so a
// shutting-down server can never block on a full pipe; the channel is closed
// once the pipe is exhausted.
func spawnProc(dir string, argv []string) (*proc, error) {
	if len(argv) == 0 {
		return nil, errors.New("empty launch command")
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = dir

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, errNoStdio
	}
	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, errNoStdio
	}
	// Merge stderr into stdout so crash traces land in the console too.
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		_ = pr.Close()
		_ = pw.Close()
		return nil, err
	}
	// The child holds its own dup of the write end.
	_ = pw.Close()

	p := &proc{
		cmd:    cmd,
		stdin:  stdin,
		lines:  make(chan string, outputChanDepth),
		waitCh: make(chan struct{}),
	}

	go func() {
		defer pr.Close()
		defer close(p.lines)
		sc := bufio.NewScanner(pr)
		sc.Buffer(make([]byte, 64*1024), 1024*1024)
		for sc.Scan() {
			p.lines <- sc.Text()
		}
	}()

	go func() {
		p.waitErr = cmd.Wait()
		close(p.waitCh)
	}()

	return p, nil
}

// Lines returns the channel of captured output lines. It is closed when the
// output pipe reaches EOF, which happens once the process has exited.
func (p *proc) Lines() <-chan string { return p.lines }

// Write sends one command line (terminator included by the caller) to the
// process stdin.
func (p *proc) Write(b []byte) (int, error) { return p.stdin.Write(b) }

// Exited is the non-blocking liveness probe.
func (p *proc) Exited() bool {
	select {
	case <-p.waitCh:
		return true
	default:
		return false
	}
}

// WaitExit blocks until the process has been reaped and returns its exit error.
func (p *proc) WaitExit() error {
	<-p.waitCh
	return p.waitErr
}

// Kill forcefully terminates the process. The reaper goroutine still reaps it.
func (p *proc) Kill() error {
	if p.cmd.Process == nil {
		return nil
	}
	return p.cmd.Process.Kill()
}

// PID returns the OS process id.
func (p *proc) PID() int {
	if p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}
