package video

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/glabrego/pixfeed-cli/internal/log"
)

const (
	socketPollDelay = 50 * time.Millisecond
	ipcReadDeadline = time.Second
	quitGrace       = time.Second
)

// ErrOpenerClosed is returned by Open after Shutdown.
var ErrOpenerClosed = errors.New("video opener is shut down")

// MPVOpener starts one mpv process per session and drives it over JSON IPC.
// It keeps track of the players it started so Shutdown can stop them all
// before the program exits. Use it by pointer.
type MPVOpener struct {
	Binary       string
	SocketDir    string
	StartTimeout time.Duration
	// QuitGrace is how long a player may take to quit before it is killed.
	QuitGrace time.Duration

	mu       sync.Mutex
	sessions map[*mpvSession]struct{}
	closed   bool
}

func (o *MPVOpener) Open(ctx context.Context, rawURL string, opts Options) (Session, error) {
	o.mu.Lock()
	closed := o.closed
	o.mu.Unlock()
	if closed {
		return nil, ErrOpenerClosed
	}

	target, err := sanitizeMediaTarget(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid media target: %w", err)
	}

	binary := o.Binary
	if binary == "" {
		binary = "mpv"
	}
	path, err := exec.LookPath(binary)
	if err != nil {
		return nil, fmt.Errorf("%s is not installed", binary)
	}

	socketPath, err := newSocketPath(o.SocketDir)
	if err != nil {
		return nil, err
	}

	args := []string{
		"--no-terminal",
		"--really-quiet",
		"--idle=yes",
		"--force-window=yes",
		"--pause=yes",
		fmt.Sprintf("--input-ipc-server=%s", socketPath),
	}
	if opts.Loop {
		args = append(args, "--loop-file=inf")
	}
	if opts.Muted {
		args = append(args, "--mute=yes")
	}
	if title := sanitizeTitle(opts.Title); title != "" {
		args = append(args, fmt.Sprintf("--force-media-title=%s", title))
	}
	args = append(args, target)

	cmd := exec.Command(path, args...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = nil, nil, nil
	cmd.SysProcAttr = sysProcAttr()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", binary, err)
	}

	s := o.newSession(socketPath, cmd)
	if !o.track(s) {
		_ = s.Close()
		<-s.stopped
		return nil, ErrOpenerClosed
	}

	timeout := o.StartTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if err := s.waitForSocket(ctx, timeout); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func (o *MPVOpener) newSession(socketPath string, cmd *exec.Cmd) *mpvSession {
	grace := o.QuitGrace
	if grace <= 0 {
		grace = quitGrace
	}
	s := &mpvSession{
		socketPath: socketPath,
		cmd:        cmd,
		grace:      grace,
		exited:     make(chan struct{}),
		stopped:    make(chan struct{}),
		observers:  make(map[int]func(Status)),
	}
	s.release = func() { o.untrack(s) }
	go func() {
		_ = cmd.Wait()
		close(s.exited)
	}()
	return s
}

func (o *MPVOpener) track(s *mpvSession) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return false
	}
	if o.sessions == nil {
		o.sessions = make(map[*mpvSession]struct{})
	}
	o.sessions[s] = struct{}{}
	return true
}

func (o *MPVOpener) untrack(s *mpvSession) {
	o.mu.Lock()
	delete(o.sessions, s)
	o.mu.Unlock()
}

// Shutdown refuses further Opens, closes every player still running and
// waits for them to exit. Players left when ctx ends are killed outright.
func (o *MPVOpener) Shutdown(ctx context.Context) error {
	o.mu.Lock()
	o.closed = true
	live := make([]*mpvSession, 0, len(o.sessions))
	for s := range o.sessions {
		live = append(live, s)
	}
	o.mu.Unlock()

	for _, s := range live {
		_ = s.Close()
	}
	for _, s := range live {
		select {
		case <-s.stopped:
		case <-ctx.Done():
			for _, rest := range live {
				_ = killProcess(rest.cmd)
			}
			return ctx.Err()
		}
	}
	if len(live) > 0 {
		log.Debugf("stopped %d mpv players", len(live))
	}
	return nil
}

type mpvSession struct {
	socketPath string
	cmd        *exec.Cmd
	grace      time.Duration
	exited     chan struct{}
	stopped    chan struct{}
	release    func()

	mu        sync.Mutex
	conn      net.Conn
	observers map[int]func(Status)
	nextID    int
	props     mpvProps
	closeOnce sync.Once
}

type mpvProps struct {
	paused         bool
	pausedForCache bool
	coreIdle       bool
}

func (p mpvProps) status() Status {
	switch {
	case p.paused:
		return StatusPaused
	case p.pausedForCache || p.coreIdle:
		return StatusWaiting
	default:
		return StatusPlaying
	}
}

func (s *mpvSession) Play() error {
	_, err := s.command("set_property", "pause", false)
	return err
}

func (s *mpvSession) Pause() error {
	_, err := s.command("set_property", "pause", true)
	return err
}

func (s *mpvSession) SetMuted(muted bool) error {
	_, err := s.command("set_property", "mute", muted)
	return err
}

func (s *mpvSession) CancelPendingPrerolls() {
	if _, err := s.command("drop-buffers"); err != nil {
		log.Debugf("mpv drop-buffers: %v", err)
	}
}

func (s *mpvSession) Observe(fn func(Status)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers[id] = fn
	needListener := s.conn == nil
	s.mu.Unlock()

	if needListener {
		if err := s.startListener(); err != nil {
			log.Warnf("mpv event listener on %s: %v", s.socketPath, err)
		}
	}

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

func (s *mpvSession) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		conn := s.conn
		s.conn = nil
		s.observers = make(map[int]func(Status))
		s.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}

		// Close returns at once; MPVOpener.Shutdown waits on stopped.
		go s.stop()
	})
	return nil
}

// stop asks the player to quit, kills its process group after the grace
// period and removes the socket.
func (s *mpvSession) stop() {
	defer close(s.stopped)
	_, _ = doSendCommand(s.socketPath, []any{"quit"})
	select {
	case <-s.exited:
	case <-time.After(s.grace):
		if err := killProcess(s.cmd); err != nil {
			log.Debugf("kill mpv: %v", err)
		}
		select {
		case <-s.exited:
		case <-time.After(s.grace):
			log.Warnf("mpv pid %d did not exit", s.cmd.Process.Pid)
		}
	}
	_ = os.Remove(s.socketPath)
	if s.release != nil {
		s.release()
	}
}

// startListener opens the persistent connection that carries both the
// observe_property requests and the property-change events they produce.
func (s *mpvSession) startListener() error {
	conn, err := net.Dial("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	for i, name := range []string{"pause", "paused-for-cache", "core-idle"} {
		payload, err := json.Marshal(ipcCommand{Command: []any{"observe_property", i + 1, name}})
		if err != nil {
			_ = conn.Close()
			return fmt.Errorf("marshal: %w", err)
		}
		if _, err := conn.Write(append(payload, '\n')); err != nil {
			_ = conn.Close()
			return fmt.Errorf("observe %s: %w", name, err)
		}
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	go s.readLoop(conn)
	return nil
}

func (s *mpvSession) readLoop(conn net.Conn) {
	dec := json.NewDecoder(conn)
	for {
		var event map[string]any
		if err := dec.Decode(&event); err != nil {
			return
		}
		if event["event"] != "property-change" {
			continue
		}
		name, _ := event["name"].(string)
		value, _ := event["data"].(bool)

		s.mu.Lock()
		switch name {
		case "pause":
			s.props.paused = value
		case "paused-for-cache":
			s.props.pausedForCache = value
		case "core-idle":
			s.props.coreIdle = value
		default:
			s.mu.Unlock()
			continue
		}
		status := s.props.status()
		observers := make([]func(Status), 0, len(s.observers))
		for _, fn := range s.observers {
			observers = append(observers, fn)
		}
		s.mu.Unlock()

		for _, fn := range observers {
			fn(status)
		}
	}
}

func (s *mpvSession) command(args ...any) (any, error) {
	select {
	case <-s.exited:
		return nil, errors.New("mpv has exited")
	default:
	}
	return doSendCommand(s.socketPath, args)
}

func (s *mpvSession) waitForSocket(ctx context.Context, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		conn, err := net.Dial("unix", s.socketPath)
		if err == nil {
			_ = conn.Close()
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("mpv socket not ready after %s", timeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.exited:
			return errors.New("mpv exited before its socket was ready")
		case <-time.After(socketPollDelay):
		}
	}
}

type ipcCommand struct {
	Command []any `json:"command"`
}

type ipcResponse struct {
	Data  any    `json:"data"`
	Error string `json:"error"`
}

func doSendCommand(socketPath string, command []any) (any, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	payload, err := json.Marshal(ipcCommand{Command: command})
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	if _, err := conn.Write(append(payload, '\n')); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}
	if err := conn.SetReadDeadline(time.Now().Add(ipcReadDeadline)); err != nil {
		return nil, fmt.Errorf("set deadline: %w", err)
	}

	dec := json.NewDecoder(conn)
	for {
		var resp map[string]json.RawMessage
		if err := dec.Decode(&resp); err != nil {
			return nil, fmt.Errorf("read: %w", err)
		}
		// Events may be interleaved with the reply.
		if _, isEvent := resp["event"]; isEvent {
			continue
		}
		var parsed ipcResponse
		if raw, ok := resp["error"]; ok {
			_ = json.Unmarshal(raw, &parsed.Error)
		}
		if raw, ok := resp["data"]; ok {
			_ = json.Unmarshal(raw, &parsed.Data)
		}
		if parsed.Error != "" && parsed.Error != "success" {
			return nil, fmt.Errorf("mpv error: %s", parsed.Error)
		}
		return parsed.Data, nil
	}
}

func newSocketPath(dir string) (string, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate socket name: %w", err)
	}
	return filepath.Join(dir, fmt.Sprintf("pixfeed-%x.sock", b)), nil
}

// sanitizeMediaTarget rejects anything mpv could read as a flag.
func sanitizeMediaTarget(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", errors.New("empty URL")
	}
	if strings.HasPrefix(trimmed, "-") {
		return "", errors.New("URL must not start with '-'")
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("parse URL: %w", err)
	}
	switch parsed.Scheme {
	case "http", "https", "file":
	default:
		return "", fmt.Errorf("unsupported URL scheme: %q", parsed.Scheme)
	}
	return trimmed, nil
}

func sanitizeTitle(title string) string {
	title = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, title)
	return strings.TrimSpace(title)
}
