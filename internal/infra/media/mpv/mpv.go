// Package mpv provides an audio output driven through mpv's JSON IPC.
package mpv

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/albumbox/internal/infra/media"
)

// Observed property IDs.
const (
	propTimePos  = 1
	propDuration = 2
	propVolume   = 3
)

// Config represents the configuration for the mpv output.
type Config struct {
	Binary         string   `mapstructure:"binary" default:"mpv" validate:"required"`
	SocketPath     string   `mapstructure:"socket_path"`
	StartTimeoutMs int      `mapstructure:"start_timeout_ms" default:"5000" validate:"gte=100"`
	ExtraArgs      []string `mapstructure:"extra_args"`
	EventBuffer    int      `mapstructure:"event_buffer" default:"64" validate:"gte=1"`
}

// command is a JSON IPC request.
type command struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id"`
}

// message is a JSON IPC reply or event.
type message struct {
	Event     string          `json:"event"`
	ID        int             `json:"id"`
	Name      string          `json:"name"`
	Data      json.RawMessage `json:"data"`
	RequestID int64           `json:"request_id"`
	Error     string          `json:"error"`
}

// Output is an audio output backed by an mpv process.
type Output struct {
	*media.Dispatcher

	writeMu   sync.Mutex
	conn      io.ReadWriteCloser
	enc       *json.Encoder
	requestID int64

	cmd      *exec.Cmd
	socket   string
	readDone chan struct{}

	closeOnce sync.Once
}

// NewFromSettings starts an mpv output from raw settings.
func NewFromSettings(ctx context.Context, settings map[string]any) (*Output, error) {
	var cfg Config
	if err := mapstructure.Decode(settings, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to decode settings")
	}
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, errors.Wrap(err, "validation failed")
	}
	zlog.Debug().Msgf("mpv output config: %+v", cfg)
	return Start(ctx, cfg)
}

// Start spawns mpv in idle mode and connects to its IPC socket.
func Start(ctx context.Context, cfg Config) (*Output, error) {
	socket := cfg.SocketPath
	if socket == "" {
		socket = filepath.Join(os.TempDir(), "albumbox-mpv-"+uuid.New().String()+".sock")
	}

	args := []string{
		"--idle=yes",
		"--no-video",
		"--no-terminal",
		"--pause=yes",
		"--input-ipc-server=" + socket,
	}
	args = append(args, cfg.ExtraArgs...)

	cmd := exec.Command(cfg.Binary, args...)
	if err := cmd.Start(); err != nil {
		return nil, errors.Wrapf(err, "failed to start %s", cfg.Binary)
	}
	zlog.Info().Msgf("mpv started: pid=%d socket=%s", cmd.Process.Pid, socket)

	conn, err := dial(ctx, socket, time.Duration(cfg.StartTimeoutMs)*time.Millisecond)
	if err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return nil, err
	}

	o := newOutput(conn, cfg.EventBuffer)
	o.cmd = cmd
	o.socket = socket
	return o, nil
}

// dial waits for the IPC socket to accept connections.
func dial(ctx context.Context, socket string, timeout time.Duration) (net.Conn, error) {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		var d net.Dialer
		conn, err := d.DialContext(ctx, "unix", socket)
		if err == nil {
			return conn, nil
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
	return nil, errors.Wrapf(lastErr, "mpv IPC socket %s not ready after %v", socket, timeout)
}

// newOutput wraps an established IPC connection and starts observing the
// properties that feed the event stream.
func newOutput(conn io.ReadWriteCloser, buffer int) *Output {
	o := &Output{
		Dispatcher: media.NewDispatcher(buffer),
		conn:       conn,
		enc:        json.NewEncoder(conn),
		readDone:   make(chan struct{}),
	}
	go o.readLoop()

	_ = o.send("observe_property", propTimePos, "time-pos")
	_ = o.send("observe_property", propDuration, "duration")
	_ = o.send("observe_property", propVolume, "volume")
	return o
}

// Load replaces the current file without starting playback.
func (o *Output) Load(source string) error {
	if err := o.send("set_property", "pause", true); err != nil {
		return err
	}
	if source == "" {
		return o.send("stop")
	}
	if err := o.send("loadfile", source, "replace"); err != nil {
		return err
	}
	o.Emit(media.Event{Type: media.EventPositionChanged, Value: 0})
	return nil
}

// Play resumes output.
func (o *Output) Play() error {
	return o.send("set_property", "pause", false)
}

// Pause halts output.
func (o *Output) Pause() error {
	return o.send("set_property", "pause", true)
}

// Seek jumps to an absolute position. mpv clamps it to the file.
func (o *Output) Seek(seconds float64) error {
	if seconds < 0 {
		seconds = 0
	}
	return o.send("seek", seconds, "absolute")
}

// SetVolume sets the volume from a level in [0, 1].
func (o *Output) SetVolume(level float64) error {
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}
	return o.send("set_property", "volume", level*100)
}

// Clear stops playback and unloads the file.
func (o *Output) Clear() error {
	return o.send("stop")
}

// Close quits mpv and stops event delivery.
func (o *Output) Close() error {
	var err error
	o.closeOnce.Do(func() {
		_ = o.send("quit")
		err = o.conn.Close()
		<-o.readDone
		o.Dispatcher.Close()

		if o.cmd != nil {
			_ = o.cmd.Wait()
		}
		if o.socket != "" {
			_ = os.Remove(o.socket)
		}
	})
	return err
}

// send writes one command. Replies are handled by the read loop.
func (o *Output) send(args ...any) error {
	o.writeMu.Lock()
	defer o.writeMu.Unlock()

	o.requestID++
	if err := o.enc.Encode(command{Command: args, RequestID: o.requestID}); err != nil {
		return errors.Wrapf(err, "mpv: failed to send %v", args[0])
	}
	return nil
}

func (o *Output) readLoop() {
	defer close(o.readDone)

	scanner := bufio.NewScanner(o.conn)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		var msg message
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			zlog.Debug().Msgf("mpv: ignoring malformed message: %v", err)
			continue
		}
		o.handle(msg)
	}
	if err := scanner.Err(); err != nil {
		zlog.Debug().Msgf("mpv: IPC read stopped: %v", err)
	}
}

func (o *Output) handle(msg message) {
	if msg.Event == "" {
		if msg.Error != "" && msg.Error != "success" {
			zlog.Warn().Msgf("mpv: command failed: request_id=%d error=%s", msg.RequestID, msg.Error)
		}
		return
	}
	if msg.Event != "property-change" {
		return
	}

	var value *float64
	if err := json.Unmarshal(msg.Data, &value); err != nil || value == nil {
		return
	}

	switch msg.ID {
	case propTimePos:
		o.Emit(media.Event{Type: media.EventPositionChanged, Value: *value})
	case propDuration:
		o.Emit(media.Event{Type: media.EventDurationKnown, Value: *value})
	case propVolume:
		level := *value / 100
		if level > 1 {
			level = 1
		}
		o.Emit(media.Event{Type: media.EventVolumeChanged, Value: level})
	default:
		zlog.Debug().Msgf("mpv: unexpected property change: name=%s", msg.Name)
	}
}
