package recorder

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-shellwords"

	"github.com/laospeech/lao-asr-tools/internal/config"
)

// execCapture shells out to a raw-PCM recording command, arecord by
// default. The command must write S16_LE samples to stdout.
type execCapture struct {
	cmd []string
	cfg config.RecordConfig
	mu  sync.Mutex
}

func newExecCapture(cfg config.RecordConfig) (Capture, error) {
	parser := shellwords.NewParser()
	args, err := parser.Parse(cfg.Command)
	if err != nil {
		return nil, fmt.Errorf("parse record command: %w", err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("record command is empty")
	}
	return &execCapture{cmd: args, cfg: cfg}, nil
}

func (e *execCapture) Record(ctx context.Context, duration time.Duration) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	args := append([]string{}, e.cmd[1:]...)
	args = append(args,
		"-r", strconv.Itoa(e.cfg.SampleRate),
		"-c", strconv.Itoa(e.cfg.Channels))
	if e.cfg.Device != "" {
		args = append(args, "-D", e.cfg.Device)
	}

	runCtx := ctx
	if duration > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}

	command := exec.CommandContext(runCtx, e.cmd[0], args...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	command.Stdout = &stdout
	command.Stderr = &stderr

	runErr := command.Run()

	pcm := stdout.Bytes()
	if len(pcm)%2 == 1 {
		// The kill can land mid-sample.
		pcm = pcm[:len(pcm)-1]
	}
	if len(pcm) > 0 {
		// The process is expected to die from the deadline or cancellation;
		// everything captured up to that point is kept.
		return pcm, nil
	}

	if runErr != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = runErr.Error()
		}
		return nil, fmt.Errorf("%w: %s", ErrNoDevice, msg)
	}
	return nil, ErrEmptyCapture
}
