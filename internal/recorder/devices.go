package recorder

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/mattn/go-shellwords"

	"github.com/laospeech/lao-asr-tools/internal/config"
)

// ListDevices writes the capture devices known to the configured backend
// to out. In exec mode this shells out to the platform enumerator,
// arecord -L by default.
func ListDevices(ctx context.Context, cfg config.RecordConfig, out io.Writer) error {
	switch cfg.Mode {
	case "mock":
		fmt.Fprintln(out, "mock: synthesized tone source")
		return nil
	case "exec":
		if cfg.ListCommand == "" {
			return fmt.Errorf("record list_command is empty")
		}
		parser := shellwords.NewParser()
		args, err := parser.Parse(cfg.ListCommand)
		if err != nil {
			return fmt.Errorf("parse list command: %w", err)
		}
		if len(args) == 0 {
			return fmt.Errorf("record list_command is empty")
		}
		command := exec.CommandContext(ctx, args[0], args[1:]...)
		command.Stdout = out
		var stderr bytes.Buffer
		command.Stderr = &stderr
		if err := command.Run(); err != nil {
			msg := strings.TrimSpace(stderr.String())
			if msg == "" {
				msg = err.Error()
			}
			return fmt.Errorf("%w: %s", ErrNoDevice, msg)
		}
		return nil
	default:
		return fmt.Errorf("unknown record mode %q", cfg.Mode)
	}
}
