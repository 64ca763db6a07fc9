package recorder

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/laospeech/lao-asr-tools/internal/config"
)

func TestListDevicesMock(t *testing.T) {
	cfg := config.Default().Record
	cfg.Mode = "mock"

	var out bytes.Buffer
	if err := ListDevices(context.Background(), cfg, &out); err != nil {
		t.Fatalf("list devices: %v", err)
	}
	if out.Len() == 0 {
		t.Fatal("expected at least one device line")
	}
}

func TestListDevicesExec(t *testing.T) {
	cfg := config.Default().Record
	cfg.ListCommand = `sh -c "echo hw:0,0"`

	var out bytes.Buffer
	if err := ListDevices(context.Background(), cfg, &out); err != nil {
		t.Fatalf("list devices: %v", err)
	}
	if !strings.Contains(out.String(), "hw:0,0") {
		t.Fatalf("enumerator output not forwarded, got %q", out.String())
	}
}

func TestListDevicesExecMissingEnumerator(t *testing.T) {
	cfg := config.Default().Record
	cfg.ListCommand = "definitely-not-an-enumerator"

	var out bytes.Buffer
	err := ListDevices(context.Background(), cfg, &out)
	if !errors.Is(err, ErrNoDevice) {
		t.Fatalf("expected ErrNoDevice, got %v", err)
	}
}
