package commands

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ciniml/remo-api/pkg/snapshot"
)

func TestRunDevices_Text(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	exitCode := RunDevices([]string{"../../../testdata/devices.json"}, stdout, stderr)

	if exitCode != exitSuccess {
		t.Errorf("expected exit code %d, got %d", exitSuccess, exitCode)
		t.Logf("stderr: %s", stderr.String())
	}

	out := stdout.String()
	for _, want := range []string{
		"device 11111111-2222-3333-4444-555555555555",
		`name="Remo-living"`,
		"user aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee",
		"superuser",
		"sensor te val=21.5",
		"Total: 3 devices",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunDevices_JSON(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	exitCode := RunDevices([]string{"--format", "json", "../../../testdata/devices.json"}, stdout, stderr)

	if exitCode != exitSuccess {
		t.Fatalf("expected exit code %d, got %d\nstderr: %s", exitSuccess, exitCode, stderr.String())
	}

	var reg snapshot.Registry
	if err := json.Unmarshal(stdout.Bytes(), &reg); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, stdout.String())
	}
	if len(reg.Devices) != 3 {
		t.Errorf("decoded %d devices, want 3", len(reg.Devices))
	}
	if len(reg.Devices[0].Users) != 1 || reg.Devices[0].Users[0].Nickname != "alice" {
		t.Errorf("first device users: %+v", reg.Devices[0].Users)
	}
}

func TestRunDevices_NoFile(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	exitCode := RunDevices([]string{}, stdout, stderr)

	if exitCode != exitCommandError {
		t.Errorf("expected exit code %d, got %d", exitCommandError, exitCode)
	}
	if !strings.Contains(stderr.String(), "no file specified") {
		t.Errorf("expected 'no file specified' in stderr, got: %s", stderr.String())
	}
}

func TestRunDevices_MissingFile(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	exitCode := RunDevices([]string{"nonexistent.json"}, stdout, stderr)

	if exitCode != exitCommandError {
		t.Errorf("expected exit code %d, got %d", exitCommandError, exitCode)
	}
}

func TestRunDevices_TightLimits(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	// Device names exceed the 4 byte limit, so strict decoding fails.
	exitCode := RunDevices([]string{
		"--config", "../../../testdata/limits-tight.yaml",
		"../../../testdata/devices.json",
	}, stdout, stderr)
	if exitCode != exitDecode {
		t.Errorf("expected exit code %d (decode error), got %d", exitDecode, exitCode)
	}
	if !strings.Contains(stderr.String(), "value too long") {
		t.Errorf("expected length error in stderr, got: %s", stderr.String())
	}

	// Truncate mode shortens instead.
	stdout.Reset()
	stderr.Reset()
	exitCode = RunDevices([]string{
		"--config", "../../../testdata/limits-tight.yaml",
		"--truncate",
		"../../../testdata/devices.json",
	}, stdout, stderr)
	if exitCode != exitSuccess {
		t.Fatalf("truncate run failed with exit code %d\nstderr: %s", exitCode, stderr.String())
	}
	if !strings.Contains(stdout.String(), `name="Remo"`) {
		t.Errorf("expected truncated name in output:\n%s", stdout.String())
	}
}

func TestRunDevices_Snapshot(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	path := filepath.Join(t.TempDir(), "state.cbor")

	exitCode := RunDevices([]string{"--snapshot", path, "../../../testdata/devices.json"}, stdout, stderr)
	if exitCode != exitSuccess {
		t.Fatalf("expected exit code %d, got %d\nstderr: %s", exitSuccess, exitCode, stderr.String())
	}

	reg, err := snapshot.NewStore(path).Load()
	if err != nil {
		t.Fatalf("loading snapshot: %v", err)
	}
	if reg == nil || len(reg.Devices) != 3 {
		t.Fatalf("snapshot registry: %+v", reg)
	}
}

func TestRunDevices_Verbose(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	exitCode := RunDevices([]string{"--verbose", "../../../testdata/devices.json"}, stdout, stderr)
	if exitCode != exitSuccess {
		t.Fatalf("expected exit code %d, got %d", exitSuccess, exitCode)
	}
	if !strings.Contains(stderr.String(), "category=RECORD") {
		t.Errorf("expected decode telemetry in stderr, got: %s", stderr.String())
	}
}

func TestRunAppliances_Text(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	exitCode := RunAppliances([]string{"../../../testdata/appliances.json"}, stdout, stderr)

	if exitCode != exitSuccess {
		t.Fatalf("expected exit code %d, got %d\nstderr: %s", exitSuccess, exitCode, stderr.String())
	}

	out := stdout.String()
	for _, want := range []string{
		"appliance aaaaaaaa-1111-2222-3333-444444444444 type=AC",
		`model bbbbbbbb-1111-2222-3333-444444444444 name="Panasonic AC 001"`,
		"property coefficient epc=211",
		"property measured_instantaneous epc=231",
		"Total: 2 appliances",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunAppliances_JSON(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	exitCode := RunAppliances([]string{"-f", "json", "../../../testdata/appliances.json"}, stdout, stderr)
	if exitCode != exitSuccess {
		t.Fatalf("expected exit code %d, got %d\nstderr: %s", exitSuccess, exitCode, stderr.String())
	}

	var reg snapshot.Registry
	if err := json.Unmarshal(stdout.Bytes(), &reg); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(reg.Appliances) != 2 {
		t.Fatalf("decoded %d appliances, want 2", len(reg.Appliances))
	}
	if len(reg.Appliances[1].Properties) != 5 {
		t.Errorf("smart meter properties: %+v", reg.Appliances[1].Properties)
	}
}

func TestRunAppliances_BadDocument(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	// A devices document on the appliances endpoint decodes to nothing,
	// but broken JSON is a decode error.
	exitCode := RunAppliances([]string{"../../../testdata/devices.json"}, stdout, stderr)
	if exitCode != exitSuccess {
		t.Errorf("foreign document: expected exit code %d, got %d", exitSuccess, exitCode)
	}
	if !strings.Contains(stdout.String(), "Total: 0 appliances") {
		t.Errorf("expected empty result, got:\n%s", stdout.String())
	}
}
