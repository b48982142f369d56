package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ciniml/remo-api/pkg/decode"
	"github.com/ciniml/remo-api/pkg/model"
	"github.com/ciniml/remo-api/pkg/snapshot"
)

// RunDevices runs the devices command.
func RunDevices(args []string, stdout, stderr io.Writer) int {
	opts, err := parseDumpArgs("devices", args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	if opts.File == "" {
		fmt.Fprintln(stderr, "Error: no file specified")
		printDevicesUsage(stderr)
		return exitCommandError
	}

	decOpts, err := decodeOptions(opts, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	in, totalLength, err := openInput(opts.File)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	defer in.Close()

	col := snapshot.NewCollector()
	fn := col.Device
	if opts.Format == "text" {
		// Print as records stream out, before collecting them.
		fn = func(dev *model.Device, sub *model.DeviceSubNode) {
			printDeviceRecord(stdout, dev, sub)
			col.Device(dev, sub)
		}
	}

	if err := decode.ReadDevices(in, totalLength, decOpts, fn); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitDecode
	}

	if opts.Format == "json" {
		data, _ := json.MarshalIndent(col.Registry(), "", "  ")
		fmt.Fprintln(stdout, string(data))
	} else {
		fmt.Fprintf(stdout, "Total: %d devices\n", len(col.Registry().Devices))
	}

	if err := saveSnapshot(opts, col); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	return exitSuccess
}

func printDeviceRecord(w io.Writer, dev *model.Device, sub *model.DeviceSubNode) {
	if sub == nil {
		fmt.Fprintf(w, "device %s name=%q", dev.ID, dev.Name)
		if dev.FirmwareVersion != "" {
			fmt.Fprintf(w, " fw=%q", dev.FirmwareVersion)
		}
		if !dev.MacAddress.IsZero() {
			fmt.Fprintf(w, " mac=%s", dev.MacAddress)
		}
		fmt.Fprintln(w)
		return
	}
	switch sub.Kind {
	case model.SubNodeUser:
		fmt.Fprintf(w, "  user %s nickname=%q", sub.User.ID, sub.User.Nickname)
		if sub.User.Superuser {
			fmt.Fprint(w, " superuser")
		}
		fmt.Fprintln(w)
	case model.SubNodeNewestEvents:
		printSensor(w, "te", sub.NewestEvents.Temperature)
		printSensor(w, "hu", sub.NewestEvents.Humidity)
		printSensor(w, "il", sub.NewestEvents.Illumination)
		printSensor(w, "mo", sub.NewestEvents.Motion)
	}
}

func printSensor(w io.Writer, name string, v *model.SensorValue) {
	if v == nil {
		return
	}
	fmt.Fprintf(w, "  sensor %s val=%v at=%s\n", name, v.Val, v.CreatedAt.Format("2006-01-02T15:04:05Z07:00"))
}

func printDevicesUsage(w io.Writer) {
	fmt.Fprintln(w, `Usage: remo-dump devices [options] <file>

Decode a devices document and print each record as it completes.
Pass "-" to read from stdin.

Options:
  -f, -format string   Output format: text or json (default "text")
  -config string       YAML file overriding field-length limits
  -snapshot string     Write decoded state to this CBOR snapshot file
  -truncate            Shorten over-long string fields instead of failing
  -read-size int       Transport read chunk size in bytes
  -verbose             Log decode progress to stderr`)
}
