package remoapi_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ciniml/remo-api/pkg/decode"
	"github.com/ciniml/remo-api/pkg/log"
	"github.com/ciniml/remo-api/pkg/model"
	"github.com/ciniml/remo-api/pkg/snapshot"
)

// openFixture opens a testdata document with its size, the way a caller
// decoding from a sized transport would.
func openFixture(t *testing.T, name string) (*os.File, int64) {
	t.Helper()
	f, err := os.Open(filepath.Join("testdata", name))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	info, err := f.Stat()
	require.NoError(t, err)
	return f, info.Size()
}

// TestE2E_DevicesToSnapshot runs the full pipeline: stream a devices
// document from a file, collect the records, persist them as a CBOR
// snapshot, and read the snapshot back.
func TestE2E_DevicesToSnapshot(t *testing.T) {
	f, size := openFixture(t, "devices.json")

	var events []log.Event
	opts := &decode.Options{
		Logger: log.LoggerFunc(func(ev log.Event) { events = append(events, ev) }),
	}

	col := snapshot.NewCollector()
	require.NoError(t, decode.ReadDevices(f, size, opts, col.Device))

	reg := col.Registry()
	require.Len(t, reg.Devices, 3)
	assert.Equal(t, "Remo-living", reg.Devices[0].Name)
	assert.Len(t, reg.Devices[0].Users, 1)
	assert.Len(t, reg.Devices[0].Events, 4)
	assert.Equal(t, "Remo-bedroom", reg.Devices[1].Name)
	assert.Empty(t, reg.Devices[1].Users)
	assert.Equal(t, "bob", reg.Devices[2].Users[0].Nickname)

	// Telemetry: one RECORD per device, SUBNODEs before their parent,
	// one DONE at the end.
	var records, subnodes, done int
	for _, ev := range events {
		switch ev.Category {
		case log.CategoryRecord:
			records++
		case log.CategorySubNode:
			subnodes++
		case log.CategoryDone:
			done++
		}
	}
	assert.Equal(t, 3, records)
	assert.Equal(t, 3, subnodes) // one user + newest_events, then one user
	assert.Equal(t, 1, done)

	store := snapshot.NewStore(filepath.Join(t.TempDir(), "state.cbor"))
	require.NoError(t, store.Save(reg))
	loaded, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Len(t, loaded.Devices, 3)
	for i := range reg.Devices {
		assert.Equal(t, reg.Devices[i].ID, loaded.Devices[i].ID)
		assert.Equal(t, reg.Devices[i].Name, loaded.Devices[i].Name)
		// CBOR stores times as Unix seconds, so compare instants.
		assert.True(t, loaded.Devices[i].CreatedAt.Equal(reg.Devices[i].CreatedAt),
			"device %d created_at: %v != %v", i, loaded.Devices[i].CreatedAt, reg.Devices[i].CreatedAt)
	}
	assert.Equal(t, reg.Devices[0].Users, loaded.Devices[0].Users)
}

// TestE2E_AppliancesConstrained decodes the appliances fixture under a
// deliberately small buffer and read size, proving the pipeline works with
// tight memory bounds.
func TestE2E_AppliancesConstrained(t *testing.T) {
	f, size := openFixture(t, "appliances.json")

	col := snapshot.NewCollector()
	opts := &decode.Options{BufferSize: 16, ReadSize: 7}
	require.NoError(t, decode.ReadAppliances(f, size, opts, col.Appliance))

	reg := col.Registry()
	require.Len(t, reg.Appliances, 2)

	ac := reg.Appliances[0]
	assert.Equal(t, model.ApplianceAC.String(), ac.Type)
	require.NotNil(t, ac.Device)
	assert.Equal(t, "Remo-living", ac.Device.Name)
	require.NotNil(t, ac.Model)
	assert.Equal(t, "Eolia", ac.Model.Series)

	sm := reg.Appliances[1]
	require.Len(t, sm.Properties, 5)
	assert.Equal(t, uint32(224), sm.Properties[2].EPC)
	assert.Equal(t, "14263", sm.Properties[2].Val)
}
