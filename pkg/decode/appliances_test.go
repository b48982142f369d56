package decode

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ciniml/remo-api/pkg/model"
)

const appliancesDoc = `{
  "appliances": [
    {
      "id": "aaaaaaaa-1111-2222-3333-444444444444",
      "device": {
        "name": "Remo-living",
        "id": "11111111-2222-3333-4444-555555555555",
        "created_at": "2020-01-01T00:00:00Z",
        "firmware_version": "Remo/1.0.62-gabbf5bd"
      },
      "model": {
        "id": "bbbbbbbb-1111-2222-3333-444444444444",
        "country": "JP",
        "manufacturer": "panasonic",
        "remote_name": "rx2",
        "series": "Eolia",
        "name": "Panasonic AC 001",
        "image": "ico_ac_1"
      },
      "type": "AC",
      "nickname": "living aircon",
      "image": "ico_ac_1"
    },
    {
      "id": "cccccccc-1111-2222-3333-444444444444",
      "type": "EL_SMART_METER",
      "nickname": "smart meter",
      "image": "ico_smartmeter",
      "smart_meter": {
        "echonetlite_properties": [
          {
            "name": "coefficient",
            "epc": 211,
            "val": "1",
            "updated_at": "2023-04-01T00:00:00Z"
          },
          {
            "name": "normal_direction_cumulative_electric_energy",
            "epc": 224,
            "val": "14263",
            "updated_at": "2023-04-01T00:00:05Z"
          },
          {
            "name": "measured_instantaneous",
            "epc": 231,
            "val": "360",
            "updated_at": "2023-04-01T00:00:10Z"
          }
        ]
      }
    }
  ]
}`

type appEmission struct {
	appliance model.Appliance
	sub       *model.ApplianceSubNode
}

func collectAppliances(t *testing.T, doc string, opts *Options) ([]appEmission, error) {
	t.Helper()
	var out []appEmission
	err := ReadAppliances(strings.NewReader(doc), int64(len(doc)), opts, func(app *model.Appliance, sub *model.ApplianceSubNode) {
		e := appEmission{appliance: *app}
		if sub != nil {
			s := *sub
			e.sub = &s
		}
		out = append(out, e)
	})
	return out, err
}

func TestReadAppliances(t *testing.T) {
	got, err := collectAppliances(t, appliancesDoc, nil)
	require.NoError(t, err)

	// First appliance: device, model, then the appliance itself.
	// Second: three properties, then the appliance.
	require.Len(t, got, 7)

	require.NotNil(t, got[0].sub)
	require.Equal(t, model.SubNodeDevice, got[0].sub.Kind)
	assert.Equal(t, "Remo-living", got[0].sub.Device.Name)
	assert.Equal(t, uuid.MustParse("11111111-2222-3333-4444-555555555555"), got[0].sub.Device.ID)
	// The parent appliance's id was decoded before the sub-node closed.
	assert.Equal(t, uuid.MustParse("aaaaaaaa-1111-2222-3333-444444444444"), got[0].appliance.ID)

	require.NotNil(t, got[1].sub)
	require.Equal(t, model.SubNodeModel, got[1].sub.Kind)
	m := got[1].sub.Model
	assert.Equal(t, uuid.MustParse("bbbbbbbb-1111-2222-3333-444444444444"), m.ID)
	assert.Equal(t, "JP", m.Country)
	assert.Equal(t, "panasonic", m.Manufacturer)
	assert.Equal(t, "rx2", m.RemoteName)
	assert.Equal(t, "Eolia", m.Series)
	assert.Equal(t, "Panasonic AC 001", m.Name)
	assert.Equal(t, "ico_ac_1", m.Image)

	require.Nil(t, got[2].sub)
	assert.Equal(t, model.ApplianceAC, got[2].appliance.Type)
	assert.Equal(t, "living aircon", got[2].appliance.Nickname)
	assert.Equal(t, "ico_ac_1", got[2].appliance.Image)

	for i, want := range []struct {
		name string
		epc  uint32
		val  string
	}{
		{"coefficient", 211, "1"},
		{"normal_direction_cumulative_electric_energy", 224, "14263"},
		{"measured_instantaneous", 231, "360"},
	} {
		e := got[3+i]
		require.NotNil(t, e.sub, "emission %d", 3+i)
		require.Equal(t, model.SubNodeEchonetLiteProperty, e.sub.Kind)
		assert.Equal(t, want.name, e.sub.Property.Name)
		assert.Equal(t, want.epc, e.sub.Property.EPC)
		assert.Equal(t, want.val, e.sub.Property.Val)
	}
	assert.Equal(t, time.Date(2023, 4, 1, 0, 0, 10, 0, time.UTC), got[5].sub.Property.UpdatedAt)

	require.Nil(t, got[6].sub)
	assert.Equal(t, model.ApplianceSmartMeter, got[6].appliance.Type)
}

func TestReadAppliancesEmpty(t *testing.T) {
	for _, doc := range []string{`{"appliances": []}`, `{}`} {
		got, err := collectAppliances(t, doc, nil)
		require.NoError(t, err, "doc %s", doc)
		assert.Empty(t, got, "doc %s", doc)
	}
}

func TestReadAppliancesUnknownType(t *testing.T) {
	doc := `{"appliances": [{"id": "aaaaaaaa-1111-2222-3333-444444444444", "type": "TOASTER"}]}`
	_, err := collectAppliances(t, doc, nil)
	require.ErrorIs(t, err, ErrUnknownApplianceType)
	var de *Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "TOASTER", de.Detail)
}

func TestReadAppliancesIncomplete(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			"missing type",
			`{"appliances": [{"id": "aaaaaaaa-1111-2222-3333-444444444444"}]}`,
		},
		{
			"model without id",
			`{"appliances": [{"id": "aaaaaaaa-1111-2222-3333-444444444444", "type": "AC",
			  "model": {"name": "nameless"}}]}`,
		},
		{
			"property without name",
			`{"appliances": [{"id": "aaaaaaaa-1111-2222-3333-444444444444", "type": "EL_SMART_METER",
			  "smart_meter": {"echonetlite_properties": [{"epc": 211, "val": "1"}]}}]}`,
		},
		{
			"embedded device incomplete",
			`{"appliances": [{"id": "aaaaaaaa-1111-2222-3333-444444444444", "type": "AC",
			  "device": {"id": "11111111-2222-3333-4444-555555555555"}}]}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := collectAppliances(t, tt.doc, nil)
			require.ErrorIs(t, err, ErrIncompleteRecord)
		})
	}
}

func TestReadAppliancesUnknownKeysSkipped(t *testing.T) {
	doc := `{"appliances": [{
	  "id": "aaaaaaaa-1111-2222-3333-444444444444",
	  "type": "AC",
	  "settings": {"temp": "26", "mode": "cool"},
	  "signals": [{"id": "s1"}, {"id": "s2"}],
	  "smart_meter": {"vendor": {"code": 1}, "echonetlite_properties": [
	    {"name": "coefficient", "epc": 211, "val": "1",
	     "updated_at": "2020-01-01T00:00:00Z", "meta": {"source": "mock"}}
	  ]}
	}]}`
	got, err := collectAppliances(t, doc, nil)
	require.NoError(t, err)
	require.Len(t, got, 2) // property, appliance
	require.NotNil(t, got[0].sub)
	assert.Equal(t, model.SubNodeEchonetLiteProperty, got[0].sub.Kind)
	assert.Equal(t, "coefficient", got[0].sub.Property.Name)
	assert.Equal(t, model.ApplianceAC, got[1].appliance.Type)
}

func TestReadAppliancesEpcOutOfRange(t *testing.T) {
	// 2^32+224 would alias a valid code if the value were wrapped.
	doc := `{"appliances": [{
	  "id": "cccccccc-1111-2222-3333-444444444444",
	  "type": "EL_SMART_METER",
	  "smart_meter": {"echonetlite_properties": [
	    {"name": "bogus", "epc": 4294967520, "val": "1"},
	    {"name": "negative", "epc": -1, "val": "2"}
	  ]}
	}]}`
	got, err := collectAppliances(t, doc, nil)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, uint32(0), got[0].sub.Property.EPC)
	assert.Equal(t, uint32(0), got[1].sub.Property.EPC)
}

func TestReadAppliancesSmallBufferChunkedReads(t *testing.T) {
	want, err := collectAppliances(t, appliancesDoc, nil)
	require.NoError(t, err)
	got, err := collectAppliances(t, appliancesDoc, &Options{BufferSize: 8, ReadSize: 3})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
