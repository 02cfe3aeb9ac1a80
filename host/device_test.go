package host

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/nibblemouse/host/hal"
	"github.com/ardnew/nibblemouse/pkg"
)

var keyboardAndMouse = []byte{
	9, 0x02, 59, 0, 2, 1, 0, 0xA0, 50,
	// Keyboard
	9, 0x04, 0, 0, 1, 0x03, 0x01, 0x01, 0,
	9, 0x21, 0x11, 0x01, 0, 1, 0x22, 63, 0,
	7, 0x05, 0x81, 0x03, 8, 0, 10,
	// Mouse
	9, 0x04, 1, 0, 1, 0x03, 0x01, 0x02, 0,
	9, 0x21, 0x11, 0x01, 0, 1, 0x22, 52, 0,
	7, 0x05, 0x82, 0x03, 4, 0, 8,
}

func TestParseConfiguration(t *testing.T) {
	var d Device
	require.NoError(t, d.parseConfiguration(keyboardAndMouse))

	assert.Equal(t, uint8(1), d.configValue)
	require.Len(t, d.mice, 1)
	assert.Equal(t, mouseInterface{number: 1, endpoint: 0x82, maxPacket: 4, interval: 8}, d.mice[0])
}

func TestParseConfigurationNoMouse(t *testing.T) {
	var d Device
	err := d.parseConfiguration(keyboardAndMouse[:34])
	assert.ErrorIs(t, err, pkg.ErrNoMouse)
}

func TestParseConfigurationOutEndpointOnly(t *testing.T) {
	data := []byte{
		9, 0x02, 25, 0, 1, 1, 0, 0xA0, 50,
		9, 0x04, 0, 0, 1, 0x03, 0x01, 0x02, 0,
		7, 0x05, 0x01, 0x03, 4, 0, 10,
	}
	var d Device
	assert.ErrorIs(t, d.parseConfiguration(data), pkg.ErrNoMouse)
}

func TestParseConfigurationTruncated(t *testing.T) {
	var d Device
	assert.ErrorIs(t, d.parseConfiguration([]byte{9, 0x02}), pkg.ErrDescriptorTooShort)

	// A malformed trailing descriptor ends the walk without panicking.
	data := append(append([]byte(nil), keyboardAndMouse...), 40, 0x05)
	require.NoError(t, d.parseConfiguration(data))
	assert.Len(t, d.mice, 1)
}

func TestParseDeviceDescriptor(t *testing.T) {
	data := []byte{18, 0x01, 0x00, 0x02, 0, 0, 0, 8, 0x6D, 0x04, 0x2D, 0xC5, 0x00, 0x01, 1, 2, 0, 1}
	var d Device
	require.NoError(t, d.parseDeviceDescriptor(data))
	assert.Equal(t, uint16(0x046D), d.VendorID())
	assert.Equal(t, uint16(0xC52D), d.ProductID())
	assert.Equal(t, uint8(2), d.productIndex)

	assert.ErrorIs(t, d.parseDeviceDescriptor(data[:8]), pkg.ErrDescriptorTooShort)

	data[1] = 0x02
	assert.ErrorIs(t, d.parseDeviceDescriptor(data), pkg.ErrEnumerationFailed)
}

func TestDecodeString(t *testing.T) {
	buf := []byte{10, 0x03, 'M', 0, 'o', 0, 'u', 0, 0x3A, 0x26}
	assert.Equal(t, "Mou", decodeString(buf, len(buf)))
	assert.Equal(t, "M", decodeString(buf, 4))
	assert.Equal(t, "", decodeString(buf, 1))
	assert.Equal(t, "", decodeString([]byte{0, 0x03}, 2))
}

func TestPollInterval(t *testing.T) {
	tests := []struct {
		name     string
		interval uint8
		speed    hal.Speed
		want     time.Duration
	}{
		{"unset", 0, hal.SpeedFull, DefaultPollInterval},
		{"low speed", 10, hal.SpeedLow, 10 * time.Millisecond},
		{"full speed", 1, hal.SpeedFull, time.Millisecond},
		{"high speed 1", 1, hal.SpeedHigh, 125 * time.Microsecond},
		{"high speed 4", 4, hal.SpeedHigh, time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mouseInterface{interval: tt.interval}
			assert.Equal(t, tt.want, m.pollInterval(tt.speed))
		})
	}
}

func TestInstanceString(t *testing.T) {
	assert.Equal(t, "3:1", Instance{Address: 3, Interface: 1}.String())
}
