package hal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpeed_String(t *testing.T) {
	tests := []struct {
		speed Speed
		want  string
	}{
		{SpeedUnknown, "unknown"},
		{SpeedLow, "low"},
		{SpeedFull, "full"},
		{SpeedHigh, "high"},
		{Speed(255), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.speed.String())
		})
	}
}

func TestSetupPacket_Is(t *testing.T) {
	setProtocol := SetupPacket{RequestType: 0x21, Request: 0x0B, Index: 2}
	assert.True(t, setProtocol.Is(0x21, 0x0B))
	assert.False(t, setProtocol.Is(0x21, 0x0A))
	assert.False(t, setProtocol.Is(0xA1, 0x0B))
}

func TestSetupPacket_Descriptor(t *testing.T) {
	getString := SetupPacket{RequestType: 0x80, Request: 0x06, Value: 0x0302, Index: 0x0409, Length: 0xFF}
	assert.Equal(t, uint8(0x03), getString.DescriptorType())
	assert.Equal(t, uint8(0x02), getString.DescriptorIndex())
}
