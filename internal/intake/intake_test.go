package intake

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHotplugEventFields(t *testing.T) {
	e := HotplugEvent{Action: "add", DevicePath: "/sys/devices/foo", Vendor: "Ettus", Product: "B200"}
	require.Equal(t, "add", e.Action)
	require.NotEmpty(t, e.DevicePath)
}
