package plugin

import (
	"context"

	"github.com/codifryed/coolercontrold/internal/backend"
	"github.com/codifryed/coolercontrold/internal/device"
	"github.com/codifryed/coolercontrold/internal/profile"
)

// remoteDevice is what a plugin reports for one device over
// ListDevices/InitializeDevice.
type remoteDevice struct {
	UID      string
	Name     string
	Index    int
	DriverID string
	Info     device.Info
}

// remoteStatus is what a plugin reports for one device over Status.
type remoteStatus struct {
	UID    string
	Status device.Status
}

// pluginClient is the RPC surface this adapter needs from an external
// service-plugin process. The only implementation in this package is
// unconfiguredClient; no gRPC-backed implementation ships.
type pluginClient interface {
	Health(ctx context.Context) error
	ListDevices(ctx context.Context) ([]remoteDevice, error)
	Status(ctx context.Context, deviceUID string) (remoteStatus, error)
	ResetChannel(ctx context.Context, deviceUID, channel string) error
	EnableManualFanControl(ctx context.Context, deviceUID, channel string) error
	FixedDuty(ctx context.Context, deviceUID, channel string, dutyPct float64) error
	SpeedProfile(ctx context.Context, deviceUID, channel string, source profile.TempSource, points []profile.GraphPoint) error
	Lighting(ctx context.Context, deviceUID, channel string, setting backend.LightingSetting) error
	Lcd(ctx context.Context, deviceUID, channel string, setting backend.LCDSetting) error
	Shutdown(ctx context.Context) error
}

// unconfiguredClient is the client every Adapter uses; it reports zero
// devices, its Shutdown succeeds, and every other call fails with
// backend.ErrHardwareUnreadable, so the factory can
// still register this adapter without a live plugin process present.
type unconfiguredClient struct{}

func (unconfiguredClient) Health(context.Context) error { return backend.ErrHardwareUnreadable }
func (unconfiguredClient) ListDevices(context.Context) ([]remoteDevice, error) { return nil, nil }
func (unconfiguredClient) Status(context.Context, string) (remoteStatus, error) {
	return remoteStatus{}, backend.ErrHardwareUnreadable
}
func (unconfiguredClient) ResetChannel(context.Context, string, string) error {
	return backend.ErrHardwareUnreadable
}
func (unconfiguredClient) EnableManualFanControl(context.Context, string, string) error {
	return backend.ErrHardwareUnreadable
}
func (unconfiguredClient) FixedDuty(context.Context, string, string, float64) error {
	return backend.ErrHardwareUnreadable
}
func (unconfiguredClient) SpeedProfile(context.Context, string, string, profile.TempSource, []profile.GraphPoint) error {
	return backend.ErrHardwareUnreadable
}
func (unconfiguredClient) Lighting(context.Context, string, string, backend.LightingSetting) error {
	return backend.ErrHardwareUnreadable
}
func (unconfiguredClient) Lcd(context.Context, string, string, backend.LCDSetting) error {
	return backend.ErrHardwareUnreadable
}
func (unconfiguredClient) Shutdown(context.Context) error { return nil }
