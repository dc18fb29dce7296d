package store

import (
	"context"
	"errors"
)

// Logical document keys. Everything the appliance persists lives under one
// of these.
const (
	KeyPlayerState  = "radio:player"
	KeyPlaylist     = "radio:playlist"
	KeyWifi         = "radio:wifi"
	KeyDeviceConfig = "radio:config"
)

// ErrNotFound is returned when a key has no document.
var ErrNotFound = errors.New("document not found")

// Store is the key -> JSON document persistence collaborator. Writers
// back up the current document before overwriting it and restore the
// backup when the write fails.
type Store interface {
	// Get unmarshals the document at key into v.
	Get(ctx context.Context, key string, v interface{}) error
	// Set marshals v and stores it at key.
	Set(ctx context.Context, key string, v interface{}) error
	// Delete removes the document at key. Deleting a missing key is not
	// an error.
	Delete(ctx context.Context, key string) error
	// Close releases the underlying connection.
	Close() error
}

// WifiCredentials is the persisted network provisioning document.
// Provisioning itself happens outside this service; the document only
// round-trips through the store.
type WifiCredentials struct {
	SSID     string `json:"ssid"`
	Password string `json:"password"`
}

// DeviceConfig is the persisted device configuration document.
type DeviceConfig struct {
	DeviceName     string `json:"deviceName"`
	DisplayTimeout int    `json:"displayTimeout"` // seconds, 0 keeps the display on
	StartupVolume  int    `json:"startupVolume"`  // native scale
}

// DefaultDeviceConfig returns the configuration used before any has been
// saved.
func DefaultDeviceConfig() DeviceConfig {
	return DeviceConfig{
		DeviceName:     "1qradio",
		DisplayTimeout: 30,
		StartupVolume:  12,
	}
}
