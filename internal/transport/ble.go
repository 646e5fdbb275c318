// Package transport talks to the lamp. The BLE implementation speaks the
// Triones controller protocol; a console implementation exists for running
// without hardware.
package transport

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"tinygo.org/x/bluetooth"
)

var (
	serviceUUID = bluetooth.New16BitUUID(0xFFE5)
	controlUUID = bluetooth.New16BitUUID(0xFFE9)
)

// colorPacket frames an RGB triple for the Triones controller.
func colorPacket(r, g, b uint8) []byte {
	return []byte{0x56, r, g, b, 0x00, 0xF0, 0xAA}
}

var (
	powerOnPacket  = []byte{0xCC, 0x23, 0x33}
	powerOffPacket = []byte{0xCC, 0x24, 0x33}
)

// Lamp is a BLE connection to a Triones-style RGB controller. Writes go
// without response; a failed write triggers one reconnect-and-retry before
// the error surfaces to the caller.
type Lamp struct {
	address string
	timeout time.Duration
	logger  *slog.Logger

	mu      sync.Mutex
	adapter *bluetooth.Adapter
	device  bluetooth.Device
	control bluetooth.DeviceCharacteristic
	ready   bool
}

// Dial scans for the lamp by MAC address, connects, and powers it on. The
// scan timeout is the only meaningful timeout in the system.
func Dial(address string, timeout time.Duration, logger *slog.Logger) (*Lamp, error) {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Lamp{
		address: strings.ToUpper(address),
		timeout: timeout,
		logger:  logger,
		adapter: bluetooth.DefaultAdapter,
	}
	if err := l.adapter.Enable(); err != nil {
		return nil, fmt.Errorf("enable bluetooth adapter: %w", err)
	}
	if err := l.connect(); err != nil {
		return nil, err
	}
	if err := l.PowerOn(); err != nil {
		return nil, err
	}
	return l, nil
}

// SendColor pushes one RGB frame at the lamp.
func (l *Lamp) SendColor(r, g, b uint8) error {
	return l.write(colorPacket(r, g, b))
}

// PowerOn wakes the controller.
func (l *Lamp) PowerOn() error {
	return l.write(powerOnPacket)
}

// PowerOff darkens the controller. Called after the shutdown fade.
func (l *Lamp) PowerOff() error {
	return l.write(powerOffPacket)
}

// Close disconnects from the lamp.
func (l *Lamp) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.ready {
		return nil
	}
	l.ready = false
	return l.device.Disconnect()
}

func (l *Lamp) write(packet []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.ready {
		if err := l.connectLocked(); err != nil {
			return err
		}
	}
	if _, err := l.control.WriteWithoutResponse(packet); err == nil {
		return nil
	}

	// One reconnect-and-retry; beyond that the renderer's next tick will
	// try again anyway.
	l.ready = false
	if err := l.connectLocked(); err != nil {
		return err
	}
	if _, err := l.control.WriteWithoutResponse(packet); err != nil {
		l.ready = false
		return fmt.Errorf("write control characteristic: %w", err)
	}
	return nil
}

func (l *Lamp) connect() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.connectLocked()
}

func (l *Lamp) connectLocked() error {
	addr, err := l.scan()
	if err != nil {
		return err
	}

	device, err := l.adapter.Connect(addr, bluetooth.ConnectionParams{})
	if err != nil {
		return fmt.Errorf("connect %s: %w", l.address, err)
	}

	services, err := device.DiscoverServices([]bluetooth.UUID{serviceUUID})
	if err != nil || len(services) == 0 {
		_ = device.Disconnect()
		return fmt.Errorf("discover control service on %s: %w", l.address, err)
	}
	chars, err := services[0].DiscoverCharacteristics([]bluetooth.UUID{controlUUID})
	if err != nil || len(chars) == 0 {
		_ = device.Disconnect()
		return fmt.Errorf("discover control characteristic on %s: %w", l.address, err)
	}

	l.device = device
	l.control = chars[0]
	l.ready = true
	l.logger.Info("lamp connected", slog.String("address", l.address))
	return nil
}

// scan looks for an advertisement from the configured address within the
// connect timeout.
func (l *Lamp) scan() (bluetooth.Address, error) {
	var (
		found bluetooth.Address
		once  sync.Once
		done  = make(chan struct{})
	)

	timer := time.AfterFunc(l.timeout, func() {
		_ = l.adapter.StopScan()
	})
	defer timer.Stop()

	err := l.adapter.Scan(func(adapter *bluetooth.Adapter, result bluetooth.ScanResult) {
		if strings.EqualFold(result.Address.String(), l.address) {
			once.Do(func() {
				found = result.Address
				close(done)
			})
			_ = adapter.StopScan()
		}
	})
	if err != nil {
		return bluetooth.Address{}, fmt.Errorf("scan for %s: %w", l.address, err)
	}

	select {
	case <-done:
		return found, nil
	default:
		return bluetooth.Address{}, fmt.Errorf("lamp %s not found within %v", l.address, l.timeout)
	}
}
