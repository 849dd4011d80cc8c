package pointer

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrDeviceTimeout is returned when a controller register wait runs out of
// its spin budget.
var ErrDeviceTimeout = errors.New("pointer device timeout")

// Controller status register bits.
const (
	StatusOutputFull byte = 0x01
	StatusInputFull  byte = 0x02
	StatusAuxData    byte = 0x20
)

// Controller commands and aux device commands.
const (
	CmdDisableAux    byte = 0xA7
	CmdEnableAux     byte = 0xA8
	CmdWriteAux      byte = 0xD4
	AuxReset         byte = 0xFF
	AuxSetDefaults   byte = 0xF6
	AuxEnableReport  byte = 0xF4
	AuxDisableReport byte = 0xF5
	AuxAck           byte = 0xFA
	AuxSelfTestPass  byte = 0xAA
)

// DefaultSpinBudget bounds each register wait.
const DefaultSpinBudget = 100000

// Source is a non-blocking pointer byte source.
type Source interface {
	TryReadByte() (byte, bool)
	DataAvailable() bool
}

// Port is an i8042-style controller: a status register, a data register and
// a command register.
type Port interface {
	Status() byte
	ReadData() byte
	WriteCommand(cmd byte)
	WriteData(b byte)
}

// Controller drives the aux device behind a Port. All waits are bounded.
type Controller struct {
	port   Port
	spins  int
	logger *slog.Logger
}

// ControllerConfig configures a Controller.
type ControllerConfig struct {
	SpinBudget int
	Logger     *slog.Logger
}

// NewController wraps port.
func NewController(port Port, cfg ControllerConfig) *Controller {
	if cfg.SpinBudget <= 0 {
		cfg.SpinBudget = DefaultSpinBudget
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Controller{port: port, spins: cfg.SpinBudget, logger: cfg.Logger}
}

func (c *Controller) waitWritable() error {
	for i := 0; i < c.spins; i++ {
		if c.port.Status()&StatusInputFull == 0 {
			return nil
		}
	}
	return fmt.Errorf("waiting for input buffer to drain: %w", ErrDeviceTimeout)
}

func (c *Controller) waitReadable() error {
	for i := 0; i < c.spins; i++ {
		if c.port.Status()&StatusOutputFull != 0 {
			return nil
		}
	}
	return fmt.Errorf("waiting for output buffer: %w", ErrDeviceTimeout)
}

func (c *Controller) command(cmd byte) error {
	if err := c.waitWritable(); err != nil {
		return err
	}
	c.port.WriteCommand(cmd)
	return nil
}

func (c *Controller) read() (byte, error) {
	if err := c.waitReadable(); err != nil {
		return 0, err
	}
	return c.port.ReadData(), nil
}

// SendAux forwards one command byte to the aux device and returns its reply.
func (c *Controller) SendAux(cmd byte) (byte, error) {
	if err := c.command(CmdWriteAux); err != nil {
		return 0, err
	}
	if err := c.waitWritable(); err != nil {
		return 0, err
	}
	c.port.WriteData(cmd)
	return c.read()
}

// Init enables the aux port, resets the device and turns on data reporting.
// Unexpected replies are logged and tolerated; only timeouts fail.
func (c *Controller) Init() error {
	if err := c.command(CmdEnableAux); err != nil {
		return fmt.Errorf("failed to enable aux port: %w", err)
	}

	reply, err := c.SendAux(AuxReset)
	if err != nil {
		return fmt.Errorf("failed to reset pointer: %w", err)
	}
	if reply != AuxAck {
		c.logger.Warn("pointer reset not acknowledged", "reply", reply)
	}
	selfTest, err := c.read()
	if err != nil {
		return fmt.Errorf("failed to read pointer self-test: %w", err)
	}
	if selfTest != AuxSelfTestPass {
		c.logger.Warn("pointer self-test failed", "reply", selfTest)
	}
	id, err := c.read()
	if err != nil {
		return fmt.Errorf("failed to read pointer device id: %w", err)
	}

	if reply, err = c.SendAux(AuxSetDefaults); err != nil {
		return fmt.Errorf("failed to set pointer defaults: %w", err)
	} else if reply != AuxAck {
		c.logger.Warn("pointer set-defaults not acknowledged", "reply", reply)
	}
	if reply, err = c.SendAux(AuxEnableReport); err != nil {
		return fmt.Errorf("failed to enable pointer reporting: %w", err)
	} else if reply != AuxAck {
		c.logger.Warn("pointer enable-reporting not acknowledged", "reply", reply)
	}

	c.logger.Info("pointer initialized", "device_id", id)
	return nil
}

// DataAvailable reports whether the controller holds a byte from the aux
// device. Keyboard bytes are left for their own reader.
func (c *Controller) DataAvailable() bool {
	st := c.port.Status()
	return st&StatusOutputFull != 0 && st&StatusAuxData != 0
}

// TryReadByte returns the pending aux byte, if any.
func (c *Controller) TryReadByte() (byte, bool) {
	if !c.DataAvailable() {
		return 0, false
	}
	return c.port.ReadData(), true
}
