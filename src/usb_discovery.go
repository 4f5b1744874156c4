package mpu401

import (
	"context"

	"github.com/jochenvg/go-udev"
)

/*------------------------------------------------------------------
 *
 * Name:	USBMidiWatcher
 *
 * Purpose:	Watches udev's "sound" subsystem and reports each device
 *		event (action and devpath) to a callback. Events are not
 *		narrowed further by devtype or USB interface class.
 *
 *--------------------------------------------------------------------*/

type USBMidiWatcher struct {
	u       *udev.Udev
	onEvent func(action, devPath string)
}

func NewUSBMidiWatcher(onEvent func(action, devPath string)) *USBMidiWatcher {
	return &USBMidiWatcher{u: &udev.Udev{}, onEvent: onEvent}
}

// Run blocks, delivering events to onEvent until ctx is cancelled.
func (w *USBMidiWatcher) Run(ctx context.Context) error {
	mon := w.u.NewMonitorFromNetlink("udev")
	if err := mon.FilterAddMatchSubsystem("sound"); err != nil {
		return err
	}

	deviceChan, errChan, err := mon.DeviceChan(ctx)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case dev, ok := <-deviceChan:
			if !ok {
				return nil
			}
			if w.onEvent != nil {
				w.onEvent(dev.Action(), dev.Devpath())
			}
		case err, ok := <-errChan:
			if !ok {
				return nil
			}
			if err != nil {
				return err
			}
		}
	}
}
