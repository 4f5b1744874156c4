package mpu401

import (
	"bufio"
	"os"

	"github.com/creack/pty"
)

/*------------------------------------------------------------------
 *
 * Name:	VirtualPort
 *
 * Purpose:	A pseudo-tty that a tool expecting a raw serial MIDI
 *		stream can open. WriteByte sends bytes to whatever opened
 *		the slave end and ReadLoop delivers the bytes it writes.
 *		Nothing in this package connects it to a router slot or
 *		a HostHandler.
 *
 *--------------------------------------------------------------------*/

type VirtualPort struct {
	master *os.File
	slave  *os.File
}

func NewVirtualPort() (*VirtualPort, error) {
	master, slave, err := pty.Open()
	if err != nil {
		return nil, err
	}
	return &VirtualPort{master: master, slave: slave}, nil
}

// SlaveName is the path a guest process should open (e.g. /dev/pts/3).
func (v *VirtualPort) SlaveName() string {
	return v.slave.Name()
}

func (v *VirtualPort) Close() error {
	_ = v.slave.Close()
	return v.master.Close()
}

// WriteByte writes b to the pty's master side for whatever is reading
// the slave end.
func (v *VirtualPort) WriteByte(b byte) error {
	_, err := v.master.Write([]byte{b})
	return err
}

// ReadLoop feeds bytes arriving on the master side (i.e. written by
// whatever opened the slave) to onByte until the pty closes.
func (v *VirtualPort) ReadLoop(onByte func(byte)) error {
	r := bufio.NewReader(v.master)
	for {
		b, err := r.ReadByte()
		if err != nil {
			return err
		}
		onByte(b)
	}
}
