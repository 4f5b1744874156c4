package mpu401

import (
	"context"

	"github.com/brutella/dnssd"
)

/*------------------------------------------------------------------
 *
 * Name:	RTPMidiAdvertiser
 *
 * Purpose:	Advertises this device over the network as an RTP-MIDI
 *		(AppleMIDI) session endpoint via mDNS/Bonjour, the way a
 *		real MPU-401 never could but a software one easily can -
 *		lets a phone or tablet on the same LAN discover and
 *		connect without typing an IP address.
 *
 *--------------------------------------------------------------------*/

const rtpMidiServiceType = "_apple-midi._udp"

type RTPMidiAdvertiser struct {
	responder dnssd.Responder
	name      string
	port      int
}

func NewRTPMidiAdvertiser(name string, port int) (*RTPMidiAdvertiser, error) {
	responder, err := dnssd.NewResponder()
	if err != nil {
		return nil, err
	}
	return &RTPMidiAdvertiser{responder: responder, name: name, port: port}, nil
}

// Run registers the service and blocks responding to mDNS queries until
// ctx is cancelled.
func (a *RTPMidiAdvertiser) Run(ctx context.Context) error {
	cfg := dnssd.Config{
		Name:   a.name,
		Type:   rtpMidiServiceType,
		Domain: "local",
		Port:   a.port,
	}
	service, err := dnssd.NewService(cfg)
	if err != nil {
		return err
	}
	if _, err := a.responder.Add(service); err != nil {
		return err
	}
	return a.responder.Respond(ctx)
}
