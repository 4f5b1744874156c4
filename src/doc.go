/*------------------------------------------------------------------
 *
 * Package:	mpu401
 *
 * Purpose:	Emulated Roland MPU-401 MIDI Processing Unit, as seen by
 *		a virtualized x86 guest, plus the host-side MIDI routing
 *		fabric that sits between the guest-visible registers and
 *		a real MIDI backend.
 *
 * Description:	Two personalities live here:
 *
 *		  UART mode - a transparent byte pump.  Whatever the
 *		  guest writes to the data port goes straight to the
 *		  output assembler; whatever arrives from outside goes
 *		  straight into the guest-visible queue.
 *
 *		  Intelligent mode - an autonomous, tick-driven
 *		  sequencer: up to eight tracks plus a conductor track,
 *		  a programmable clock, recording from an external
 *		  keyboard, and IRQ-driven delivery of control and data
 *		  bytes back to the guest.
 *
 *		Everything that is not the sequencer core - the actual
 *		ALSA/WinMM/CoreMIDI backend, the emulated CPU, the PIC,
 *		the audio mixer - lives outside this package; see
 *		HostHandler for the seam.
 *
 *---------------------------------------------------------------*/

package mpu401
