//go:build !tinygo && !baremetal

package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/urfave/cli"

	"github.com/ystepanoff/otradio/driver/stub"
	"github.com/ystepanoff/otradio/internal/config"
	proto "github.com/ystepanoff/otradio/protocol"
	"github.com/ystepanoff/otradio/transport"
)

var COMMANDS = []cli.Command{
	{
		Name:  "ping",
		Usage: "Send acknowledged data frames to the simulated peer",
		Flags: []cli.Flag{
			cli.UintFlag{
				Name:  "frames, n",
				Value: 0,
				Usage: "Number of frames to send (default from config)",
			},
			cli.BoolFlag{
				Name:  "busy",
				Usage: "Occupy the channel so that CCA fails",
			},
		},
		Action: pingCommand,
	},

	{
		Name:  "listen",
		Usage: "Receive data frames sent by the simulated peer",
		Flags: []cli.Flag{
			cli.UintFlag{
				Name:  "frames, n",
				Value: 0,
				Usage: "Number of frames to receive (default from config)",
			},
		},
		Action: listenCommand,
	},

	{
		Name:   "config",
		Usage:  "Print the radio configuration and the driver record it translates to",
		Action: configCommand,
	},
}

// node is the simulated setup shared by the commands: a radio adapter bound to
// a local driver, and a peer driver on the same medium.
type node struct {
	cfg    *config.Config
	medium *stub.Medium
	radio  *transport.Radio
	peer   *stub.Driver
}

func newNode(ctx *cli.Context) (*node, error) {
	cfg, err := config.Load(ctx.GlobalString("config"))
	if err != nil {
		return nil, err
	}

	medium := stub.NewMedium()
	local := stub.New(medium, stub.Opts{RSSI: int8(cfg.Sim.RSSI)})
	peer := stub.New(medium, stub.Opts{RSSI: int8(cfg.Sim.PeerRSSI)})

	opts := transport.RadioOpts{}
	if ctx.GlobalBool("verbose") {
		opts.Logger = log.Printf
	}
	radio, err := transport.New(local, opts)
	if err != nil {
		return nil, err
	}

	radioCfg := cfg.Radio.ToRadio()
	if err := radio.SetConfig(context.Background(), &radioCfg); err != nil {
		radio.Close()
		return nil, err
	}

	peerCfg := radioCfg
	peerCfg.ShortAddr = cfg.Sim.PeerAddr
	peerCfg.Promiscuous = false
	peer.SetConfig(transport.TranslateConfig(&peerCfg))
	peer.StartReceive()

	return &node{cfg: cfg, medium: medium, radio: radio, peer: peer}, nil
}

func (n *node) frames(ctx *cli.Context) int {
	if f := ctx.Uint("frames"); f > 0 {
		return int(f)
	}
	return n.cfg.Sim.Frames
}

func (n *node) interval() time.Duration {
	return time.Duration(n.cfg.Sim.IntervalMs) * time.Millisecond
}

func pingCommand(ctx *cli.Context) error {
	n, err := newNode(ctx)
	if err != nil {
		return err
	}
	defer n.radio.Close()

	rc := n.radio.Config()
	if ctx.Bool("busy") {
		n.medium.SetChannelBusy(rc.Channel, true)
	}

	fmt.Printf("Pinging 0x%04X on channel %d (%s)\n", n.cfg.Sim.PeerAddr, rc.Channel, n.radio.Capabilities())

	ack := make([]byte, proto.MaxPSDUSize)
	sent, acked := 0, 0
	for i := 0; i < n.frames(ctx); i++ {
		psdu := proto.BuildDataFrame(uint8(i), rc.PanID, n.cfg.Sim.PeerAddr, rc.ShortAddr, true, []byte(fmt.Sprintf("ping %d", i)))

		txCtx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		meta, err := n.radio.Transmit(txCtx, psdu, true, ack)
		cancel()
		sent++

		switch {
		case err != nil:
			fmt.Printf("seq=%d error: %v (%s)\n", i, err, proto.KindOf(err))
		case meta == nil:
			fmt.Printf("seq=%d sent, no ack\n", i)
		default:
			acked++
			fmt.Printf("seq=%d ack %d bytes rssi=%ddBm %x\n", i, meta.Len, meta.RSSI, ack[:meta.Len])
		}

		time.Sleep(n.interval())
	}

	fmt.Printf("%d sent, %d acknowledged\n", sent, acked)
	return nil
}

func listenCommand(ctx *cli.Context) error {
	n, err := newNode(ctx)
	if err != nil {
		return err
	}
	defer n.radio.Close()

	rc := n.radio.Config()
	count := n.frames(ctx)

	go func() {
		for i := 0; i < count; i++ {
			time.Sleep(n.interval())
			psdu := proto.BuildDataFrame(uint8(i), rc.PanID, rc.ShortAddr, n.cfg.Sim.PeerAddr, false, []byte(fmt.Sprintf("hello %d", i)))
			if err := n.peer.TransmitRaw(psdu, false); err != nil {
				log.Printf("[Peer] TX failed: %v", err)
			}
		}
	}()

	fmt.Printf("Listening on channel %d\n", rc.Channel)

	buf := make([]byte, proto.MaxPSDUSize)
	for i := 0; i < count; i++ {
		rxCtx, cancel := context.WithTimeout(context.Background(), 10*n.interval()+time.Second)
		meta, err := n.radio.Receive(rxCtx, buf)
		cancel()
		if err != nil {
			return fmt.Errorf("receive: %w", err)
		}

		h, err := proto.ParseHeader(buf[:meta.Len])
		if err != nil {
			fmt.Printf("%d bytes ch%d rssi=%ddBm (unparsed)\n", meta.Len, meta.Channel, meta.RSSI)
			continue
		}
		fmt.Printf("seq=%d %d bytes ch%d rssi=%ddBm dst=0x%04X\n", h.Seq, meta.Len, meta.Channel, meta.RSSI, h.DstShort)
	}

	return nil
}

func configCommand(ctx *cli.Context) error {
	cfg, err := config.Load(ctx.GlobalString("config"))
	if err != nil {
		return err
	}

	rc := cfg.Radio.ToRadio()
	fmt.Printf("radio:  %s\n", rc)
	fmt.Printf("driver: %+v\n", transport.TranslateConfig(&rc))
	fmt.Printf("caps:   %s\n", transport.Caps)
	fmt.Printf("mac:    %s\n", transport.MacCaps)
	return nil
}
