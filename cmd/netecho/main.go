/*******************************************************************************
DESCRIPTION

  Simple echo utility built on the server/client APIs.

USAGE

  netecho serve <port> [-u]
      Run an echo server on 0.0.0.0:<port>.  Every received packet is
      sent back to the peer it came from.

  netecho send <host>:<port> <message> [-u]
      Connect to an echo server, send <message> once and print the
      reply.

  The -u flag switches from TCP to UDP.

  Examples:
    netecho serve 8375
    netecho send 127.0.0.1:8375 ping
    netecho serve 8375 -u
    netecho send 127.0.0.1:8375 ping -u

*******************************************************************************/

package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/kaba4cow/net/internal/transport"
	"github.com/kaba4cow/net/pkg/client"
	"github.com/kaba4cow/net/pkg/log"
	"github.com/kaba4cow/net/pkg/packet"
	"github.com/kaba4cow/net/pkg/server"
)

func main() {
	log.SetLevel(logrus.DebugLevel)

	args := os.Args[1:]
	if len(args) < 2 {
		usage()
	}

	useUdp := args[len(args)-1] == "-u"
	if useUdp {
		args = args[:len(args)-1]
	}

	switch args[0] {
	case "serve":
		if len(args) != 2 {
			usage()
		}
		serve(parsePort(args[1]), useUdp)
	case "send":
		if len(args) != 3 {
			usage()
		}
		host, port, err := transport.GetHostAndPortFromAddress(args[1])
		if err != nil {
			fatal(err)
		}
		send(host, port, args[2], useUdp)
	default:
		usage()
	}
}

func serve(port uint16, useUdp bool) {
	address, err := transport.GetAddressFromHostAndPort("0.0.0.0", port)
	if err != nil {
		fatal(err)
	}
	fmt.Printf("listening on %s\n", address)

	cfg := server.NewConfig("0.0.0.0", port, useUdp)
	cfg.OnPacket = func(peer server.Peer, data []byte) error {
		fmt.Printf("%s -> %q\n", peer.Addr(), data)
		return peer.Send(data)
	}

	s, err := server.New(cfg)
	if err != nil {
		fatal(err)
	}

	go drainErrors(s.Errors())
	go closeOnSignal(s.Close)

	if err = s.Start(); err != nil {
		fatal(err)
	}
}

func send(host string, port uint16, message string, useUdp bool) {
	cfg := client.NewConfig(host, port, useUdp)

	var c client.Client
	var err error

	reply := func(data []byte) {
		fmt.Printf("%q\n", data)
		c.Close()
	}

	if useUdp {
		cfg.OnStarted = func() error {
			return c.SendString(message)
		}
		cfg.OnPacketReceived = func(p *packet.Packet) error {
			reply(p.Bytes())
			return nil
		}
	} else {
		cfg.OnConnected = func() error {
			return c.SendString(message)
		}
		cfg.OnPacket = func(data []byte) error {
			reply(data)
			return nil
		}
	}

	c, err = client.New(cfg)
	if err != nil {
		fatal(err)
	}

	go drainErrors(c.Errors())
	go closeOnSignal(c.Close)

	if err = c.Start(); err != nil {
		fatal(err)
	}
}

func drainErrors(errors <-chan error) {
	for err := range errors {
		fmt.Fprintln(os.Stderr, err)
	}
}

func closeOnSignal(close func()) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	<-signals
	close()
}

func parsePort(arg string) uint16 {
	port, err := strconv.ParseUint(arg, 10, 16)
	if err != nil {
		usage()
	}
	return uint16(port)
}

func usage() {
	fmt.Println("usage: netecho serve <port> [-u] | netecho send <host>:<port> <message> [-u]")
	os.Exit(1)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
