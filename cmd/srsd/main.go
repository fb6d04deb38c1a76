/*
srsd - SRS forwarding resolver
Copyright (C) 2025 Damian Szlage / Umbrella Dev Systems / DriftZone.pl
https://github.com/dszlage/srs-resolver

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

// Command srsd runs the SRS receive and forward TCP services on the
// addresses given by its command-line flags, using the HMAC secret and hop
// identity from its TOML configuration file.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"net"
	"net/mail"
	"os"
	"strings"

	blog "blitiri.com.ar/go/log"
	"blitiri.com.ar/go/systemd"

	"github.com/oxrelay/srsd/internal/config"
	"github.com/oxrelay/srsd/internal/srs"
	"github.com/oxrelay/srsd/internal/srsaddr"
	"github.com/oxrelay/srsd/internal/srstime"
)

const version = "1.0.0"

var (
	listenRecv = flag.String("listen.recv", "", "TCP bind address for receive queries (required)")
	listenSend = flag.String("listen.send", "", "TCP bind address for forward queries (required)")
	bufSize    int
	configPath = flag.String("config", "/etc/srsd/srsd.conf", "path to the TOML config file")
	showVer    = flag.Bool("version", false, "print version and exit")
)

func init() {
	flag.IntVar(&bufSize, "s", 0, "maximum request size in bytes (required)")
	flag.IntVar(&bufSize, "bufsize", 0, "alias of -s")
}

func usage() {
	fmt.Fprintf(os.Stdout, "Usage: %s --listen.recv <addr:port> --listen.send <addr:port> -s <bufsize>\n", os.Args[0])
	flag.CommandLine.SetOutput(os.Stdout)
	flag.PrintDefaults()
}

func main() {
	flag.CommandLine.Init(os.Args[0], flag.ContinueOnError)
	flag.CommandLine.SetOutput(os.Stdout)
	flag.Usage = usage
	if err := flag.CommandLine.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if *showVer {
		fmt.Println("srsd - Sender Rewriting Scheme resolver, version", version)
		return
	}

	if *listenRecv == "" || *listenSend == "" || bufSize <= 0 {
		usage()
		os.Exit(1)
	}

	blog.Init()

	cfg, err := config.Load(*configPath)
	if err != nil {
		blog.Fatalf("error loading config %q: %v", *configPath, err)
	}
	if err := applyLogConfig(cfg); err != nil {
		blog.Fatalf("error configuring logging: %v", err)
	}

	timestamper := &srstime.SystemTimestamper{MaxValidDelta: cfg.MaxValidDelta}

	receiver, err := srs.NewReceiver(srs.ReceiverConfig{
		Secret:      []byte(cfg.Secret),
		Hostname:    cfg.Hostname,
		Digest:      srs.Digest(cfg.Digest),
		Timestamper: timestamper,
	})
	if err != nil {
		blog.Fatalf("error constructing receiver: %v", err)
	}

	forwarder, err := srs.NewForwarder(srs.ForwarderConfig{
		Secret:      []byte(cfg.Secret),
		Hostname:    cfg.Hostname,
		Digest:      srs.Digest(cfg.Digest),
		Separator:   cfg.SeparatorByte(),
		Timestamper: timestamper,
	})
	if err != nil {
		blog.Fatalf("error constructing forwarder: %v", err)
	}

	systemdLs, err := systemd.Listeners()
	if err != nil {
		blog.Fatalf("error getting systemd listeners: %v", err)
	}

	recvLn, err := listen(*listenRecv, systemdLs["recv"])
	if err != nil {
		blog.Fatalf("error listening on %q: %v", *listenRecv, err)
	}
	sendLn, err := listen(*listenSend, systemdLs["send"])
	if err != nil {
		blog.Fatalf("error listening on %q: %v", *listenSend, err)
	}

	blog.Infof("srsd listening: recv=%s send=%s", *listenRecv, *listenSend)

	go acceptLoop(recvLn, func(conn net.Conn) { handleReceive(conn, receiver, cfg.VerboseErrors) })
	acceptLoop(sendLn, func(conn net.Conn) { handleSend(conn, forwarder) })
}

// applyLogConfig points the default logger at cfg.LogFile (when set) and
// sets its verbosity from cfg.LogLevel, overriding whatever the -logfile/-v
// flags picked at blog.Init() time. An unrecognized log_level is a config
// error, matching the strict handling of the other TOML fields.
func applyLogConfig(cfg *config.Config) error {
	if cfg.LogFile != "" {
		l, err := blog.NewFile(cfg.LogFile)
		if err != nil {
			return err
		}
		blog.Default = l
	}

	switch strings.ToLower(cfg.LogLevel) {
	case "":
		// Leave whatever -v set.
	case "debug":
		blog.Default.Level = blog.Debug
	case "info":
		blog.Default.Level = blog.Info
	case "error":
		blog.Default.Level = blog.Error
	default:
		return fmt.Errorf("unknown log_level %q", cfg.LogLevel)
	}
	return nil
}

// listen binds addr, or adopts a systemd-passed socket when addr is the
// sentinel "systemd" and exactly one listener was handed down for this
// service's named socket.
func listen(addr string, systemdLn []net.Listener) (net.Listener, error) {
	if addr == "systemd" {
		if len(systemdLn) != 1 {
			return nil, fmt.Errorf("expected exactly one systemd socket, got %d", len(systemdLn))
		}
		return systemdLn[0], nil
	}
	return net.Listen("tcp", addr)
}

func acceptLoop(ln net.Listener, handle func(net.Conn)) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			blog.Errorf("accept error: %v", err)
			continue
		}
		go handle(conn)
	}
}

// readRequest reads one "get <address>" line (or up to bufsize bytes on
// EOF without a newline), per the Postfix TCP-table-lookup protocol.
func readRequest(conn net.Conn) (string, error) {
	r := bufio.NewReader(io.LimitReader(conn, int64(bufSize)))
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "get ") {
		return "", fmt.Errorf("expected \"get \" prefix")
	}
	return strings.TrimSpace(line[len("get "):]), nil
}

func handleReceive(conn net.Conn, r *srs.Receiver, verbose bool) {
	defer conn.Close()

	address, err := readRequest(conn)
	if err != nil {
		fmt.Fprintf(conn, "500 %v\n", err)
		return
	}

	addr, err := srsaddr.Parse(address)
	if err != nil {
		blog.Errorf("parse error for %q: %v", address, err)
		fmt.Fprintf(conn, "500 %v\n", err)
		return
	}

	result, err := r.Receive(addr)
	if err != nil {
		blog.Errorf("receive error for %q: %v", address, err)
		fmt.Fprintf(conn, "500 %s\n", sanitizeWireError(err, verbose))
		return
	}

	blog.Infof("resolved %q -> %q", address, result)
	fmt.Fprintf(conn, "200 %s\n", result)
}

func handleSend(conn net.Conn, f *srs.Forwarder) {
	defer conn.Close()

	address, err := readRequest(conn)
	if err != nil {
		fmt.Fprintf(conn, "500 %v\n", err)
		return
	}

	var fwd srsaddr.Forwardable
	if strings.HasPrefix(address, "SRS0") || strings.HasPrefix(address, "SRS1") {
		addr, err := srsaddr.Parse(address)
		if err != nil {
			blog.Errorf("parse error for %q: %v", address, err)
			fmt.Fprintf(conn, "500 %v\n", err)
			return
		}
		fwd = srsaddr.SRS{Address: addr}
	} else {
		a, err := mail.ParseAddress(address)
		if err != nil {
			blog.Errorf("invalid address %q: %v", address, err)
			fmt.Fprintf(conn, "500 invalid address\n")
			return
		}
		at := strings.LastIndexByte(a.Address, '@')
		fwd = srsaddr.Plain{Local: a.Address[:at], Domain: a.Address[at+1:]}
	}

	out, err := f.Forward(fwd)
	if err != nil {
		blog.Errorf("forward error for %q: %v", address, err)
		fmt.Fprintf(conn, "500 %v\n", err)
		return
	}

	result := srsaddr.Serialize(out)
	blog.Infof("forwarded %q -> %q", address, result)
	fmt.Fprintf(conn, "200 %s\n", result)
}

// sanitizeWireError strips the expected-hash payload of a
// HashVerificationError unless verbose is set, per the production
// information-disclosure hardening decision.
func sanitizeWireError(err error, verbose bool) string {
	if verbose {
		return err.Error()
	}
	if _, ok := err.(*srs.HashVerificationError); ok {
		return "hash verification failed"
	}
	return err.Error()
}
