// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/ratelimit"

	"gitlab.com/postmarketOS/mtk_gnss/internal/config"
	"gitlab.com/postmarketOS/mtk_gnss/internal/gnss"
	"gitlab.com/postmarketOS/mtk_gnss/internal/gps"
	"gitlab.com/postmarketOS/mtk_gnss/internal/metrics"
	"gitlab.com/postmarketOS/mtk_gnss/internal/pool"
	"gitlab.com/postmarketOS/mtk_gnss/internal/publish"
	"gitlab.com/postmarketOS/mtk_gnss/internal/server"
)

func usage() {
	flag.CommandLine.Usage()
}

func main() {
	var confFile string
	flag.StringVar(&confFile, "c", "/etc/mtk_gnss.conf", "Configuration file to use.")
	var verbose bool
	flag.BoolVar(&verbose, "v", false, "Log every sentence read from and command sent to the receiver.")
	var help bool
	flag.BoolVar(&help, "h", false, "Print help and quit.")

	flag.Usage = func() {
		fmt.Println("usage: mtk_gnss [OPTION...]")
		fmt.Println("Shares sentences from a MediaTek receiver on a unix socket.")
		fmt.Println("Send SIGUSR1 to put the receiver in standby, SIGUSR2 to wake it up.")
		fmt.Println("Options:")
		flag.PrintDefaults()
	}

	flag.Parse()

	if help {
		usage()
		return
	}

	conf, err := config.Parse(confFile)
	if err != nil {
		log.Fatal(err)
	}

	opts, err := conf.DriverOptions()
	if err != nil {
		log.Fatal(err)
	}
	opts.Verbose = verbose

	if err := run(conf, opts); err != nil {
		log.Fatal(err)
	}
}

type daemon struct {
	conf      *config.Config
	opts      gnss.Options
	connPool  *pool.Pool
	recorder  *metrics.Recorder
	publisher *publish.Publisher

	port *gnss.Port
	mtk  *gnss.Mtk
}

func run(conf *config.Config, opts gnss.Options) error {
	stop := make(chan struct{})
	defer close(stop)

	// connection broadcast pool
	connPool := pool.New()
	go connPool.Start(stop)

	srv := server.New(conf.Socket, conf.OwnerGroup, connPool)
	if err := srv.Start(); err != nil {
		return fmt.Errorf("run(): %w", err)
	}
	defer srv.Close()

	d := &daemon{
		conf:     conf,
		opts:     opts,
		connPool: connPool,
		recorder: metrics.New(),
	}

	if conf.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", d.recorder.Handler())
		go func() {
			log.Printf("Serving metrics at: %s", conf.MetricsAddr)
			if err := http.ListenAndServe(conf.MetricsAddr, mux); err != nil {
				log.Printf("metrics server: %s", err)
			}
		}()
	}

	if conf.Mqtt.Broker != "" {
		p, client, err := publish.Connect(conf.Mqtt.Broker, conf.Mqtt.ClientID, conf.Mqtt.Topic)
		if err != nil {
			// not fatal
			log.Printf("mqtt disabled: %s", err)
		} else {
			defer client.Disconnect(250)
			d.publisher = p
			log.Printf("Publishing fixes to %q on %s", conf.Mqtt.Topic, conf.Mqtt.Broker)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// SIGUSR1/2 put the receiver in standby and wake it up on-demand
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGUSR1, syscall.SIGUSR2)
	defer signal.Stop(sigChan)

	if err := d.open(ctx); err != nil {
		return nil
	}
	defer func() { d.port.Close() }()

	for {
		select {
		case <-ctx.Done():
			log.Println("Shutting down")
			return nil
		case sig := <-sigChan:
			d.power(ctx, sig)
		default:
			if rep, ok := d.mtk.Next(); ok {
				d.handle(rep)
				continue
			}
			if err := d.port.Err(); err != nil {
				log.Printf("lost device: %s", err)
				d.port.Close()
				if err := d.open(ctx); err != nil {
					return nil
				}
				continue
			}
			time.Sleep(d.opts.PollInterval)
		}
	}
}

// open (re)opens the device, retrying until it succeeds or ctx is done.
func (d *daemon) open(ctx context.Context) error {
	rl := ratelimit.New(1, ratelimit.Per(2*time.Second))
	for {
		rl.Take()
		if err := ctx.Err(); err != nil {
			return err
		}

		port, err := gnss.OpenPort(d.conf.SerialBackend, d.conf.DevicePath, d.conf.BaudRate)
		if err != nil {
			log.Printf("unable to open device: %s", err)
			continue
		}

		log.Printf("Opened %s", d.conf.DevicePath)
		d.attach(port)
		return nil
	}
}

// attach hands an opened device to the driver. A reopened device keeps the
// driver's state.
func (d *daemon) attach(port *gnss.Port) {
	d.port = port
	if d.mtk == nil {
		d.mtk = gnss.New(port, d.opts)
		return
	}
	d.mtk.Attach(port)
}

func (d *daemon) handle(rep gnss.Report) {
	d.recorder.Observe(rep, d.mtk.Overruns())

	if rep.Line.Truncated {
		log.Printf("dropped truncated sentence: %q", rep.Line.Text)
		return
	}

	d.connPool.Broadcast <- []byte(strings.TrimRight(rep.Line.Text, "\r\n"))

	if rep.Result.Status != gps.Ok || d.publisher == nil {
		return
	}
	if err := d.publisher.Publish(rep.Fix); err != nil {
		log.Printf("unable to publish fix: %s", err)
	}
}

func (d *daemon) power(ctx context.Context, sig os.Signal) {
	var (
		outcome gnss.Outcome
		err     error
	)

	switch sig {
	case syscall.SIGUSR1:
		log.Println("received SIGUSR1, entering standby")
		outcome, err = d.mtk.Standby()
	case syscall.SIGUSR2:
		log.Println("received SIGUSR2, waking up")
		outcome, err = d.mtk.Wakeup(ctx)
	default:
		return
	}

	if errors.Is(err, gnss.ErrInvalidTransition) {
		log.Printf("ignored: %s", err)
		return
	}
	if err != nil {
		// not fatal
		log.Printf("power mode change failed: %s", err)
		return
	}
	log.Printf("power mode change: %s", outcome)
}
