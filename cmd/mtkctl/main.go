// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"gitlab.com/postmarketOS/mtk_gnss/internal/gnss"
	"gitlab.com/postmarketOS/mtk_gnss/internal/gps"
)

func usage() {
	flag.CommandLine.Usage()
}

func main() {
	var devPath string
	flag.StringVar(&devPath, "d", "/dev/ttyS1", "Path to MediaTek device")
	var baud int
	flag.IntVar(&baud, "b", 9600, "Baud rate, not applicable to the \"gnss\" backend.")
	var backend string
	flag.StringVar(&backend, "s", "tarm", "Serial backend: tarm, bugst, jacobsa, or gnss for the Linux GNSS subsystem (/dev/gnssN)")
	var timeout time.Duration
	flag.DurationVar(&timeout, "t", gnss.DefaultTimeout, "How long to wait for a response.")
	var verbose bool
	flag.BoolVar(&verbose, "v", false, "Log every sentence read and command sent.")

	var help bool
	flag.BoolVar(&help, "h", false, "Print help and quit.")

	flag.Usage = func() {
		fmt.Println("usage: mtkctl [OPTION...] COMMAND ")
		fmt.Println("Options:")
		flag.PrintDefaults()
		fmt.Println("Commands:")
		fmt.Printf("  %-24s\t%s\n", "log-start", "Start the LOCUS logger.")
		fmt.Printf("  %-24s\t%s\n", "log-stop", "Stop the LOCUS logger.")
		fmt.Printf("  %-24s\t%s\n", "log-status", "Print the LOCUS logger status.")
		fmt.Printf("  %-24s\t%s\n", "standby", "Put the receiver in standby.")
		fmt.Printf("  %-24s\t%s\n", "wakeup", "Wake the receiver up from standby.")
		fmt.Printf("  %-24s\t%s\n", "wait <text> [attempts]", "Wait for a sentence starting with text.")
		fmt.Printf("  %-24s\t%s\n", "dump", "Print decoded sentences until interrupted.")
	}

	flag.Parse()

	if help {
		usage()
		return
	}

	port, err := gnss.OpenPort(backend, devPath, baud)
	if err != nil {
		log.Fatal(err)
	}
	defer port.Close()

	// a fresh process can't know the receiver's power mode, so trust the
	// command
	mtk := gnss.New(port, gnss.Options{
		Timeout: timeout,
		Verbose: verbose,
		Standby: flag.Arg(0) == "wakeup",
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	switch cmd := flag.Arg(0); cmd {
	case "log-start":
		report(mtk.StartLogger(ctx))
	case "log-stop":
		report(mtk.StopLogger(ctx))
	case "log-status":
		status, err := mtk.ReadLoggerStatus(ctx)
		if err != nil {
			log.Fatal(err)
		}
		printStatus(status)
	case "standby":
		report(mtk.Standby())
	case "wakeup":
		report(mtk.Wakeup(ctx))
	case "wait":
		if len(flag.Args()) < 2 {
			usage()
			return
		}
		attempts := 0
		if len(flag.Args()) > 2 {
			attempts, err = strconv.Atoi(flag.Arg(2))
			if err != nil {
				log.Fatalf("invalid argument %q: %s", flag.Arg(2), err)
			}
		}
		if _, err := mtk.WaitForSentence(ctx, flag.Arg(1), attempts); err != nil {
			log.Fatal(err)
		}
		fmt.Println("found")
	case "dump":
		dump(ctx, mtk)
	default:
		usage()
		return
	}
}

func report(outcome gnss.Outcome, err error) {
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(outcome)
}

func printStatus(s gnss.LoggerStatus) {
	fields := []struct {
		name  string
		value gnss.StatusField
	}{
		{"serial", s.Serial},
		{"type", s.Type},
		{"mode", s.Mode},
		{"config", s.Config},
		{"interval", s.Interval},
		{"distance", s.Distance},
		{"speed", s.Speed},
		{"logging", s.Status},
		{"records", s.Records},
		{"percent", s.Percent},
	}
	for _, f := range fields {
		fmt.Printf("%-10s %s\n", f.name+":", f.value)
	}
}

func dump(ctx context.Context, mtk *gnss.Mtk) {
	for ctx.Err() == nil {
		rep, ok := mtk.Next()
		if !ok {
			time.Sleep(gnss.DefaultPollInterval)
			continue
		}
		text := strings.TrimRight(rep.Line.Text, "\r\n")
		fmt.Printf("%-17s %-8s %s\n", rep.Result.Status, rep.Result.Checksum, text)
		if rep.Result.Status == gps.Ok {
			fmt.Printf("  %+v\n", rep.Fix)
		}
	}
}
