// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

// Package metrics exports sentence and fix statistics in the Prometheus text
// format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gitlab.com/postmarketOS/mtk_gnss/internal/gnss"
	"gitlab.com/postmarketOS/mtk_gnss/internal/gps"
)

type Recorder struct {
	registry *prometheus.Registry

	sentences  *prometheus.CounterVec
	checksums  *prometheus.CounterVec
	overruns   prometheus.Gauge
	fixValid   prometheus.Gauge
	satellites prometheus.Gauge
	hdop       prometheus.Gauge
	altitude   prometheus.Gauge
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		sentences: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mtk_gnss_sentences_total",
				Help: "Completed sentences by decode status and sentence kind.",
			},
			[]string{"status", "kind"},
		),
		checksums: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mtk_gnss_checksums_total",
				Help: "Completed sentences by checksum status.",
			},
			[]string{"checksum"},
		),
		overruns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mtk_gnss_line_overruns",
			Help: "Completed lines replaced before they were consumed.",
		}),
		fixValid: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mtk_gnss_fix_valid",
			Help: "1 if the receiver reports a fix.",
		}),
		satellites: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mtk_gnss_fix_satellites",
			Help: "Satellites used for the fix.",
		}),
		hdop: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mtk_gnss_fix_hdop",
			Help: "Horizontal dilution of precision.",
		}),
		altitude: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mtk_gnss_fix_altitude_meters",
			Help: "Altitude above mean sea level.",
		}),
	}

	r.registry.MustRegister(r.sentences, r.checksums, r.overruns,
		r.fixValid, r.satellites, r.hdop, r.altitude)

	return r
}

// Observe records one report. The fix gauges only move when the sentence was
// decoded.
func (r *Recorder) Observe(rep gnss.Report, overruns uint64) {
	kind := rep.Result.Kind.String()
	if kind == "" {
		kind = "none"
	}
	r.sentences.WithLabelValues(rep.Result.Status.String(), kind).Inc()
	r.checksums.WithLabelValues(rep.Result.Checksum.String()).Inc()
	r.overruns.Set(float64(overruns))

	if rep.Result.Status != gps.Ok {
		return
	}

	if rep.Fix.Fix {
		r.fixValid.Set(1)
	} else {
		r.fixValid.Set(0)
	}
	r.satellites.Set(float64(rep.Fix.Satellites))
	r.hdop.Set(rep.Fix.HDOP)
	r.altitude.Set(rep.Fix.Altitude)
}

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
