// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package loader

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultResolved  = "resolved"
	resultDelegated = "delegated"
	resultFatal     = "fatal"
)

type metrics struct {
	faults          *prometheus.CounterVec
	zeroFilledPages prometheus.Counter
	fileBytesRead   prometheus.Counter
}

func newMetrics(r prometheus.Registerer) *metrics {
	return &metrics{
		faults: promauto.With(r).NewCounterVec(prometheus.CounterOpts{
			Name: "pagerun_faults_total",
			Help: "number of page faults handled by the loader",
		}, []string{"result"}),
		zeroFilledPages: promauto.With(r).NewCounter(prometheus.CounterOpts{
			Name: "pagerun_pages_zero_filled_total",
			Help: "number of resolved pages without file backed bytes",
		}),
		fileBytesRead: promauto.With(r).NewCounter(prometheus.CounterOpts{
			Name: "pagerun_file_bytes_read_total",
			Help: "number of bytes read from the executable file",
		}),
	}
}
