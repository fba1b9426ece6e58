/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package commit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	attemptCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imagedeployer_commit_attempts_total",
			Help: "Commit attempts by result; failed attempts are labelled with the store error kind",
		},
		[]string{"result"},
	)

	commitCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imagedeployer_commits_total",
			Help: "Completed Commit calls by outcome",
		},
		[]string{"outcome"},
	)
)
