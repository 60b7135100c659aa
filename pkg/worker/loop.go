// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package worker keeps mirrors up to date: Loop repeats the updates of one
// site, Supervisor runs one Loop per config file found in a folder.
package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/ssgmirror/pkg/fault"
	"github.com/walteh/ssgmirror/pkg/site"
)

// Updater performs one update of a site
type Updater interface {
	Update(ctx context.Context) (site.Report, error)
}

// ⏱️ Loop updates u, waits interval and starts over until ctx is done or
// an update fails. It only returns with the update error or a
// fault.Cancelled error.
func Loop(ctx context.Context, u Updater, interval time.Duration) error {
	logger := zerolog.Ctx(ctx)
	for {
		report, err := u.Update(ctx)
		if err != nil {
			return err
		}
		logger.Info().
			Bool("fresh", report.Fresh).
			Bool("committed", report.Committed).
			Bool("deployed", report.Deployed).
			Int("files", len(report.Results)).
			Msg("update finished")

		next := time.Now().Add(interval)
		logger.Info().Dur("interval", interval).Time("next", next).Msg("waiting")

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fault.Canceled(ctx)
		case <-timer.C:
		}
	}
}
