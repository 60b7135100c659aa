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

package operate

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"os"

	"github.com/rs/zerolog"
	"github.com/walteh/ssgmirror/pkg/fault"
	"gitlab.com/tozd/go/errors"
)

// 🔄 Op is extra work done once the replacement is in place. Run receives
// the backup of the old target and the new target; Rewind undoes Run when
// a later step fails. Either may be nil.
type Op struct {
	Run    func(ctx context.Context, backup, target string) error
	Rewind func(ctx context.Context, backup, target string) error
}

type replaceState int

const (
	stateStart replaceState = iota
	stateReplaced
	stateOp
)

// 🛟 SafeReplace swaps the directory target for replacement. The old target
// is kept as a backup until op succeeded; on any failure the backup is put
// back in place and the error returned. A missing target is treated as an
// empty slot.
func SafeReplace(ctx context.Context, target, replacement string, op Op) error {
	logger := zerolog.Ctx(ctx)

	suffix := make([]byte, 8)
	if _, err := rand.Read(suffix); err != nil {
		return errors.Errorf("generating backup name: %w", err)
	}
	backup := target + "_" + hex.EncodeToString(suffix)
	logger.Info().Str("target", target).Str("replacement", replacement).Str("backup", backup).Msg("safely replacing")

	state := stateStart
	backedUp := false
	rewind := func(cause error) error {
		logger.Error().Err(cause).Str("target", target).Msg("replace failed, rewinding")
		// rewinding must finish even when ctx is what failed
		ctx := context.WithoutCancel(ctx)
		if state == stateOp && op.Rewind != nil {
			if err := op.Rewind(ctx, backup, target); err != nil {
				logger.Error().Err(err).Msg("rewinding op")
			}
		}
		if state >= stateReplaced {
			if err := os.RemoveAll(target); err != nil {
				logger.Error().Err(err).Msg("removing partial target")
			}
		}
		if backedUp {
			if err := os.Rename(backup, target); err != nil {
				logger.Error().Err(err).Str("backup", backup).Msg("restoring backup")
			}
		}
		return cause
	}

	if err := fault.Canceled(ctx); err != nil {
		return err
	}
	switch _, err := os.Lstat(target); {
	case err == nil:
		if err := os.Rename(target, backup); err != nil {
			return errors.Errorf("backing up %s: %w", target, err)
		}
		backedUp = true
	case !os.IsNotExist(err):
		return errors.Errorf("checking %s: %w", target, err)
	}

	if err := fault.Canceled(ctx); err != nil {
		return rewind(err)
	}
	if err := os.Rename(replacement, target); err != nil {
		return rewind(errors.Errorf("moving %s to %s: %w", replacement, target, err))
	}
	state = stateReplaced

	if op.Run != nil {
		state = stateOp
		if err := op.Run(ctx, backup, target); err != nil {
			return rewind(err)
		}
	}

	if err := os.RemoveAll(backup); err != nil {
		logger.Warn().Err(err).Str("backup", backup).Msg("removing backup")
	}
	return nil
}
