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

// Package lock guards a site folder with a pid file so only one update runs
// on it at a time, across processes.
package lock

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/walteh/ssgmirror/pkg/fault"
	"gitlab.com/tozd/go/errors"
)

var (
	mu   sync.Mutex
	held = map[string]bool{}
)

// Release gives up a lock
type Release func() error

// 🔒 Acquire takes the lock file at path. ok is false when another live
// process, or this one, already holds it. A lock file left by a process that
// no longer exists is taken over.
func Acquire(path string) (release Release, ok bool, err error) {
	mu.Lock()
	defer mu.Unlock()

	if held[path] {
		return nil, false, nil
	}

	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			_, werr := f.WriteString(strconv.Itoa(os.Getpid()))
			cerr := f.Close()
			if werr != nil || cerr != nil {
				os.Remove(path)
				return nil, false, fault.New(fault.Lock, path, errors.Join(werr, cerr))
			}
			held[path] = true
			return releaser(path), true, nil
		}
		if !os.IsExist(err) {
			return nil, false, fault.New(fault.Lock, path, err)
		}

		pid, err := Owner(path)
		if err != nil {
			return nil, false, err
		}
		if pid > 0 && alive(pid) {
			return nil, false, nil
		}
		// stale: the owner is gone or the file is unreadable garbage
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, false, fault.New(fault.Lock, path, err)
		}
	}
	return nil, false, nil
}

// Owner returns the pid recorded in the lock file at path, 0 when the file
// holds no valid pid.
func Owner(path string) (int, error) {
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fault.New(fault.Lock, path, err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil || pid <= 0 {
		return 0, nil
	}
	return pid, nil
}

func releaser(path string) Release {
	var once sync.Once
	return func() error {
		var err error
		once.Do(func() {
			mu.Lock()
			defer mu.Unlock()
			delete(held, path)
			if rerr := os.Remove(path); rerr != nil && !os.IsNotExist(rerr) {
				err = fault.New(fault.Lock, path, rerr)
			}
		})
		return err
	}
}
