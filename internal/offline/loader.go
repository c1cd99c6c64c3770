// loader.go
//
// An offline-first learning content service and client for the jam-build stack
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of jam-build-learnhub.
// jam-build-learnhub is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// jam-build-learnhub is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with jam-build-learnhub.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package offline

import (
	"context"
	"encoding/json"
	"log"
)

// Source tells the caller where a loaded collection came from
type Source int

const (
	// SourceRemote is a fresh fetch
	SourceRemote Source = iota
	// SourceMirror is the last mirrored copy
	SourceMirror
	// SourceEmpty means nothing could be fetched or read
	SourceEmpty
)

func (s Source) String() string {
	switch s {
	case SourceRemote:
		return "remote"
	case SourceMirror:
		return "mirror"
	}
	return "empty"
}

// Policy decides what a successful fetch does to the mirror
type Policy int

const (
	// OverwriteAlways replaces the mirror with every successful fetch, empty included
	OverwriteAlways Policy = iota
	// KeepOnEmpty leaves the mirror alone when a fetch returns nothing,
	// and serves the mirrored copy instead
	KeepOnEmpty
)

// FetchFunc fetches a complete collection from the backend
type FetchFunc[T any] func(ctx context.Context) ([]T, error)

// Loader couples a connectivity probe with a mirror
type Loader struct {
	Probe  Probe
	Mirror Mirror
}

// Load returns the collection for resource, never an error: remote when
// online and the fetch succeeds, else the mirror, else an empty slice.
// resource is also the mirror key. The result is never nil.
func Load[T any](ctx context.Context, l *Loader, resource string, fetch FetchFunc[T], policy Policy) ([]T, Source) {
	if l.online(ctx) {
		items, err := fetch(ctx)
		if err == nil {
			if items == nil {
				items = []T{}
			}
			if len(items) == 0 && policy == KeepOnEmpty {
				if mirrored, ok := readMirror[T](ctx, l.Mirror, resource); ok {
					return mirrored, SourceMirror
				}
				return items, SourceRemote
			}
			writeMirror(ctx, l.Mirror, resource, items)
			return items, SourceRemote
		}
		log.Printf("Fetch of %s failed, using mirror: %v", resource, err)
	}

	if mirrored, ok := readMirror[T](ctx, l.Mirror, resource); ok {
		return mirrored, SourceMirror
	}
	return []T{}, SourceEmpty
}

func (l *Loader) online(ctx context.Context) bool {
	if l.Probe == nil {
		return false
	}
	return l.Probe.Online(ctx)
}

func writeMirror[T any](ctx context.Context, m Mirror, resource string, items []T) {
	if m == nil {
		return
	}
	raw, err := json.Marshal(items)
	if err != nil {
		log.Printf("Failed to encode %s for the mirror: %v", resource, err)
		return
	}
	if err := m.Put(ctx, resource, raw); err != nil {
		log.Printf("Failed to write %s mirror: %v", resource, err)
	}
}

// readMirror reports false when nothing is stored or the stored value does not decode
func readMirror[T any](ctx context.Context, m Mirror, resource string) ([]T, bool) {
	if m == nil {
		return nil, false
	}
	raw, ok, err := m.Get(ctx, resource)
	if err != nil {
		log.Printf("Failed to read %s mirror: %v", resource, err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		log.Printf("Discarding undecodable %s mirror: %v", resource, err)
		return nil, false
	}
	if items == nil {
		items = []T{}
	}
	return items, true
}
