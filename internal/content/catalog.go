// catalog.go
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

package content

import (
	"context"
	"strings"

	"github.com/localnerve/jam-build-learnhub/internal/offline"
	"github.com/localnerve/jam-build-learnhub/internal/sdk"
)

// Catalog loads every list screen through the offline loader
type Catalog struct {
	Databases *sdk.Databases
	Loader    *offline.Loader

	// Parity keeps the previous tips and notifications mirrors when a fetch
	// comes back empty
	Parity bool
}

// NewCatalog builds a Catalog over databaseID
func NewCatalog(client *sdk.Client, databaseID string, loader *offline.Loader, parity bool) *Catalog {
	return &Catalog{
		Databases: client.Databases(databaseID),
		Loader:    loader,
		Parity:    parity,
	}
}

// MirrorKey is the mirror key for a collection list narrowed by filters.
// An unfiltered list mirrors under the collection name.
func MirrorKey(collection string, filters ...string) string {
	if len(filters) == 0 {
		return collection
	}
	return collection + "?" + strings.Join(filters, "&")
}

func loadList[T any](ctx context.Context, c *Catalog, key, collection string, policy offline.Policy, filters ...string) ([]T, offline.Source) {
	fetch := func(ctx context.Context) ([]T, error) {
		docs, err := c.Databases.ListAllDocuments(ctx, collection, sdk.DefaultPageSize, filters...)
		if err != nil {
			return nil, err
		}
		return sdk.DecodeAll[T](docs)
	}
	return offline.Load(ctx, c.Loader, key, fetch, policy)
}

func (c *Catalog) parityPolicy() offline.Policy {
	if c.Parity {
		return offline.KeepOnEmpty
	}
	return offline.OverwriteAlways
}

func filtersFor(pairs ...string) []string {
	var filters []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] != "" {
			filters = append(filters, sdk.Equal(pairs[i], pairs[i+1]))
		}
	}
	return filters
}

// Subjects lists subjects, narrowed to grade when given
func (c *Catalog) Subjects(ctx context.Context, grade string) ([]Subject, offline.Source) {
	filters := filtersFor("grade", grade)
	return loadList[Subject](ctx, c, MirrorKey(Subjects, filters...), Subjects, offline.OverwriteAlways, filters...)
}

// Topics lists the topics of a subject, or all topics when subjectID is empty
func (c *Catalog) Topics(ctx context.Context, subjectID string) ([]Topic, offline.Source) {
	filters := filtersFor("subject", subjectID)
	return loadList[Topic](ctx, c, MirrorKey(Topics, filters...), Topics, offline.OverwriteAlways, filters...)
}

// Notes lists notes, narrowed by subject and topic when given
func (c *Catalog) Notes(ctx context.Context, subjectID, topicID string) ([]Note, offline.Source) {
	filters := filtersFor("subject", subjectID, "topic", topicID)
	return loadList[Note](ctx, c, MirrorKey(Notes, filters...), Notes, offline.OverwriteAlways, filters...)
}

// Papers lists past papers, narrowed by subject and grade when given
func (c *Catalog) Papers(ctx context.Context, subjectID, grade string) ([]Paper, offline.Source) {
	filters := filtersFor("subject", subjectID, "grade", grade)
	return loadList[Paper](ctx, c, MirrorKey(Papers, filters...), Papers, offline.OverwriteAlways, filters...)
}

// Tips lists published study tips
func (c *Catalog) Tips(ctx context.Context) ([]Tip, offline.Source) {
	return loadList[Tip](ctx, c, Tips, Tips, c.parityPolicy(), sdk.Equal("status", TipPublished))
}

// Notifications lists notifications
func (c *Catalog) Notifications(ctx context.Context) ([]Notification, offline.Source) {
	return loadList[Notification](ctx, c, Notifications, Notifications, c.parityPolicy())
}
