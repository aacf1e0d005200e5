// Package catalog maps the closed set of supported applications to the
// host's numeric data-source identifiers.
//
// A Catalog is built once at startup and is read-only afterwards.
// Resolution fails closed: any name outside the enumerated set, and any
// application the catalog does not carry, is an UnsupportedApplication
// structural error.
package catalog

import (
	"fmt"
	"sort"

	"github.com/blockberries/themis"
)

// Application is a supported external service.
type Application uint8

const (
	Twitter Application = iota + 1
	Github
	Discord
	Twitch
	Youtube
	Instagram
	Telegram
	Domain
)

// Applications lists every supported application in declaration order.
var Applications = []Application{Twitter, Github, Discord, Twitch, Youtube, Instagram, Telegram, Domain}

func (a Application) String() string {
	switch a {
	case Twitter:
		return "twitter"
	case Github:
		return "github"
	case Discord:
		return "discord"
	case Twitch:
		return "twitch"
	case Youtube:
		return "youtube"
	case Instagram:
		return "instagram"
	case Telegram:
		return "telegram"
	case Domain:
		return "domain"
	default:
		return fmt.Sprintf("unknown(%d)", a)
	}
}

// Valid reports whether a is one of the enumerated applications.
func (a Application) Valid() bool {
	return a >= Twitter && a <= Domain
}

// ParseApplication returns the application with the given name. The
// match is exact: case variants and the empty string are rejected.
func ParseApplication(name string) (Application, error) {
	switch name {
	case "twitter":
		return Twitter, nil
	case "github":
		return Github, nil
	case "discord":
		return Discord, nil
	case "twitch":
		return Twitch, nil
	case "youtube":
		return Youtube, nil
	case "instagram":
		return Instagram, nil
	case "telegram":
		return Telegram, nil
	case "domain":
		return Domain, nil
	default:
		return 0, themis.NewStructuralError(themis.KindUnsupportedApplication, "unknown application %q", name)
	}
}

// SourceID is a host-side data-source identifier.
type SourceID int64

// Entry binds an application to its data source.
type Entry struct {
	Application Application
	SourceID    SourceID
}

// Catalog is an immutable application -> data source table.
type Catalog struct {
	ids map[Application]SourceID
}

// New builds a catalog. Applications and source ids must be unique.
func New(entries ...Entry) (*Catalog, error) {
	ids := make(map[Application]SourceID, len(entries))
	owners := make(map[SourceID]Application, len(entries))
	for _, e := range entries {
		if !e.Application.Valid() {
			return nil, fmt.Errorf("catalog: unknown application %d", uint8(e.Application))
		}
		if _, dup := ids[e.Application]; dup {
			return nil, fmt.Errorf("catalog: duplicate entry for %s", e.Application)
		}
		if other, dup := owners[e.SourceID]; dup {
			return nil, fmt.Errorf("catalog: source id %d shared by %s and %s", e.SourceID, other, e.Application)
		}
		ids[e.Application] = e.SourceID
		owners[e.SourceID] = e.Application
	}
	return &Catalog{ids: ids}, nil
}

// MustNew is like New but panics on error. For static tables.
func MustNew(entries ...Entry) *Catalog {
	c, err := New(entries...)
	if err != nil {
		panic(err)
	}
	return c
}

// DefaultEntries is the default data-source table.
func DefaultEntries() []Entry {
	return []Entry{
		{Application: Twitter, SourceID: 49},
		{Application: Github, SourceID: 50},
		{Application: Discord, SourceID: 51},
		{Application: Twitch, SourceID: 52},
		{Application: Youtube, SourceID: 53},
		{Application: Instagram, SourceID: 54},
		{Application: Telegram, SourceID: 55},
		{Application: Domain, SourceID: 56},
	}
}

// Default returns a catalog holding DefaultEntries.
func Default() *Catalog {
	return MustNew(DefaultEntries()...)
}

// Resolve returns the data source for the named application.
func (c *Catalog) Resolve(name string) (SourceID, error) {
	app, err := ParseApplication(name)
	if err != nil {
		return 0, err
	}
	return c.ResolveApplication(app)
}

// ResolveApplication returns the data source for app.
func (c *Catalog) ResolveApplication(app Application) (SourceID, error) {
	id, ok := c.ids[app]
	if !ok {
		return 0, themis.NewStructuralError(themis.KindUnsupportedApplication, "application %s has no data source", app)
	}
	return id, nil
}

// Restrict returns a new catalog carrying only the given applications.
func (c *Catalog) Restrict(apps ...Application) (*Catalog, error) {
	entries := make([]Entry, 0, len(apps))
	for _, app := range apps {
		id, err := c.ResolveApplication(app)
		if err != nil {
			return nil, fmt.Errorf("catalog: restrict: %w", err)
		}
		entries = append(entries, Entry{Application: app, SourceID: id})
	}
	return New(entries...)
}

// Override returns a new catalog where the given entries replace the
// source ids of their applications.
func (c *Catalog) Override(entries ...Entry) (*Catalog, error) {
	merged := make(map[Application]SourceID, len(c.ids))
	for app, id := range c.ids {
		merged[app] = id
	}
	for _, e := range entries {
		merged[e.Application] = e.SourceID
	}
	out := make([]Entry, 0, len(merged))
	for app, id := range merged {
		out = append(out, Entry{Application: app, SourceID: id})
	}
	sortEntries(out)
	return New(out...)
}

// Entries returns the table sorted by application.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, 0, len(c.ids))
	for app, id := range c.ids {
		out = append(out, Entry{Application: app, SourceID: id})
	}
	sortEntries(out)
	return out
}

// Len returns the number of entries.
func (c *Catalog) Len() int { return len(c.ids) }

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Application < entries[j].Application })
}
