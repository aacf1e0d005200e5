package script

import (
	"fmt"

	"github.com/blockberries/themis/catalog"
)

// Names of the shipped scripts.
const (
	NameOwnership         = "ownership"
	NameOwnershipUsername = "ownership-username"
	NameLink              = "link"
	NamePresence          = "presence"
	NameProof             = "proof"
)

// socialApplications publish signed values or links in a post or
// profile that a data source can read back.
var socialApplications = []catalog.Application{
	catalog.Twitter,
	catalog.Github,
	catalog.Twitch,
	catalog.Youtube,
	catalog.Instagram,
}

// chatApplications are verified through a bot that also reports the
// resolved username.
var chatApplications = []catalog.Application{
	catalog.Discord,
	catalog.Telegram,
}

// Variants returns the descriptors of the shipped scripts, drawing
// their source tables from cat.
func Variants(cat *catalog.Catalog) ([]Variant, error) {
	social, err := cat.Restrict(socialApplications...)
	if err != nil {
		return nil, fmt.Errorf("script: social sources: %w", err)
	}
	chat, err := cat.Restrict(chatApplications...)
	if err != nil {
		return nil, fmt.Errorf("script: chat sources: %w", err)
	}
	domain, err := cat.Restrict(catalog.Domain)
	if err != nil {
		return nil, fmt.Errorf("script: domain sources: %w", err)
	}

	return []Variant{
		{Name: NameOwnership, Input: InputVerification, Sources: social, Policy: PolicyNone, Shape: ShapeSignedValue},
		{Name: NameOwnershipUsername, Input: InputVerification, Sources: chat, Policy: PolicyNone, Shape: ShapeSignedUsername},
		{Name: NameLink, Input: InputHex, Sources: social, Policy: PolicyRawCount, Shape: ShapeLink},
		{Name: NamePresence, Input: InputHex, Sources: domain, Policy: PolicyRawCount, Shape: ShapePresence},
		{Name: NameProof, Input: InputHex, Sources: cat, Policy: PolicyValidCount, Shape: ShapeProof},
	}, nil
}

// Scripts builds the shipped scripts from cat.
func Scripts(cat *catalog.Catalog) ([]*Script, error) {
	variants, err := Variants(cat)
	if err != nil {
		return nil, err
	}
	scripts := make([]*Script, 0, len(variants))
	for _, v := range variants {
		s, err := New(v)
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, s)
	}
	return scripts, nil
}
