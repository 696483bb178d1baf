package model

import "strings"

// Ticker identifies a tradable security using the data provider's separator
// convention (BRK-B rather than BRK.B).
type Ticker string

// NormalizeTicker trims scraped text and replaces share-class dots with hyphens.
func NormalizeTicker(raw string) Ticker {
	return Ticker(strings.ReplaceAll(strings.TrimSpace(raw), ".", "-"))
}

func (t Ticker) String() string { return string(t) }
