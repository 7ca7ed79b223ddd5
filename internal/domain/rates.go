package domain

import (
	"math"
	"time"
)

// Prices holds spot prices from the price source: crypto → fiat → price of
// one crypto unit in that fiat.
type Prices map[Currency]map[Currency]float64

// Matrix maps a source currency to destination rates, expressed as
// destination units per one source unit.
type Matrix map[Currency]map[Currency]float64

// Rate returns the usable rate for from→to. Absent, non-positive and
// non-finite entries are reported as unavailable.
func (m Matrix) Rate(from, to Currency) (float64, bool) {
	r, ok := m[from][to]
	if !ok || r <= 0 || math.IsInf(r, 0) || math.IsNaN(r) {
		return 0, false
	}
	return r, true
}

// Set stores r for from→to.
func (m Matrix) Set(from, to Currency, r float64) {
	row, ok := m[from]
	if !ok {
		row = make(map[Currency]float64)
		m[from] = row
	}
	row[to] = r
}

// Pair is a directed currency pair.
type Pair struct {
	From Currency `json:"from"`
	To   Currency `json:"to"`
}

func (p Pair) String() string { return string(p.From) + "/" + string(p.To) }

// RateSource tells where the rates of a snapshot came from.
type RateSource string

const (
	SourceLive     RateSource = "live"
	SourcePartial  RateSource = "partial"
	SourceFallback RateSource = "fallback"
)

// RateSnapshot is one rebuilt rate matrix together with how it was obtained.
type RateSnapshot struct {
	Rates       Matrix     `json:"rates"`
	Source      RateSource `json:"source"`
	Advisory    string     `json:"advisory,omitempty"`
	Substituted []Pair     `json:"substituted,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Approximate reports whether the whole matrix comes from the fallback table.
func (s RateSnapshot) Approximate() bool {
	return s.Source == SourceFallback
}
