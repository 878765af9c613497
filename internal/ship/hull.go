// Copyright 2026 Arobi. All Rights Reserved.

package ship

import "math"

// HullSection names one of the eight hull regions damage distributes over.
type HullSection string

const (
	SectionBow       HullSection = "bow"
	SectionStern     HullSection = "stern"
	SectionPort      HullSection = "port"
	SectionStarboard HullSection = "starboard"
	SectionKeel      HullSection = "keel"
	SectionDeck      HullSection = "deck"
	SectionUpper     HullSection = "upper"
	SectionLower     HullSection = "lower"
)

// HullSections lists the sections in deterministic order.
var HullSections = []HullSection{
	SectionBow, SectionStern, SectionPort, SectionStarboard,
	SectionKeel, SectionDeck, SectionUpper, SectionLower,
}

// HullState is the hull variant payload: sectioned structure plus water
// intake bookkeeping.
type HullState struct {
	Sections   map[HullSection]float64 `json:"sections"` // health per section
	Thickness  float64                 `json:"thickness"`
	BaseVolume float64                 `json:"baseVolume"` // m³ displacement at full integrity
	Material   HullMaterial            `json:"material"`

	// IntakeRate is the water intake in fraction/s contributed to ship
	// water intrusion; grows with breach damage.
	IntakeRate float64 `json:"intakeRate"`
}

// NewHull builds a hull component sized for a ship type. Section health
// sums to the component max health.
func NewHull(t *ShipType) *Component {
	maxHP := t.BaseHealth
	sections := make(map[HullSection]float64, len(HullSections))
	for _, s := range HullSections {
		sections[s] = maxHP / float64(len(HullSections))
	}
	c := newComponent(KindHull, "hull", maxHP, t.BaseMass*0.4)
	c.Hull = &HullState{
		Sections:   sections,
		Thickness:  1.0,
		BaseVolume: t.Length * t.Width * t.Draft * 0.65,
		Material:   t.HullMaterial,
	}
	return c
}

// Volume returns the displacement volume after damage and material factor.
func (h *HullState) Volume() float64 {
	return h.BaseVolume * h.Thickness * h.Material.BuoyancyFactor()
}

// SectionHealthTotal sums live section health.
func (h *HullState) SectionHealthTotal() float64 {
	total := 0.0
	for _, hp := range h.Sections {
		total += hp
	}
	return total
}

// sectionWeights returns the per-section damage multiplier for a damage
// kind. Ramming concentrates at the bow, reef strikes at the keel, cannon
// fire at the sides.
func sectionWeights(kind DamageKind) map[HullSection]float64 {
	switch kind {
	case DamageRamming:
		return map[HullSection]float64{
			SectionBow: 3.0, SectionStern: 0.5, SectionPort: 0.5, SectionStarboard: 0.5,
			SectionKeel: 0.5, SectionDeck: 0.5, SectionUpper: 0.5, SectionLower: 0.5,
		}
	case DamageReef:
		return map[HullSection]float64{
			SectionBow: 1.0, SectionStern: 1.0, SectionPort: 1.0, SectionStarboard: 1.0,
			SectionKeel: 4.0, SectionDeck: 0.2, SectionUpper: 0.2, SectionLower: 1.5,
		}
	case DamageCannonBall:
		return map[HullSection]float64{
			SectionBow: 1.0, SectionStern: 1.0, SectionPort: 2.0, SectionStarboard: 2.0,
			SectionKeel: 1.0, SectionDeck: 1.0, SectionUpper: 1.0, SectionLower: 1.0,
		}
	}
	w := make(map[HullSection]float64, len(HullSections))
	for _, s := range HullSections {
		w[s] = 1.0
	}
	return w
}

// breachKinds are the damage kinds that open the hull to water.
var breachKinds = map[DamageKind]bool{
	DamageCannonBall: true,
	DamageRamming:    true,
	DamageCollision:  true,
	DamageReef:       true,
}

// routeDamage distributes dealt damage across sections and grows the water
// intake rate for breaching kinds.
func (h *HullState) routeDamage(c *Component, dealt float64, kind DamageKind) {
	weights := sectionWeights(kind)
	totalW := 0.0
	for _, s := range HullSections {
		totalW += weights[s]
	}
	if totalW <= 0 {
		return
	}
	for _, s := range HullSections {
		share := dealt * weights[s] / totalW
		h.Sections[s] = math.Max(0, h.Sections[s]-share)
	}

	if breachKinds[kind] {
		// Intake grows with breach severity relative to hull size, and
		// below-waterline sections leak harder.
		severity := dealt / math.Max(1, c.MaxHealth)
		lowFrac := 1.0
		if c.MaxHealth > 0 {
			low := h.Sections[SectionKeel] + h.Sections[SectionLower] +
				h.Sections[SectionPort] + h.Sections[SectionStarboard]
			lowFrac = 2 - low/(c.MaxHealth*0.5)
		}
		h.IntakeRate += severity * 0.05 * math.Max(1, lowFrac)
	}

	// Thickness tracks overall section integrity.
	if c.MaxHealth > 0 {
		h.Thickness = 0.3 + 0.7*h.SectionHealthTotal()/c.MaxHealth
	}
}
