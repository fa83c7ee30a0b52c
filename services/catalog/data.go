package catalog

import (
	"studiobook/models"

	"github.com/shopspring/decimal"
)

func gbp(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// StudioServices is the price list published on the website.
var StudioServices = []models.ServiceCategory{
	{
		ID:   "recording",
		Name: "Recording",
		Items: []models.ServiceLineItem{
			{ID: "studio-hour", Name: "Studio Recording", Description: "Live room and control room with an engineer.", UnitPrice: gbp("45"), Unit: "per hour", ModifierKind: models.ModifierHours},
			{ID: "vocal-session", Name: "Vocal Session", Description: "Vocal booth, engineer and comping of the best takes.", UnitPrice: gbp("120"), Unit: "per session", ModifierKind: models.ModifierQuantity},
			{ID: "full-day", Name: "Full Day Lockout", Description: "Ten hours of exclusive studio use.", UnitPrice: gbp("380"), Unit: "per day", ModifierKind: models.ModifierNone},
			{ID: "podcast", Name: "Podcast Recording", Description: "Up to four microphones, recorded to separate tracks.", UnitPrice: gbp("60"), Unit: "per hour", ModifierKind: models.ModifierHours},
		},
	},
	{
		ID:   "mixing",
		Name: "Mixing",
		Items: []models.ServiceLineItem{
			{ID: "full-mix", Name: "Full Mix", Description: "Complete mix with two rounds of revisions.", UnitPrice: gbp("300"), Unit: "per song", ModifierKind: models.ModifierQuantity},
			{ID: "stem-mix", Name: "Stem Mix", Description: "Mix from up to eight supplied stems.", UnitPrice: gbp("180"), Unit: "per song", ModifierKind: models.ModifierQuantity},
			{ID: "vocal-tuning", Name: "Vocal Tuning", Description: "Pitch and timing correction for lead vocals.", UnitPrice: gbp("40"), Unit: "per song", ModifierKind: models.ModifierQuantity},
		},
	},
	{
		ID:   "mastering",
		Name: "Mastering",
		Items: []models.ServiceLineItem{
			{ID: "single", Name: "Mastering", Description: "Streaming and CD masters for one track.", UnitPrice: gbp("60"), Unit: "per song", ModifierKind: models.ModifierQuantity},
			{ID: "ep", Name: "EP Mastering", Description: "Up to six tracks mastered as a set.", UnitPrice: gbp("250"), Unit: "per EP", ModifierKind: models.ModifierNone},
			{ID: "stem-master", Name: "Stem Mastering", Description: "Mastering from grouped stems.", UnitPrice: gbp("95"), Unit: "per song", ModifierKind: models.ModifierQuantity},
		},
	},
	{
		ID:   "production",
		Name: "Production",
		Items: []models.ServiceLineItem{
			{ID: "beat", Name: "Custom Beat", Description: "Original instrumental with exclusive rights.", UnitPrice: gbp("250"), Unit: "per song", ModifierKind: models.ModifierQuantity},
			{ID: "session-musician", Name: "Session Musician", Description: "Guitar, bass, keys or drums.", UnitPrice: gbp("70"), Unit: "per hour", ModifierKind: models.ModifierHours},
			{ID: "arrangement", Name: "Arrangement", Description: "Song structure and instrumentation plan.", UnitPrice: gbp("150"), Unit: "per song", ModifierKind: models.ModifierQuantity},
		},
	},
	{
		ID:   "extras",
		Name: "Extras",
		Items: []models.ServiceLineItem{
			{ID: "rush", Name: "Rush Delivery", Description: "Mix or master delivered within 48 hours.", UnitPrice: gbp("75"), Unit: "per order", ModifierKind: models.ModifierNone},
			{ID: "stems-export", Name: "Stems Export", Description: "Consolidated stems of the final mix.", UnitPrice: gbp("25"), Unit: "per song", ModifierKind: models.ModifierQuantity},
			{ID: "consultation", Name: "Consultation", Description: "Pre-production call with an engineer.", UnitPrice: gbp("0"), Unit: "per session", ModifierKind: models.ModifierNone},
		},
	},
}

// Default returns the compiled-in studio catalog.
func Default() *StaticCatalog {
	return MustNew(StudioServices)
}
