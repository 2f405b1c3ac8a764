// internal/fields/catalog.go
package fields

import (
	"github.com/tamzrod/cnc-poller/internal/device"
)

// Field names. These are the keys of the published document.
const (
	ID                 = "id"
	Speed              = "speed"
	Speeds             = "speeds"
	FeedRate           = "feed_rate"
	FeedRateAndSpeed   = "feed_rate_and_speed"
	ModalGCode         = "modal_gcode"
	OneShotGCode       = "one_shot_gcode"
	ModalData          = "modal_data"
	OneShotData        = "one_shot_data"
	AxisData           = "axis_data"
	OtherData          = "other_data"
	PreviousModalGCode = "previous_modal_gcode"
	NextModalGCode     = "next_modal_gcode"
)

// ---- catalog ----

var catalog = []Spec{
	{ID, func(h device.Handle) (any, error) { return h.ReadID() }},
	{Speed, func(h device.Handle) (any, error) { return h.ReadSpindleSpeed() }},
	{Speeds, func(h device.Handle) (any, error) { return h.ReadSpindleSpeeds(device.AllSpindles) }},
	{FeedRate, func(h device.Handle) (any, error) { return h.ReadFeedRate() }},
	{FeedRateAndSpeed, func(h device.Handle) (any, error) { return h.ReadFeedRateAndSpeed(device.SpeedModeBoth) }},
	{ModalGCode, gcodeRead(device.GCodeAllModal, device.BlockActive)},
	{OneShotGCode, gcodeRead(device.GCodeAllOneShot, device.BlockActive)},
	{ModalData, modalRead(device.ModalAllGCode, device.BlockActive)},
	{OneShotData, modalRead(device.ModalAllOneShot, device.BlockActive)},
	{AxisData, modalRead(device.ModalAllAxis, device.BlockActive)},
	{OtherData, modalRead(device.ModalAllOther, device.BlockActive)},
	{PreviousModalGCode, gcodeRead(device.GCodeAllModal, device.BlockPrevious)},
	{NextModalGCode, gcodeRead(device.GCodeAllModal, device.BlockNext)},
}

func gcodeRead(kind int16, block device.Block) ReadFunc {
	return func(h device.Handle) (any, error) { return h.ReadGCode(kind, block) }
}

func modalRead(kind int16, block device.Block) ReadFunc {
	return func(h device.Handle) (any, error) { return h.ReadModal(kind, block) }
}

// Catalog returns every known field name in catalog order.
func Catalog() []string {
	out := make([]string, len(catalog))
	for i, sp := range catalog {
		out[i] = sp.Name
	}
	return out
}

func lookup(name string) (Spec, bool) {
	for _, sp := range catalog {
		if sp.Name == name {
			return sp, true
		}
	}
	return Spec{}, false
}

// ---- profiles ----

const (
	ProfileBasic = "basic"
	ProfileLite  = "lite"
	ProfileFull  = "full"

	DefaultProfile = ProfileFull
)

var profiles = map[string][]string{
	ProfileBasic: {ID, Speed, Speeds, FeedRate},
	ProfileLite: {
		ID, Speed, Speeds, FeedRate, FeedRateAndSpeed,
		ModalGCode, OneShotGCode, ModalData, OneShotData,
		PreviousModalGCode, NextModalGCode,
	},
	ProfileFull: Catalog(),
}

// Profiles returns the known profile names, sorted.
func Profiles() []string {
	return []string{ProfileBasic, ProfileFull, ProfileLite}
}

// Profile returns the field names of a profile.
func Profile(name string) ([]string, bool) {
	names, ok := profiles[name]
	if !ok {
		return nil, false
	}
	out := make([]string, len(names))
	copy(out, names)
	return out, true
}

// Known reports whether name is in the catalog.
func Known(name string) bool {
	_, ok := lookup(name)
	return ok
}
