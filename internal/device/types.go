// internal/device/types.go
package device

import "math"

// SpindleSpeeds is the result of a multi-spindle speed read.
type SpindleSpeeds struct {
	Count int     `json:"datano"`
	Data  []int32 `json:"data"`
}

// SpeedElement is one scaled reading: the real value is Data / 10^Dec.
type SpeedElement struct {
	Data    int32  `json:"data"`
	Dec     int16  `json:"dec"`
	Unit    int16  `json:"unit"`
	Reserve int16  `json:"reserve"`
	Name    string `json:"name"`
	Suffix  string `json:"suff"`
}

// Unit codes reported in SpeedElement.Unit.
const (
	UnitMMPerMin   int16 = 0
	UnitInchPerMin int16 = 1
	UnitRPM        int16 = 2
	UnitMMPerRev   int16 = 3
	UnitInchPerRev int16 = 4
)

// Scaled returns the decimal value of the element.
func (e SpeedElement) Scaled() float64 {
	return float64(e.Data) / math.Pow10(int(e.Dec))
}

// FeedRateAndSpeed is the combined feed/spindle read. A nil element was not requested.
type FeedRateAndSpeed struct {
	FeedRate     *SpeedElement `json:"feed_rate,omitempty"`
	SpindleSpeed *SpeedElement `json:"spindle_speed,omitempty"`
}

// GCode is one decoded G-code entry.
type GCode struct {
	Group int16  `json:"group"`
	Flag  int16  `json:"flag"`
	Code  string `json:"code"`
}

// ModalEntry is one item of modal data. Address is the decoded
// address letter or G-code text for the entry's data number.
type ModalEntry struct {
	DataNo  int16  `json:"datano"`
	Address string `json:"address"`
	Value   int32  `json:"value"`
	Flag    int16  `json:"flag"`
}

// ModalBlock is the result of a modal read.
type ModalBlock struct {
	Kind    int16        `json:"type"`
	Block   Block        `json:"block"`
	Entries []ModalEntry `json:"entries"`
}
