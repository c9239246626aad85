// Package headset resolves a Cortex headset id or firmware hint to the
// channel layout the typed stream decoders need: EEG channel count, raw
// contact-quality sensor count, and nominal sample rate. Cortex headsets
// are identified by an id prefix (e.g. "EPOCPLUS", "INSIGHT2") rather
// than a stable numeric model id, so lookup is prefix-based.
package headset

import "strings"

// Model describes the channel layout of one headset family.
type Model struct {
	Name           string
	EEGChannels    []string // ordered channel names, in wire order
	QualityChannels []string // sensors reported by the dev/eq streams
	SampleRateHz   int
}

func (m Model) EEGChannelCount() int     { return len(m.EEGChannels) }
func (m Model) QualityChannelCount() int { return len(m.QualityChannels) }

var (
	epoc = Model{
		Name:         "EPOC",
		EEGChannels:  []string{"AF3", "F7", "F3", "FC5", "T7", "P7", "O1", "O2", "P8", "T8", "FC6", "F4", "F8", "AF4"},
		SampleRateHz: 128,
	}
	epocPlus = Model{
		Name:         "EPOCPLUS",
		EEGChannels:  []string{"AF3", "F7", "F3", "FC5", "T7", "P7", "O1", "O2", "P8", "T8", "FC6", "F4", "F8", "AF4"},
		SampleRateHz: 256,
	}
	epocX = Model{
		Name:         "EPOCX",
		EEGChannels:  []string{"AF3", "F7", "F3", "FC5", "T7", "P7", "O1", "O2", "P8", "T8", "FC6", "F4", "F8", "AF4"},
		SampleRateHz: 256,
	}
	epocFlex = Model{
		Name: "EPOCFLEX",
		EEGChannels: []string{
			"AF3", "AF4", "AF7", "AF8", "AFz", "C1", "C2", "C3", "C4", "C5", "C6", "CP1", "CP2", "CP3", "CP4", "CP5",
			"CP6", "CPz", "Cz", "F1", "F2", "F3", "F4", "F5", "F6", "F7", "F8", "FC1", "FC2", "FC3", "FC4", "Fz",
		},
		SampleRateHz: 256,
	}
	insight = Model{
		Name:         "INSIGHT",
		EEGChannels:  []string{"AF3", "AF4", "T7", "T8", "Pz"},
		SampleRateHz: 128,
	}
	insight2 = Model{
		Name:         "INSIGHT2",
		EEGChannels:  []string{"AF3", "AF4", "T7", "T8", "Pz"},
		SampleRateHz: 128,
	}
	mn8 = Model{
		Name:         "MN8",
		EEGChannels:  []string{"T7", "T8"},
		SampleRateHz: 128,
	}

	// Unknown is the fallback model for unrecognized ids. It has no EEG
	// and no quality channels, so samples decoded against it carry empty
	// channel maps; channel values in the event are not inferred from
	// its length, and DecodeEEG reads elements 2 and 3 as rawCQ and
	// markerHardware whatever the event carries there.
	Unknown = Model{Name: "UNKNOWN"}
)

// table maps an id prefix (matched case-insensitively, longest-prefix
// first) to its Model. Order matters: longer/more specific prefixes are
// listed before their substrings (e.g. "EPOCPLUS" before "EPOC").
var table = []Model{epocFlex, epocPlus, epocX, epoc, insight2, insight, mn8}

func init() {
	for i := range table {
		table[i].QualityChannels = table[i].EEGChannels
	}
}

// Lookup resolves a headset id or firmware hint (e.g. "EPOCPLUS-12AB",
// "insight2") to its Model. Matching is case-insensitive prefix matching
// against the known model families; an unrecognized hint returns Unknown
// rather than an error, since typed decoders degrade gracefully for
// unknown layouts.
func Lookup(idOrFirmwareHint string) Model {
	upper := strings.ToUpper(idOrFirmwareHint)
	for _, m := range table {
		if strings.HasPrefix(upper, m.Name) {
			return m
		}
	}
	return Unknown
}
