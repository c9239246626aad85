package headset

import "testing"

func TestLookup(t *testing.T) {
	tests := []struct {
		hint     string
		wantName string
		wantEEG  int
	}{
		{"EPOCPLUS-4F21A9", "EPOCPLUS", 14},
		{"epocplus-lowercase", "EPOCPLUS", 14},
		{"EPOC-1234", "EPOC", 14},
		{"EPOCX-AABB", "EPOCX", 14},
		{"EPOCFLEX-0001", "EPOCFLEX", 32},
		{"INSIGHT2-9F", "INSIGHT2", 5},
		{"INSIGHT-9F", "INSIGHT", 5},
		{"MN8-0012", "MN8", 2},
		{"SOMETHING-ELSE", "UNKNOWN", 0},
		{"", "UNKNOWN", 0},
	}
	for _, tt := range tests {
		t.Run(tt.hint, func(t *testing.T) {
			m := Lookup(tt.hint)
			if m.Name != tt.wantName {
				t.Errorf("Lookup(%q).Name = %q, want %q", tt.hint, m.Name, tt.wantName)
			}
			if m.EEGChannelCount() != tt.wantEEG {
				t.Errorf("Lookup(%q).EEGChannelCount() = %d, want %d", tt.hint, m.EEGChannelCount(), tt.wantEEG)
			}
		})
	}
}

func TestLookup_EpocPlusBeforeEpoc(t *testing.T) {
	// EPOCPLUS must not be shadowed by the shorter EPOC prefix.
	m := Lookup("EPOCPLUS-ABCDEF")
	if m.Name != "EPOCPLUS" {
		t.Fatalf("Lookup matched %q, want EPOCPLUS prefix to win over EPOC", m.Name)
	}
}

func TestUnknown_NoQualityChannels(t *testing.T) {
	if Unknown.QualityChannelCount() != 0 {
		t.Errorf("Unknown.QualityChannelCount() = %d, want 0", Unknown.QualityChannelCount())
	}
}
