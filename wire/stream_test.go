package wire

import "testing"

func TestDecodeStreamEnvelope(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantKey StreamKey
	}{
		{"eeg", `{"eeg":[1,2,3],"sid":"s1","time":100.0}`, StreamEEG},
		{"motion", `{"mot":[1,2],"sid":"s1","time":100.0}`, StreamMotion},
		{"device", `{"dev":[1,[2],3],"sid":"s1","time":100.0}`, StreamDevice},
		{"power", `{"pow":[1,2],"sid":"s1","time":100.0}`, StreamPower},
		{"metrics", `{"met":[1,2],"sid":"s1","time":100.0}`, StreamMetrics},
		{"command", `{"com":["neutral",0.1],"sid":"s1","time":100.0}`, StreamCommand},
		{"facial", `{"fac":["neutral","smile",0.1,0.2],"sid":"s1","time":100.0}`, StreamFacial},
		{"quality", `{"eq":[1,2],"sid":"s1","time":100.0}`, StreamQuality},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := DecodeStreamEnvelope([]byte(tt.raw))
			if err != nil {
				t.Fatalf("DecodeStreamEnvelope() error = %v", err)
			}
			if env.Key != tt.wantKey {
				t.Errorf("Key = %q, want %q", env.Key, tt.wantKey)
			}
			if env.SID != "s1" {
				t.Errorf("SID = %q, want %q", env.SID, "s1")
			}
		})
	}
}

func TestDecodeStreamEnvelope_UnknownKey(t *testing.T) {
	_, err := DecodeStreamEnvelope([]byte(`{"warning":{"code":1},"sid":"s1","time":1.0}`))
	if err == nil {
		t.Error("expected error for frame with no known stream key")
	}
}
