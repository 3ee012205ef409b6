package sorter

import "testing"

func TestAggregatorName(t *testing.T) {
	if got := AggregatorName("House"); got != "「House」" {
		t.Errorf("Expected 「House」, got %q", got)
	}
}

func TestIsAggregatorFor(t *testing.T) {
	tests := []struct {
		playlistName string
		folder       string
		want         bool
	}{
		{"「House」", "House", true},
		{"「house」", "House", true}, // name keys are case-insensitive
		{" 「House」 ", "House", true},
		{"「House」", "Jazz", false},
		{"House", "House", false},
		{"「House」", "", false},
	}
	for _, tt := range tests {
		if got := IsAggregatorFor(tt.playlistName, tt.folder); got != tt.want {
			t.Errorf("IsAggregatorFor(%q, %q) = %v, want %v",
				tt.playlistName, tt.folder, got, tt.want)
		}
	}
}
