package contract

import "testing"

func TestChannelForStage(t *testing.T) {
	t.Parallel()

	cases := []struct {
		stage string
		want  Channel
	}{
		{"new inquiry", ChannelCRM},
		{"Nurture", ChannelCRM},
		{"  GBP Review Requested  ", ChannelCRM},
		{"leads", ChannelProject},
		{"In-Production", ChannelProject},
		{"final billing", ChannelProject},
		{"", ChannelUnknown},
		{"something else", ChannelUnknown},
	}

	for _, tc := range cases {
		if got := ChannelForStage(tc.stage); got != tc.want {
			t.Errorf("ChannelForStage(%q) = %q, want %q", tc.stage, got, tc.want)
		}
	}
}

func TestNewSessionContextDerivesChannel(t *testing.T) {
	t.Parallel()

	sc := NewSessionContext(" c1 ", "Jane Doe", "o1", "Kitchen Remodel", " J-77 ", "In-Design")
	if sc.ClientID != "c1" {
		t.Fatalf("ClientID = %q, want %q", sc.ClientID, "c1")
	}
	if sc.JobID != "J-77" {
		t.Fatalf("JobID = %q, want %q", sc.JobID, "J-77")
	}
	if sc.Channel != ChannelProject {
		t.Fatalf("Channel = %q, want %q", sc.Channel, ChannelProject)
	}
}
