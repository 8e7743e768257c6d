package league

import "testing"

func TestNumPlayersPerTeam(t *testing.T) {
	if got := NumPlayersPerTeam(DefaultMaxRosterSize); got != 13 {
		t.Fatalf("got %d want 13", got)
	}
}

func TestDraftClassTargetSize(t *testing.T) {
	tests := []struct {
		rounds, teams, want int
	}{
		{2, 30, 70},
		{1, 30, 35},
		{2, 16, 37},
	}
	for _, tc := range tests {
		if got := DraftClassTargetSize(tc.rounds, tc.teams); got != tc.want {
			t.Fatalf("rounds=%d teams=%d got=%d want=%d", tc.rounds, tc.teams, got, tc.want)
		}
	}
}

func TestRookieContractYears(t *testing.T) {
	if got := RookieContractYears(1); got != 3 {
		t.Fatalf("round 1: got %d want 3", got)
	}
	if got := RookieContractYears(2); got != 2 {
		t.Fatalf("round 2: got %d want 2", got)
	}
	if got := RookieContractYears(5); got != 1 {
		t.Fatalf("round 5: got %d want 1", got)
	}
}

func TestRoundContract(t *testing.T) {
	tests := []struct{ in, want int }{
		{749, 700},
		{750, 750},
		{776, 750},
		{30000, 30000},
	}
	for _, tc := range tests {
		if got := roundContract(tc.in); got != tc.want {
			t.Fatalf("roundContract(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
