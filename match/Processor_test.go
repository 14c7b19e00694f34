package match

import (
	"testing"

	"sfneuman.com/godraft/draft"
)

const (
	testChampions = 20
	testBans      = 5
)

var testPositions = [draft.NumRoles]draft.Position{draft.PositionTop,
	draft.PositionJungle, draft.PositionMiddle, draft.PositionBottom,
	draft.PositionSupport}

// testMatch returns a legal match: blue bans 0..4 and picks 10..14,
// red bans 5..9 and picks 15..19.
func testMatch(winner Outcome) Match {
	m := Match{Winner: winner}
	for i := 0; i < testBans; i++ {
		m.Blue.Bans = append(m.Blue.Bans, i)
		m.Red.Bans = append(m.Red.Bans, testBans+i)
	}
	for i := 0; i < draft.NumRoles; i++ {
		m.Blue.Picks = append(m.Blue.Picks, Pick{10 + i, testPositions[i]})
		m.Red.Picks = append(m.Red.Picks, Pick{15 + i, testPositions[i]})
	}
	return m
}

func newTestProcessor(t *testing.T) *Processor {
	t.Helper()
	p, err := NewProcessor(testChampions, testBans)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestDecompose(t *testing.T) {
	p := newTestProcessor(t)
	m := testMatch(BlueWin)

	experiences, err := p.Decompose(m, draft.BlueTeam)
	if err != nil {
		t.Fatal(err)
	}
	if len(experiences) != testBans+draft.NumRoles {
		t.Fatalf("expected %d experiences, got %d", testBans+draft.NumRoles,
			len(experiences))
	}

	// Submissions appear in match order: bans first, then picks
	for i := 0; i < testBans; i++ {
		if experiences[i].Action.Position != draft.PositionBan {
			t.Errorf("experience %d: expected a ban, got %v", i,
				experiences[i].Action.Position)
		}
		if experiences[i].Action.ChampionID != i {
			t.Errorf("experience %d: expected champion %d, got %d", i, i,
				experiences[i].Action.ChampionID)
		}
	}
	for i := 0; i < draft.NumRoles; i++ {
		got := experiences[testBans+i].Action
		if got.ChampionID != 10+i || got.Position != testPositions[i] {
			t.Errorf("pick experience %d: got (%d, %v)", i, got.ChampionID,
				got.Position)
		}
	}

	// Each experience's state is its predecessor's next state
	for i := 1; i < len(experiences); i++ {
		if experiences[i].State.Evaluate() == draft.Complete {
			t.Errorf("experience %d starts from a terminal state", i)
		}
	}

	// Only the final transition is terminal, and it carries the win
	last := experiences[len(experiences)-1]
	if code := last.NextState.Evaluate(); code != draft.Complete {
		t.Fatalf("expected terminal final state, got %v", code)
	}
	if last.Reward != 1 {
		t.Errorf("expected winning reward 1, got %v", last.Reward)
	}
	for i, exp := range experiences[:len(experiences)-1] {
		if exp.Reward != 0 {
			t.Errorf("experience %d: expected reward 0, got %v", i,
				exp.Reward)
		}
	}
}

func TestDecomposeLosingTeam(t *testing.T) {
	p := newTestProcessor(t)
	m := testMatch(BlueWin)

	experiences, err := p.Decompose(m, draft.RedTeam)
	if err != nil {
		t.Fatal(err)
	}

	last := experiences[len(experiences)-1]
	if last.Reward != -1 {
		t.Errorf("expected losing reward -1, got %v", last.Reward)
	}
}

func TestDecomposeSkippedBan(t *testing.T) {
	p := newTestProcessor(t)
	m := testMatch(BlueWin)
	m.Blue.Bans[2] = draft.NoChampion

	experiences, err := p.Decompose(m, draft.BlueTeam)
	if err != nil {
		t.Fatal(err)
	}

	if !experiences[2].Action.Null() {
		t.Error("expected a null experience for the skipped ban")
	}
	// The skipped ban still advances the draft to completion
	last := experiences[len(experiences)-1]
	if code := last.NextState.Evaluate(); code != draft.Complete {
		t.Errorf("expected terminal final state, got %v", code)
	}
}

func TestDecomposeEnemyContext(t *testing.T) {
	p := newTestProcessor(t)
	m := testMatch(BlueWin)

	experiences, err := p.Decompose(m, draft.BlueTeam)
	if err != nil {
		t.Fatal(err)
	}

	// Enemy bans are visible from the very first state
	first := experiences[0].State.Encode()
	for _, cid := range m.Red.Bans {
		if first[cid*7] != 1 {
			t.Errorf("enemy ban %d not visible in initial state", cid)
		}
	}

	// The i-th enemy pick is visible in the state of the i-th own pick
	for i := range m.Blue.Picks {
		enc := experiences[testBans+i].State.Encode()
		for j := 0; j <= i; j++ {
			cid := m.Red.Picks[j].ChampionID
			if enc[cid*7+1] != 1 {
				t.Errorf("enemy pick %d not visible before own pick %d",
					cid, i)
			}
		}
	}
}

func TestDecomposeErrors(t *testing.T) {
	p := newTestProcessor(t)

	m := testMatch(BlueWin)
	m.Blue.Bans = m.Blue.Bans[:3]
	if _, err := p.Decompose(m, draft.BlueTeam); err == nil {
		t.Error("expected error for short ban list")
	}

	m = testMatch(BlueWin)
	m.Blue.Picks = append(m.Blue.Picks, Pick{0, draft.PositionTop})
	if _, err := p.Decompose(m, draft.BlueTeam); err == nil {
		t.Error("expected error for excess picks")
	}

	m = testMatch(BlueWin)
	m.Red.Picks[0].ChampionID = testChampions
	if _, err := p.Decompose(m, draft.BlueTeam); err == nil {
		t.Error("expected error for out-of-pool enemy champion")
	}
}

func TestNewProcessorErrors(t *testing.T) {
	if _, err := NewProcessor(0, testBans); err == nil {
		t.Error("expected error for empty champion pool")
	}
	if _, err := NewProcessor(testChampions, 0); err == nil {
		t.Error("expected error for zero bans")
	}
}

func TestRewardInvalidState(t *testing.T) {
	// A duplicated pick is invalid regardless of the match outcome
	state := draft.New(testChampions, testBans, draft.BlueTeam).
		ApplyAction(2, draft.PositionTop).
		ApplyAction(2, draft.PositionJungle)

	if got := Reward(state, testMatch(BlueWin)); got != -2 {
		t.Errorf("expected invalid reward -2, got %v", got)
	}
}

func TestRewardBlankMatch(t *testing.T) {
	// Terminal states of a winner-less match earn nothing
	state := draft.New(testChampions, testBans, draft.BlueTeam)
	for i := 0; i < testBans; i++ {
		state = state.ApplyAction(i, draft.PositionBan)
	}
	for i := 0; i < draft.NumRoles; i++ {
		state = state.ApplyAction(10+i, testPositions[i])
	}
	if state.Evaluate() != draft.Complete {
		t.Fatal("test state should be complete")
	}

	if got := Reward(state, Blank()); got != 0 {
		t.Errorf("expected reward 0 for blank match, got %v", got)
	}
}

func TestRewardInProgress(t *testing.T) {
	state := draft.New(testChampions, testBans, draft.BlueTeam).
		ApplyAction(0, draft.PositionBan)
	if got := Reward(state, testMatch(BlueWin)); got != 0 {
		t.Errorf("expected reward 0 for in-progress state, got %v", got)
	}
}
