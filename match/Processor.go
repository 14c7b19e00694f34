package match

import (
	"github.com/pkg/errors"

	"sfneuman.com/godraft/draft"
	"sfneuman.com/godraft/expreplay"
)

// Processor decomposes match records into ordered experience
// sequences, one per team perspective.
type Processor struct {
	numChampions int
	numBans      int
}

// NewProcessor returns a Processor for matches drawn from a pool of
// numChampions champions with numBans bans per team.
func NewProcessor(numChampions, numBans int) (*Processor, error) {
	if numChampions < 1 {
		return nil, errors.Errorf("newprocessor: champion pool must be "+
			"positive, got %d", numChampions)
	}
	if numBans < 1 {
		return nil, errors.Errorf("newprocessor: bans per team must be "+
			"positive, got %d", numBans)
	}
	return &Processor{numChampions: numChampions, numBans: numBans}, nil
}

// Decompose converts a match record seen from one team's perspective
// into its ordered experience sequence: one experience per ban and
// pick, in submission order. Enemy bans are visible from the first
// state; each enemy pick becomes visible before this team's pick of
// the same round. A skipped ban yields a null-action experience; it
// advances the draft but callers exclude it from replay buffers.
func (p *Processor) Decompose(m Match, team draft.Team) ([]expreplay.Experience, error) {
	own := m.Team(team)
	enemy := m.Team(team.Other())

	if len(own.Bans) != p.numBans {
		return nil, errors.Errorf("decompose: %v team submitted %d bans, "+
			"want %d", team, len(own.Bans), p.numBans)
	}
	if len(own.Picks) != draft.NumRoles {
		return nil, errors.Errorf("decompose: %v team submitted %d picks, "+
			"want %d", team, len(own.Picks), draft.NumRoles)
	}
	if err := p.checkChampions(own); err != nil {
		return nil, errors.Wrapf(err, "decompose: %v team", team)
	}
	if err := p.checkChampions(enemy); err != nil {
		return nil, errors.Wrapf(err, "decompose: %v team", team.Other())
	}

	state := draft.New(p.numChampions, p.numBans, team)
	for _, cid := range enemy.Bans {
		state = state.WithEnemyBan(cid)
	}

	experiences := make([]expreplay.Experience, 0, p.numBans+draft.NumRoles)
	for _, cid := range own.Bans {
		next := state.ApplyAction(cid, draft.PositionBan)
		experiences = append(experiences, expreplay.Experience{
			State:     state,
			Action:    draft.Action{ChampionID: cid, Position: draft.PositionBan},
			Reward:    Reward(next, m),
			NextState: next,
		})
		state = next
	}
	for i, pick := range own.Picks {
		if i < len(enemy.Picks) {
			state = state.WithEnemyPick(enemy.Picks[i].ChampionID)
		}
		next := state.ApplyAction(pick.ChampionID, pick.Position)
		experiences = append(experiences, expreplay.Experience{
			State:     state,
			Action:    draft.Action{ChampionID: pick.ChampionID, Position: pick.Position},
			Reward:    Reward(next, m),
			NextState: next,
		})
		state = next
	}

	return experiences, nil
}

func (p *Processor) checkChampions(td TeamDraft) error {
	for _, cid := range td.Bans {
		if cid != draft.NoChampion && (cid < 0 || cid >= p.numChampions) {
			return errors.Errorf("banned champion %d outside pool [0, %d)",
				cid, p.numChampions)
		}
	}
	for _, pick := range td.Picks {
		if pick.ChampionID < 0 || pick.ChampionID >= p.numChampions {
			return errors.Errorf("picked champion %d outside pool [0, %d)",
				pick.ChampionID, p.numChampions)
		}
	}
	return nil
}
