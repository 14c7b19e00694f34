// Package draft implements the pick/ban draft state machine from which
// learning experiences are generated. A DraftState records one team's
// view of a draft in progress: its own ordered submissions together
// with the enemy picks and bans known so far.
package draft

// Team identifies one of the two drafting sides.
type Team int

const (
	BlueTeam Team = iota
	RedTeam
)

func (t Team) String() string {
	if t == RedTeam {
		return "red"
	}
	return "blue"
}

// Other returns the opposing team.
func (t Team) Other() Team {
	if t == BlueTeam {
		return RedTeam
	}
	return BlueTeam
}

// Position is the slot a champion is submitted to: a ban, or one of
// the five roles.
type Position int

const (
	PositionBan Position = iota
	PositionTop
	PositionJungle
	PositionMiddle
	PositionBottom
	PositionSupport
)

// NumPositions is the number of submittable positions per champion
// (ban plus the five roles).
const NumPositions = 6

// NumRoles is the number of role picks a completed draft contains.
const NumRoles = 5

func (p Position) String() string {
	switch p {
	case PositionBan:
		return "ban"
	case PositionTop:
		return "top"
	case PositionJungle:
		return "jungle"
	case PositionMiddle:
		return "middle"
	case PositionBottom:
		return "bottom"
	case PositionSupport:
		return "support"
	}
	return "unknown"
}

// NoChampion is the sentinel champion ID of a null submission, such as
// a ban a team declined to use.
const NoChampion = -1

// Action is a single draft submission.
type Action struct {
	ChampionID int
	Position   Position
}

// Null returns whether the action is a null submission. Null actions
// occur in match records (skipped bans) but are never stored in replay
// buffers.
func (a Action) Null() bool {
	return a.ChampionID == NoChampion
}

// Code classifies a draft state. Codes other than InProgress and
// Complete mark invalid states; these are never reached by replaying a
// match record and arise only from learner-predicted actions.
type Code int

const (
	InProgress Code = iota
	Complete
	BanAndSubmission
	DuplicateSubmission
	DuplicateRole
	InvalidSubmission
)

// Invalid returns whether the code marks an illegal draft state.
func (c Code) Invalid() bool {
	return c >= BanAndSubmission
}

func (c Code) String() string {
	switch c {
	case InProgress:
		return "in progress"
	case Complete:
		return "complete"
	case BanAndSubmission:
		return "ban and submission conflict"
	case DuplicateSubmission:
		return "duplicate submission"
	case DuplicateRole:
		return "duplicate role"
	case InvalidSubmission:
		return "invalid submission"
	}
	return "unknown"
}

// Encoding channels, per champion: banned by either side, picked by
// the enemy, and one channel per role picked by this team.
const (
	banChannel   = 0
	enemyChannel = 1
	roleChannel  = 2
	numChannels  = roleChannel + NumRoles
)

// Features returns the length of the encoding of a draft state over
// numChampions champions.
func Features(numChampions int) int {
	return numChampions * numChannels
}

// NumActions returns the size of the action space over numChampions
// champions.
func NumActions(numChampions int) int {
	return numChampions * NumPositions
}

// DraftState is one team's view of a draft. Values returned by
// ApplyAction, WithEnemyPick and WithEnemyBan are copies; a captured
// state is never mutated afterwards.
type DraftState struct {
	numChampions int
	numBans      int
	team         Team

	submissions []Action // this team's picks and bans, in order
	enemyPicks  []int
	enemyBans   []int
}

// New returns an empty draft state for a team drafting numBans bans
// and NumRoles picks over a pool of numChampions champions.
func New(numChampions, numBans int, team Team) *DraftState {
	return &DraftState{
		numChampions: numChampions,
		numBans:      numBans,
		team:         team,
	}
}

// NumChampions returns the size of the champion pool.
func (d *DraftState) NumChampions() int {
	return d.numChampions
}

// Team returns the team whose view this state is.
func (d *DraftState) Team() Team {
	return d.team
}

// Features returns the length of this state's encoding.
func (d *DraftState) Features() int {
	return Features(d.numChampions)
}

// NumActions returns the size of this state's action space.
func (d *DraftState) NumActions() int {
	return NumActions(d.numChampions)
}

func (d *DraftState) clone() *DraftState {
	next := &DraftState{
		numChampions: d.numChampions,
		numBans:      d.numBans,
		team:         d.team,
	}
	next.submissions = append(next.submissions, d.submissions...)
	next.enemyPicks = append(next.enemyPicks, d.enemyPicks...)
	next.enemyBans = append(next.enemyBans, d.enemyBans...)
	return next
}

// ApplyAction returns a copy of the state with the submission
// appended. The receiver is unchanged. A null champion ban records a
// skipped ban; it counts toward the ban quota but claims no champion.
func (d *DraftState) ApplyAction(championID int, position Position) *DraftState {
	next := d.clone()
	next.submissions = append(next.submissions, Action{championID, position})
	return next
}

// WithEnemyPick returns a copy of the state with an enemy pick added
// to the visible context.
func (d *DraftState) WithEnemyPick(championID int) *DraftState {
	next := d.clone()
	if championID != NoChampion {
		next.enemyPicks = append(next.enemyPicks, championID)
	}
	return next
}

// WithEnemyBan returns a copy of the state with an enemy ban added to
// the visible context.
func (d *DraftState) WithEnemyBan(championID int) *DraftState {
	next := d.clone()
	if championID != NoChampion {
		next.enemyBans = append(next.enemyBans, championID)
	}
	return next
}

// Evaluate classifies the state. Invalid conditions are checked before
// completion, and conflicts before duplicates of the same kind:
// BanAndSubmission, then DuplicateSubmission, then DuplicateRole, then
// InvalidSubmission for anything else illegal. A state with numBans
// bans and NumRoles legal picks is Complete.
func (d *DraftState) Evaluate() Code {
	banned := make(map[int]bool, len(d.enemyBans)+d.numBans)
	for _, cid := range d.enemyBans {
		banned[cid] = true
	}
	taken := make(map[int]bool, len(d.enemyPicks)+NumRoles)
	for _, cid := range d.enemyPicks {
		taken[cid] = true
	}

	bans, picks := 0, 0
	roles := make(map[Position]bool, NumRoles)
	for _, sub := range d.submissions {
		if sub.Position == PositionBan {
			bans++
			if sub.Null() {
				continue
			}
			if banned[sub.ChampionID] {
				return DuplicateSubmission
			}
			banned[sub.ChampionID] = true
			continue
		}

		picks++
		if sub.Null() || sub.Position < PositionBan || sub.Position > PositionSupport {
			return InvalidSubmission
		}
		if banned[sub.ChampionID] {
			return BanAndSubmission
		}
		if taken[sub.ChampionID] {
			return DuplicateSubmission
		}
		if roles[sub.Position] {
			return DuplicateRole
		}
		taken[sub.ChampionID] = true
		roles[sub.Position] = true
	}

	for cid := range banned {
		if taken[cid] {
			return BanAndSubmission
		}
	}
	if bans > d.numBans || picks > NumRoles {
		return InvalidSubmission
	}
	if bans == d.numBans && picks == NumRoles {
		return Complete
	}
	return InProgress
}

// Encode returns the fixed-shape numeric encoding of the state: one
// block of numChannels values per champion.
func (d *DraftState) Encode() []float64 {
	enc := make([]float64, d.Features())
	set := func(championID, channel int) {
		if championID >= 0 && championID < d.numChampions {
			enc[championID*numChannels+channel] = 1
		}
	}

	for _, cid := range d.enemyBans {
		set(cid, banChannel)
	}
	for _, cid := range d.enemyPicks {
		set(cid, enemyChannel)
	}
	for _, sub := range d.submissions {
		if sub.Null() {
			continue
		}
		if sub.Position == PositionBan {
			set(sub.ChampionID, banChannel)
			continue
		}
		set(sub.ChampionID, roleChannel+int(sub.Position-PositionTop))
	}
	return enc
}

// ActionIndex maps a submission to its index in the network's output
// vector.
func (d *DraftState) ActionIndex(championID int, position Position) int {
	return championID*NumPositions + int(position)
}

// DecodeAction is the inverse of ActionIndex.
func (d *DraftState) DecodeAction(index int) (int, Position) {
	return index / NumPositions, Position(index % NumPositions)
}
