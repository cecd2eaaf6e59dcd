package trace

// TraceLevel controls how much of a trial's count the ensemble keeps.
type TraceLevel string

const (
	// TraceLevelNone keeps no election traces.
	TraceLevelNone TraceLevel = "none"
	// TraceLevelRounds keeps the round-by-round trace of each zone's first trial.
	TraceLevelRounds TraceLevel = "rounds"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:   true,
	TraceLevelRounds: true,
	"":               true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// ElectionTrace collects round records during one STV count.
type ElectionTrace struct {
	Seats      int           `json:"seats"`
	Quota      float64       `json:"quota"`
	TotalVotes float64       `json:"total_votes"`
	Rounds     []RoundRecord `json:"rounds"`
}

// NewElectionTrace creates an ElectionTrace ready for recording.
func NewElectionTrace(seats int, quota, totalVotes float64) *ElectionTrace {
	return &ElectionTrace{
		Seats:      seats,
		Quota:      quota,
		TotalVotes: totalVotes,
		Rounds:     make([]RoundRecord, 0),
	}
}

// RecordRound appends a round record.
func (et *ElectionTrace) RecordRound(record RoundRecord) {
	et.Rounds = append(et.Rounds, record)
}
