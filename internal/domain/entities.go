package domain

// MethodUnit is one method or function found in a parsed file.
type MethodUnit struct {
	Name          string
	Kind          string
	Language      Language
	Source        string
	HasDocComment bool
	StartByte     int
	EndByte       int
	StartLine     int
	EndLine       int
}

// Span returns the half-open byte range of the unit in the original file.
func (u MethodUnit) Span() (int, int) {
	return u.StartByte, u.EndByte
}

// Replacement pairs a unit's original text with its documented version.
type Replacement struct {
	Name       string
	Original   string
	Documented string
	StartByte  int
	EndByte    int
}

// NewReplacement builds a replacement for unit carrying its parse-time span.
func NewReplacement(unit MethodUnit, documented string) Replacement {
	return Replacement{
		Name:       unit.Name,
		Original:   unit.Source,
		Documented: documented,
		StartByte:  unit.StartByte,
		EndByte:    unit.EndByte,
	}
}

type GenerationRequest struct {
	Language Language
	Source   string
	Inline   bool
}

// UnitOutcome records what happened to a single unit during a run.
type UnitOutcome string

const (
	OutcomeDocumented      UnitOutcome = "documented"
	OutcomeSkippedExisting UnitOutcome = "skipped_existing"
	OutcomeDeclined        UnitOutcome = "declined"
	OutcomeGenerationError UnitOutcome = "generation_failed"
	OutcomeSpliceMiss      UnitOutcome = "splice_miss"
)
