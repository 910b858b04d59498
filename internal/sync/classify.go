package sync

import (
	"path/filepath"

	"github.com/firefly-engineering/skill-quiver/internal/provenance"
)

// State is the classification of a skill against a resolved revision.
type State int

const (
	// Stale skills have no provenance or a different revision.
	Stale State = iota
	// Current skills already reflect the resolved revision.
	Current
)

func (s State) String() string {
	if s == Current {
		return "current"
	}
	return "stale"
}

// SkillStatus is the classification of one skill directory.
type SkillStatus struct {
	Name       string
	Dir        string
	State      State
	Provenance *provenance.Record
}

// IsStale reports whether rec does not reflect revision.
func IsStale(rec *provenance.Record, revision string) bool {
	return rec == nil || rec.Revision != revision
}

// Classify reads the provenance of each skill under skillsDir and compares
// it to revision. An unreadable sidecar is returned as an error, never as
// stale.
func Classify(skillsDir string, skills []string, revision string) ([]SkillStatus, error) {
	statuses := make([]SkillStatus, 0, len(skills))
	for _, skill := range skills {
		dir := filepath.Join(skillsDir, skill)
		rec, err := provenance.Read(dir)
		if err != nil {
			return nil, err
		}

		state := Current
		if IsStale(rec, revision) {
			state = Stale
		}
		statuses = append(statuses, SkillStatus{Name: skill, Dir: dir, State: state, Provenance: rec})
	}
	return statuses, nil
}

// staleOf returns the stale subset of statuses.
func staleOf(statuses []SkillStatus) []SkillStatus {
	var stale []SkillStatus
	for _, s := range statuses {
		if s.State == Stale {
			stale = append(stale, s)
		}
	}
	return stale
}
