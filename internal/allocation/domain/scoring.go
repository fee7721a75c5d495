package domain

import (
	"math"
	"sort"
)

// Candidate scoring weights. The 40/20/25/15 split is a fixed policy
// constant; behavioral parity depends on it.
const (
	weightSkillMatch  = 40
	weightSkillRating = 20
	weightLoad        = 25
	weightCapacityFit = 15

	// fullMatchRating is the rating assumed for a task with no skill
	// requirements: everyone is fully qualified.
	fullMatchRating = 10
)

// MatchedSkill records one skill a person holds among a task's requirements.
type MatchedSkill struct {
	SkillID int64
	Name    string
	Rating  int
}

// SkillMatch is the result of matching a person against a task's required
// skill set.
type SkillMatch struct {
	Ratio     float64 // percentage 0..100
	Matched   []MatchedSkill
	AvgRating float64 // mean rating over exactly the matched skills; 0 if none
}

// MatchSkills computes the skill-match ratio, matched detail, and average
// matched rating for a (task, person) pair. A task with no requirements
// matches fully with empty detail and the default rating.
func MatchSkills(required []int64, skillNames map[int64]string, ratings map[int64]int) SkillMatch {
	if len(required) == 0 {
		return SkillMatch{Ratio: 100, AvgRating: fullMatchRating}
	}

	// Required skill ids can repeat in malformed data; dedupe first.
	seen := make(map[int64]struct{}, len(required))
	unique := required[:0:0]
	for _, id := range required {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	sort.Slice(unique, func(i, j int) bool { return unique[i] < unique[j] })

	var (
		matched []MatchedSkill
		sum     int
	)
	for _, id := range unique {
		rating, ok := ratings[id]
		if !ok {
			continue
		}
		matched = append(matched, MatchedSkill{SkillID: id, Name: skillNames[id], Rating: rating})
		sum += rating
	}

	match := SkillMatch{
		Ratio:   float64(len(matched)) / float64(len(unique)) * 100,
		Matched: matched,
	}
	if len(matched) > 0 {
		match.AvgRating = float64(sum) / float64(len(matched))
	}
	return match
}

// ScoreBreakdown itemizes a candidate score per component.
type ScoreBreakdown struct {
	SkillMatch  float64
	SkillRating float64
	Load        float64
	CapacityFit float64
}

// ScoreCandidate blends skill match, skill rating, inverse load, and
// capacity fit into a 0..100 score. consumedHours is the candidate's task
// load already booked against availableHours in the scoring window.
func ScoreCandidate(estimatedHours, matchRatio, avgRating, workloadRatio, availableHours, consumedHours float64) (float64, ScoreBreakdown) {
	matchScore := matchRatio / 100 * weightSkillMatch
	ratingScore := avgRating / 10 * weightSkillRating

	load := (100 - workloadRatio) / 100
	if load < 0 {
		load = 0
	}
	loadScore := load * weightLoad

	remaining := availableHours - consumedHours
	if remaining < 0 {
		remaining = 0
	}
	var fitScore float64
	switch {
	case estimatedHours <= 0 || remaining <= 0:
		fitScore = 0
	case remaining >= estimatedHours:
		fitScore = weightCapacityFit
	default:
		fitScore = remaining / estimatedHours * weightCapacityFit
	}

	total := round2(matchScore + ratingScore + loadScore + fitScore)
	return total, ScoreBreakdown{
		SkillMatch:  round2(matchScore),
		SkillRating: round2(ratingScore),
		Load:        round2(loadScore),
		CapacityFit: round2(fitScore),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
