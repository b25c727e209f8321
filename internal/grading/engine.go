package grading

import (
	"fmt"
	"math"
)

// Q is the minimal view of a question needed for grading.
type Q struct {
	Type      string
	Points    int
	AnswerKey string
}

// Result is the outcome of grading a single response.
type Result struct {
	Correct   bool
	Awarded   int
	MaxPoints int
}

// Strategy grades a single question type.
type Strategy interface {
	Grade(q Q, response string) Result
}

// Grader routes by question type to the correct Strategy.
type Grader struct {
	strategies map[string]Strategy
}

// Question type names understood by NewDefaultGrader.
const (
	TypeObjective = "objective"
	TypeTheory    = "theory"
)

// NewDefaultGrader installs the objective and theory strategies.
func NewDefaultGrader() *Grader {
	return &Grader{
		strategies: map[string]Strategy{
			TypeObjective: exactMatchStrategy{},
			TypeTheory:    attemptedStrategy{},
		},
	}
}

// Grade fails only for a type with no registered strategy.
func (g *Grader) Grade(q Q, response string) (Result, error) {
	s, ok := g.strategies[q.Type]
	if !ok {
		return Result{MaxPoints: q.Points}, fmt.Errorf("grading: no strategy for question type %q", q.Type)
	}
	return s.Grade(q, response), nil
}

// exactMatchStrategy: trimmed, case-insensitive equality with the key.
type exactMatchStrategy struct{}

func (exactMatchStrategy) Grade(q Q, response string) Result {
	return award(q, normalize(response) == normalize(q.AnswerKey))
}

// attemptedStrategy gives full credit for any non-blank answer. Free text is
// not compared with the reference answer and there is no partial credit.
type attemptedStrategy struct{}

func (attemptedStrategy) Grade(q Q, response string) Result {
	return award(q, !isBlank(response))
}

func award(q Q, correct bool) Result {
	res := Result{Correct: correct, MaxPoints: q.Points}
	if correct {
		res.Awarded = q.Points
	}
	return res
}

// Percentage is score/max*100 rounded to two decimals, and 0 when max is 0.
func Percentage(score, max int) float64 {
	if max <= 0 {
		return 0
	}
	return math.Round(float64(score)/float64(max)*100*100) / 100
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
