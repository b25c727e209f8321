package exam

import "github.com/mind-engage/examhall/internal/grading"

type scoreSheet struct {
	score    int
	maxScore int
	results  map[string]QuestionResult
}

// scoreAnswers grades every question in order. A question without an answer
// is graded as the empty string; answers for ids outside questions are
// ignored.
func scoreAnswers(g *grading.Grader, questions []Question, answers map[string]string) (scoreSheet, error) {
	sheet := scoreSheet{results: make(map[string]QuestionResult, len(questions))}
	for _, q := range questions {
		sheet.maxScore += q.Points
		given := answers[q.ID]

		res, err := g.Grade(grading.Q{Type: gradingType(q.QuestionType), Points: q.Points, AnswerKey: q.CorrectAnswer}, given)
		if err != nil {
			return scoreSheet{}, err
		}
		sheet.score += res.Awarded
		sheet.results[q.ID] = QuestionResult{
			StudentAnswer: given,
			CorrectAnswer: q.CorrectAnswer,
			IsCorrect:     res.Correct,
			Explanation:   q.Explanation,
			QuestionText:  q.QuestionText,
		}
	}
	return sheet, nil
}

func gradingType(t QuestionType) string {
	switch t {
	case QuestionObjective:
		return grading.TypeObjective
	case QuestionTheory:
		return grading.TypeTheory
	}
	return string(t)
}
