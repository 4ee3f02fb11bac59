package models

import (
	"math/rand"
	"time"

	"gorm.io/gorm"
)

// Question is a row of the question bank: one correct answer and two
// distractors per language. Option positions are only decided when the
// question is dealt into a game.
type Question struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Language     string         `json:"language" gorm:"not null;index"`
	Text         string         `json:"text" gorm:"not null"`
	Answer       string         `json:"answer" gorm:"not null"`
	WrongAnswer1 string         `json:"wrong_answer1" gorm:"not null"`
	WrongAnswer2 string         `json:"wrong_answer2" gorm:"not null"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

// GameQuestion is an immutable value inside the room record. The shuffled
// option order, not the underlying correctness, is what clients see while a
// round is active; CorrectOption is stripped from round payloads until the
// round ends.
type GameQuestion struct {
	QuestionID    uint   `json:"question_id"`
	Round         int    `json:"round"`
	Text          string `json:"text"`
	OptionA       string `json:"option_a"`
	OptionB       string `json:"option_b"`
	OptionC       string `json:"option_c"`
	CorrectOption string `json:"correct_option,omitempty"` // "A", "B" or "C"
}

var optionSlots = []string{"A", "B", "C"}

// DealQuestion shuffles the correct answer and the two distractors into slots
// A/B/C with a uniform random permutation and records which slot ended up
// correct.
func DealQuestion(q Question, round int, rng *rand.Rand) GameQuestion {
	answers := [3]string{q.Answer, q.WrongAnswer1, q.WrongAnswer2}
	perm := rng.Perm(3)

	var slots [3]string
	correct := ""
	for src, dst := range perm {
		slots[dst] = answers[src]
		if src == 0 {
			correct = optionSlots[dst]
		}
	}

	return GameQuestion{
		QuestionID:    q.ID,
		Round:         round,
		Text:          q.Text,
		OptionA:       slots[0],
		OptionB:       slots[1],
		OptionC:       slots[2],
		CorrectOption: correct,
	}
}

// Option returns the option text in the given slot.
func (q GameQuestion) Option(slot string) string {
	switch slot {
	case "A":
		return q.OptionA
	case "B":
		return q.OptionB
	case "C":
		return q.OptionC
	}
	return ""
}
