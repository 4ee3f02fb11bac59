package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"quizclash/models"
)

// QuestionService is the gorm-backed question bank.
type QuestionService struct {
	db *gorm.DB
}

func NewQuestionService(db *gorm.DB) *QuestionService {
	return &QuestionService{db: db}
}

// GetRandomQuestions returns count random bank questions for the language.
func (s *QuestionService) GetRandomQuestions(ctx context.Context, language string, count int) ([]models.Question, error) {
	var questions []models.Question
	err := s.db.WithContext(ctx).
		Where("language = ?", language).
		Order("RANDOM()").
		Limit(count).
		Find(&questions).Error
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	if len(questions) < count {
		return nil, ErrNotEnoughQuestions
	}
	return questions, nil
}

// CreateQuestion adds a bank row; used by the import tooling.
func (s *QuestionService) CreateQuestion(ctx context.Context, question *models.Question) error {
	if err := s.db.WithContext(ctx).Create(question).Error; err != nil {
		return fmt.Errorf("create question: %w", err)
	}
	return nil
}

// CountQuestions reports the bank size for a language.
func (s *QuestionService) CountQuestions(ctx context.Context, language string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Question{}).
		Where("language = ?", language).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return count, nil
}
