package domain

import "errors"

// ErrEmptyQuestion indicates that a question is empty after trimming.
var ErrEmptyQuestion = errors.New("question must not be empty")

// ErrEmptyAnswer indicates that an answer has no text.
var ErrEmptyAnswer = errors.New("answer text must not be empty")

// ErrInvalidCriterion indicates that a criterion score is outside the [1,5] rubric range.
var ErrInvalidCriterion = errors.New("criterion score must be between 1 and 5")

// ErrInvalidThreshold indicates that a regeneration threshold is outside the rubric range.
var ErrInvalidThreshold = errors.New("regeneration threshold must be between 1 and 5")
