// Package score turns solved hurdles into points.
//
// A hurdle is worth hurdleNumber × 100 points, scaled by how quickly it was
// solved. Only solves within MaxGuesses guesses are scoreable.
package score

import (
	"errors"
	"fmt"
	"math"
)

// MaxGuesses is the largest guess count that has a multiplier.
const MaxGuesses = 4

// BasePoints is the per-hurdle base before scaling.
const BasePoints = 100

var (
	ErrInvalidGuessCount   = errors.New("score: guess count must be between 1 and 4")
	ErrInvalidHurdleNumber = errors.New("score: hurdle number must be at least 1")
)

// Multiplier returns the scaling factor for solving in guessCount guesses.
func Multiplier(guessCount int) (float64, error) {
	switch guessCount {
	case 1:
		return 1.75, nil
	case 2:
		return 1.5, nil
	case 3:
		return 1.25, nil
	case 4:
		return 1.0, nil
	default:
		return 0, fmt.Errorf("%w, got %d", ErrInvalidGuessCount, guessCount)
	}
}

// Score returns the rounded points for solving hurdleNumber in guessCount guesses.
func Score(hurdleNumber, guessCount int) (int, error) {
	if hurdleNumber < 1 {
		return 0, fmt.Errorf("%w, got %d", ErrInvalidHurdleNumber, hurdleNumber)
	}
	m, err := Multiplier(guessCount)
	if err != nil {
		return 0, err
	}
	return int(math.Round(float64(hurdleNumber*BasePoints) * m)), nil
}

// Scored is anything carrying a point value.
type Scored interface {
	Points() int
}

// Final sums the points of every item; an empty list scores 0.
func Final[S Scored](items []S) int {
	total := 0
	for _, it := range items {
		total += it.Points()
	}
	return total
}
