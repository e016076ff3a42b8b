package dice

import (
	"fmt"
	"strconv"
	"strings"
)

// Expression is a parsed dice expression such as "2d6+3". A flat expression
// ("5") has a zero Dice spec.
type Expression struct {
	Dice  DiceSpec
	Bonus int
}

// Flat reports whether the expression rolls no dice.
func (e Expression) Flat() bool {
	return e.Dice.Count == 0
}

// Max returns the highest total the expression can produce.
func (e Expression) Max() int {
	return e.Dice.Count*e.Dice.Sides + e.Bonus
}

// String formats the expression back into NdS[+B] notation.
func (e Expression) String() string {
	if e.Flat() {
		return strconv.Itoa(e.Bonus)
	}
	base := fmt.Sprintf("%dd%d", e.Dice.Count, e.Dice.Sides)
	switch {
	case e.Bonus > 0:
		return base + "+" + strconv.Itoa(e.Bonus)
	case e.Bonus < 0:
		return base + strconv.Itoa(e.Bonus)
	default:
		return base
	}
}

// Parse reads NdS, NdS+B, NdS-B, dS and flat integer expressions. Case and
// surrounding whitespace are ignored.
func Parse(expression string) (Expression, error) {
	text := strings.ToLower(strings.Join(strings.Fields(expression), ""))
	if text == "" {
		return Expression{}, ErrMissingDice
	}

	dicePart, bonus, err := splitBonus(text)
	if err != nil {
		return Expression{}, err
	}

	count, sides, found := strings.Cut(dicePart, "d")
	if !found {
		flat, err := strconv.Atoi(dicePart)
		if err != nil {
			return Expression{}, invalidExpression(expression)
		}
		return Expression{Bonus: flat + bonus}, nil
	}

	n := 1
	if count != "" {
		n, err = strconv.Atoi(count)
		if err != nil {
			return Expression{}, invalidExpression(expression)
		}
	}
	s, err := strconv.Atoi(sides)
	if err != nil {
		return Expression{}, invalidExpression(expression)
	}
	spec := DiceSpec{Count: n, Sides: s}
	if err := spec.Validate(); err != nil {
		return Expression{}, invalidExpression(expression)
	}
	return Expression{Dice: spec, Bonus: bonus}, nil
}

// splitBonus separates a trailing +B or -B modifier from the dice part.
func splitBonus(text string) (string, int, error) {
	idx := strings.LastIndexAny(text, "+-")
	if idx <= 0 {
		return text, 0, nil
	}
	bonus, err := strconv.Atoi(text[idx:])
	if err != nil {
		return "", 0, invalidExpression(text)
	}
	return text[:idx], bonus, nil
}

func invalidExpression(expression string) error {
	return fmt.Errorf("parse %q: %w", expression, ErrInvalidDiceSpec)
}

// RollExpression rolls e, returning the faces and the total
// including the bonus.
func (r *Roller) RollExpression(e Expression) ([]int, int, error) {
	if e.Flat() {
		return []int{}, e.Bonus, nil
	}
	faces, err := r.Roll(e.Dice)
	if err != nil {
		return nil, 0, err
	}
	return faces, sum(faces) + e.Bonus, nil
}
