package combat

import (
	"fmt"
	"strings"

	"github.com/louisbranch/dmscreen/internal/attack"
	"github.com/louisbranch/dmscreen/internal/dice"
)

// CriticalRule selects how a critical hit increases damage.
type CriticalRule string

const (
	// RuleDefault rolls every damage die twice.
	RuleDefault CriticalRule = "default"
	// RuleMaximized adds one maximized set of dice to a normal roll.
	RuleMaximized CriticalRule = "maximized"
	// RuleMassive adds the level-based massive damage bonus to a normal roll.
	RuleMassive CriticalRule = "massive"
)

// ParseCriticalRule reads a rule name. An empty name is RuleDefault.
func ParseCriticalRule(value string) (CriticalRule, error) {
	switch rule := CriticalRule(strings.ToLower(strings.TrimSpace(value))); rule {
	case "":
		return RuleDefault, nil
	case RuleDefault, RuleMaximized, RuleMassive:
		return rule, nil
	default:
		return "", fmt.Errorf("unknown critical rule %q", value)
	}
}

// CriticalConfig configures ExecuteCritical.
type CriticalConfig struct {
	Rule           CriticalRule
	CharacterLevel int
}

// ExecuteCritical resolves the attack as a critical hit.
func ExecuteCritical(def attack.Definition, cfg CriticalConfig, roller *dice.Roller) (Result, error) {
	rule := cfg.Rule
	if rule == "" {
		rule = RuleDefault
	}

	var (
		result Result
		err    error
	)
	switch rule {
	case RuleDefault:
		result, err = resolve(def, func(expr dice.Expression) ([]int, error) {
			doubled := expr.Dice
			doubled.Count *= 2
			return rollFaces(roller, doubled)
		})
	case RuleMaximized:
		result, err = resolve(def, func(expr dice.Expression) ([]int, error) {
			faces, err := rollFaces(roller, expr.Dice)
			if err != nil {
				return nil, err
			}
			for i := 0; i < expr.Dice.Count; i++ {
				faces = append(faces, expr.Dice.Sides)
			}
			return faces, nil
		})
	case RuleMassive:
		result, err = Execute(def, roller)
		if err == nil {
			result.CriticalBonus = DadBonus(cfg.CharacterLevel)
			result.recompute()
		}
	default:
		return Result{}, fmt.Errorf("unknown critical rule %q", rule)
	}
	if err != nil {
		return Result{}, err
	}
	result.Critical = true
	return result, nil
}

// DadBonus returns the massive damage bonus for a character level: 10 for
// levels 1-4, 20 for 5-10, 30 for 11-16, 40 for 17-20, then 50 plus 10 for
// every four levels past 21.
func DadBonus(level int) int {
	switch {
	case level <= 0:
		return 0
	case level <= 4:
		return 10
	case level <= 10:
		return 20
	case level <= 16:
		return 30
	case level <= 20:
		return 40
	default:
		return 50 + (level-21)/4*10
	}
}
