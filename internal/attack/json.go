package attack

import (
	"encoding/json"
	"fmt"
	"strconv"
)

const legacyLifeStealKey = "lifeSteal"

var reservedKeys = map[string]bool{
	"id":          true,
	"name":        true,
	"damageRolls": true,
	"rerollDice":  true,
}

// MarshalJSON writes the known fields and every extra attribute as one
// object. encoding/json sorts map keys, so output is deterministic.
func (d Definition) MarshalJSON() ([]byte, error) {
	fields := make(map[string]any, len(d.Extra)+4)
	for k, v := range d.Extra {
		fields[k] = v
	}
	rolls := d.DamageRolls
	if rolls == nil {
		rolls = []DamageRoll{}
	}
	rerolls := d.RerollDice
	if rerolls == nil {
		rerolls = []RerollDie{}
	}
	fields["id"] = d.ID
	fields["name"] = d.Name
	fields["damageRolls"] = rolls
	fields["rerollDice"] = rerolls
	return json.Marshal(fields)
}

type storedRoll struct {
	Dice      string     `json:"dice"`
	Min       int        `json:"min"`
	Bonus     int        `json:"bonus"`
	Type      string     `json:"type"`
	LifeSteal *LifeSteal `json:"lifeSteal"`
}

// UnmarshalJSON reads a stored attack, upgrading older layouts: an
// attack-level lifeSteal moves into each roll that lacks one, rolls without
// lifeSteal get a zero percentage and a missing rerollDice becomes empty.
func (d *Definition) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var out Definition
	if err := decodeField(raw, "id", &out.ID); err != nil {
		return err
	}
	if err := decodeField(raw, "name", &out.Name); err != nil {
		return err
	}
	var rolls []storedRoll
	if err := decodeField(raw, "damageRolls", &rolls); err != nil {
		return err
	}
	if err := decodeField(raw, "rerollDice", &out.RerollDice); err != nil {
		return err
	}
	if out.RerollDice == nil {
		out.RerollDice = []RerollDie{}
	}

	var legacy *LifeSteal
	if msg, ok := raw[legacyLifeStealKey]; ok {
		if err := json.Unmarshal(msg, &legacy); err != nil {
			return fmt.Errorf("decode attack lifeSteal: %w", err)
		}
		if legacy != nil && legacy.Percentage > 0 {
			delete(raw, legacyLifeStealKey)
		} else {
			legacy = nil
		}
	}

	out.DamageRolls = make([]DamageRoll, 0, len(rolls))
	for _, roll := range rolls {
		steal := LifeSteal{}
		switch {
		case roll.LifeSteal != nil:
			steal = *roll.LifeSteal
		case legacy != nil:
			steal = *legacy
		}
		out.DamageRolls = append(out.DamageRolls, DamageRoll{
			Dice:      roll.Dice,
			Min:       roll.Min,
			Bonus:     roll.Bonus,
			Type:      roll.Type,
			LifeSteal: steal,
		})
	}

	for key := range reservedKeys {
		delete(raw, key)
	}
	if len(raw) > 0 {
		out.Extra = raw
	}
	*d = out
	return nil
}

func decodeField(raw map[string]json.RawMessage, key string, target any) error {
	msg, ok := raw[key]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(msg, target); err != nil {
		return fmt.Errorf("decode attack %s: %w", key, err)
	}
	return nil
}

func itoa(v int) string {
	return strconv.Itoa(v)
}
