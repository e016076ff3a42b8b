package combat

// DamageType is a known damage type and its display color.
type DamageType struct {
	ID    string
	Color string
}

// DefaultColor is used for types outside the catalog.
const DefaultColor = "#ffffff"

// DamageTypes lists the supported damage types in display order.
var DamageTypes = []DamageType{
	{ID: "bludgeoning", Color: "#a1887f"},
	{ID: "piercing", Color: "#757575"},
	{ID: "slashing", Color: "#bdbdbd"},
	{ID: "acid", Color: "#8bc34a"},
	{ID: "cold", Color: "#26c6da"},
	{ID: "fire", Color: "#ff7043"},
	{ID: "force", Color: "#ab47bc"},
	{ID: "lightning", Color: "#ffca28"},
	{ID: "necrotic", Color: "#546e7a"},
	{ID: "poison", Color: "#66bb6a"},
	{ID: "psychic", Color: "#ec407a"},
	{ID: "radiant", Color: "#ffee58"},
	{ID: "thunder", Color: "#7e57c2"},
}

// LookupDamageType finds a damage type by id.
func LookupDamageType(id string) (DamageType, bool) {
	for _, t := range DamageTypes {
		if t.ID == id {
			return t, true
		}
	}
	return DamageType{}, false
}

// ColorFor returns the display color for a damage type id.
func ColorFor(id string) string {
	if t, ok := LookupDamageType(id); ok {
		return t.Color
	}
	return DefaultColor
}
