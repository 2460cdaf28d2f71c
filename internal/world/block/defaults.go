package block

import "fmt"

// Namespace - пространство имён встроенных блоков генератора
const Namespace = "simpleminer"

// Имена встроенных блоков
const (
	NameAir        = "air"
	NameStone      = "stone"
	NameDirt       = "dirt"
	NameGrass      = "grass"
	NameSand       = "sand"
	NameWater      = "water"
	NameIce        = "ice"
	NameLava       = "lava"
	NameObsidian   = "obsidian"
	NameCoalOre    = "coal_ore"
	NameIronOre    = "iron_ore"
	NameGoldOre    = "gold_ore"
	NameDiamondOre = "diamond_ore"
)

// defaultBlocks - порядок регистрации задаёт ID, воздух обязан быть первым
var defaultBlocks = []Definition{
	{Name: NameAir, Solid: false},
	{Name: NameStone, Solid: true, Hardness: 1.5},
	{Name: NameDirt, Solid: true, Hardness: 0.5},
	{Name: NameGrass, Solid: true, Hardness: 0.6},
	{Name: NameSand, Solid: true, Hardness: 0.5},
	{Name: NameWater, Solid: false},
	{Name: NameIce, Solid: true, Hardness: 0.5},
	{Name: NameLava, Solid: false},
	{Name: NameObsidian, Solid: true, Hardness: 50},
	{Name: NameCoalOre, Solid: true, Hardness: 3},
	{Name: NameIronOre, Solid: true, Hardness: 3},
	{Name: NameGoldOre, Solid: true, Hardness: 3},
	{Name: NameDiamondOre, Solid: true, Hardness: 3},
}

// RegisterDefaults регистрирует встроенные блоки генератора в пустом реестре
func RegisterDefaults(r *Registry) error {
	for _, def := range defaultBlocks {
		def.Namespace = Namespace
		if _, err := r.Register(def); err != nil {
			return fmt.Errorf("register %s: %w", def.Name, err)
		}
	}
	return nil
}

// NewDefaultRegistry создаёт реестр со встроенными блоками
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	// Ошибка невозможна: реестр пуст, имена уникальны
	_ = RegisterDefaults(r)
	return r
}
