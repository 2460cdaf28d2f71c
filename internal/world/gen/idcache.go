package gen

import "github.com/annel0/simpleminer/internal/world/block"

// BlockLookup - часть реестра блоков, нужная генератору
type BlockLookup interface {
	GetBlockId(namespace, name string) (block.BlockID, bool)
	GetBlockById(id block.BlockID) (*block.Definition, bool)
	GetBlocksByNamespace(namespace string) []*block.Definition
}

// BlockIDCache - таблица BlockType -> BlockID, построенная один раз.
// После NewBlockIDCache не изменяется, читать можно из любых горутин.
type BlockIDCache struct {
	ids   [blockTypeCount]block.BlockID
	found [blockTypeCount]bool
	defs  map[block.BlockID]*block.Definition
}

// NewBlockIDCache заполняет кэш из реестра (пространство имён simpleminer)
func NewBlockIDCache(reg BlockLookup) *BlockIDCache {
	c := &BlockIDCache{
		defs: make(map[block.BlockID]*block.Definition),
	}
	if reg == nil {
		return c
	}

	for _, def := range reg.GetBlocksByNamespace(block.Namespace) {
		if def != nil {
			c.defs[def.ID] = def
		}
	}

	for t := BlockType(0); t < blockTypeCount; t++ {
		id, ok := reg.GetBlockId(block.Namespace, t.Name())
		if !ok {
			continue
		}
		c.ids[t] = id
		c.found[t] = true
		if _, cached := c.defs[id]; !cached {
			if def, ok := reg.GetBlockById(id); ok {
				c.defs[id] = def
			}
		}
	}
	return c
}

// ID возвращает ID блока для типа. Незарегистрированный тип заменяется воздухом;
// ok=false, только если не зарегистрирован и воздух.
func (c *BlockIDCache) ID(t BlockType) (block.BlockID, bool) {
	if t < blockTypeCount && c.found[t] {
		return c.ids[t], true
	}
	if c.found[BlockAir] {
		return c.ids[BlockAir], true
	}
	return block.AirBlockID, false
}

// Definition возвращает закэшированное определение блока
func (c *BlockIDCache) Definition(id block.BlockID) (*block.Definition, bool) {
	def, ok := c.defs[id]
	return def, ok
}

// Len возвращает число закэшированных определений
func (c *BlockIDCache) Len() int {
	return len(c.defs)
}
