package storage

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"

	"github.com/annel0/simpleminer/internal/world/block"
)

// chunkFormatVersion - версия бинарного формата чанка
const chunkFormatVersion byte = 1

// Заголовок: версия (1 байт) + xxhash64 несжатых блоков (8 байт)
const headerSize = 1 + 8

// ErrCorruptChunk - повреждённые или несовместимые данные чанка
var ErrCorruptChunk = errors.New("corrupt chunk data")

// chunkCodec упаковывает блоки чанка: little-endian uint16 + zstd
type chunkCodec struct {
	compressor   *zstd.Encoder
	decompressor *zstd.Decoder
}

func newChunkCodec() (*chunkCodec, error) {
	compressor, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decompressor, err := zstd.NewReader(nil)
	if err != nil {
		compressor.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &chunkCodec{compressor: compressor, decompressor: decompressor}, nil
}

// Encode сериализует блоки в сжатый бинарный вид
func (c *chunkCodec) Encode(blocks []block.BlockID) []byte {
	raw := make([]byte, len(blocks)*2)
	for i, id := range blocks {
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(id))
	}

	out := make([]byte, headerSize, headerSize+len(raw)/8)
	out[0] = chunkFormatVersion
	binary.LittleEndian.PutUint64(out[1:], xxhash.Sum64(raw))
	return c.compressor.EncodeAll(raw, out)
}

// Decode восстанавливает блоки, проверяя версию и контрольную сумму
func (c *chunkCodec) Decode(data []byte, expected int) ([]block.BlockID, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrCorruptChunk, len(data))
	}
	if data[0] != chunkFormatVersion {
		return nil, fmt.Errorf("%w: unknown version %d", ErrCorruptChunk, data[0])
	}

	raw, err := c.decompressor.DecodeAll(data[headerSize:], make([]byte, 0, expected*2))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptChunk, err)
	}
	if len(raw) != expected*2 {
		return nil, fmt.Errorf("%w: expected %d blocks, got %d bytes", ErrCorruptChunk, expected, len(raw))
	}
	if xxhash.Sum64(raw) != binary.LittleEndian.Uint64(data[1:]) {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorruptChunk)
	}

	blocks := make([]block.BlockID, expected)
	for i := range blocks {
		blocks[i] = block.BlockID(binary.LittleEndian.Uint16(raw[i*2:]))
	}
	return blocks, nil
}

func (c *chunkCodec) Close() {
	c.compressor.Close()
	c.decompressor.Close()
}
