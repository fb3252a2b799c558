package bitcoin

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/wire"
	"github.com/goodnatureofminers/blockinsight7000-daystats/internal/utxo/chain"
	"go.uber.org/zap"
)

const (
	// blockRecordPrefix is the magic and length preceding each block in a blk file.
	blockRecordPrefix = 8
	xorKeySize        = 8
)

var _ chain.BlockSource = (*ArchiveSource)(nil)

// ArchiveSource implements chain.BlockSource on top of a Bitcoin Core blocks directory.
// It is not safe for concurrent use.
type ArchiveSource struct {
	dir    string
	net    wire.BitcoinNet
	index  *BlockIndex
	xorKey []byte
	logger *zap.Logger

	fileNum uint64
	file    *os.File
}

// NewArchiveSource loads the block index under dir/index and prepares to read dir/blkNNNNN.dat files.
func NewArchiveSource(logger *zap.Logger, dir string, params *chaincfg.Params) (*ArchiveSource, error) {
	if params == nil {
		return nil, errors.New("chain params are required")
	}
	index, err := LoadBlockIndex(filepath.Join(dir, "index"))
	if err != nil {
		return nil, err
	}
	xorKey, err := readXORKey(filepath.Join(dir, "xor.dat"))
	if err != nil {
		return nil, err
	}

	logger = logger.Named("archive_source").With(zap.String("dir", dir))
	if tip, tipErr := index.TipHeight(); tipErr == nil {
		logger.Info("block index loaded", zap.Uint64("tip_height", tip), zap.Bool("obfuscated", xorKey != nil))
	}

	return &ArchiveSource{
		dir:    dir,
		net:    params.Net,
		index:  index,
		xorKey: xorKey,
		logger: logger,
	}, nil
}

// LatestHeight returns the height of the best indexed block.
func (s *ArchiveSource) LatestHeight(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	height, err := s.index.TipHeight()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", s.dir, err)
	}
	return height, nil
}

// FetchBlock reads and decodes the best-chain block at height.
func (s *ArchiveSource) FetchBlock(ctx context.Context, height uint64) (*chain.RawBlock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entry, ok := s.index.lookup(height)
	if !ok || !entry.hasData() {
		return nil, fmt.Errorf("block height %d: %w", height, chain.ErrBlockNotFound)
	}
	if entry.dataPos < blockRecordPrefix {
		return nil, fmt.Errorf("block height %d: data position %d: %w", height, entry.dataPos, chain.ErrMalformedBlock)
	}

	f, err := s.openBlockFile(entry.file)
	if err != nil {
		return nil, err
	}

	prefix := make([]byte, blockRecordPrefix)
	if err = s.readAt(f, prefix, entry.dataPos-blockRecordPrefix); err != nil {
		return nil, fmt.Errorf("block height %d: read record prefix: %w", height, err)
	}
	if magic := wire.BitcoinNet(binary.LittleEndian.Uint32(prefix[:4])); magic != s.net {
		return nil, fmt.Errorf("block height %d: network magic %s, want %s: %w", height, magic, s.net, chain.ErrMalformedBlock)
	}
	size := binary.LittleEndian.Uint32(prefix[4:])
	if size == 0 || size > wire.MaxBlockPayload {
		return nil, fmt.Errorf("block height %d: record length %d: %w", height, size, chain.ErrMalformedBlock)
	}

	raw := make([]byte, size)
	if err = s.readAt(f, raw, entry.dataPos); err != nil {
		return nil, fmt.Errorf("block height %d: read block: %w", height, err)
	}

	var block wire.MsgBlock
	if err = block.Deserialize(bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("block height %d: decode: %v: %w", height, err, chain.ErrMalformedBlock)
	}
	if hash := block.BlockHash(); hash != entry.hash {
		return nil, fmt.Errorf("block height %d: hash %s, index has %s: %w", height, hash, entry.hash, chain.ErrMalformedBlock)
	}

	return ConvertBlock(height, uint64(size), &block)
}

// Close releases the open blk file.
func (s *ArchiveSource) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

func (s *ArchiveSource) openBlockFile(num uint64) (*os.File, error) {
	if s.file != nil && s.fileNum == num {
		return s.file, nil
	}
	if err := s.Close(); err != nil {
		s.logger.Warn("close block file", zap.Uint64("file", s.fileNum), zap.Error(err))
	}

	path := filepath.Join(s.dir, fmt.Sprintf("blk%05d.dat", num))
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open block file: %w", err)
	}
	s.logger.Debug("block file opened", zap.String("path", path))
	s.file = f
	s.fileNum = num
	return f, nil
}

func (s *ArchiveSource) readAt(f *os.File, buf []byte, pos uint64) error {
	if pos > uint64(1<<62) {
		return fmt.Errorf("offset %d out of range", pos)
	}
	if _, err := f.ReadAt(buf, int64(pos)); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("truncated block file: %w", chain.ErrMalformedBlock)
		}
		return err
	}
	if s.xorKey != nil {
		for i := range buf {
			buf[i] ^= s.xorKey[(pos+uint64(i))%xorKeySize]
		}
	}
	return nil
}

// readXORKey returns the blk file obfuscation key, or nil when the directory is not obfuscated.
func readXORKey(path string) ([]byte, error) {
	key, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read obfuscation key: %w", err)
	}
	if len(key) != xorKeySize {
		return nil, fmt.Errorf("obfuscation key %s has %d bytes, want %d", path, len(key), xorKeySize)
	}
	if bytes.Equal(key, make([]byte, xorKeySize)) {
		return nil, nil
	}
	return key, nil
}
