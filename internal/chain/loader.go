package chain

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"
)

// Load reads a chain file (plain or gzipped, "-" for stdin) and indexes it.
func Load(path string) (*File, error) {
	return LoadWithLogger(path, zap.NewNop())
}

// LoadWithLogger is Load with progress logged to logger.
func LoadWithLogger(path string, logger *zap.Logger) (*File, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open chain file: %w", err)
		}
		defer f.Close()
		r = f
	}

	text, err := readText(r)
	if err != nil {
		return nil, fmt.Errorf("read chain file %s: %w", path, err)
	}

	chains, err := Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse chain file %s: %w", path, err)
	}

	cf := NewFile(chains)
	logger.Debug("loaded chain file",
		zap.String("path", path),
		zap.Int("chains", cf.ChainCount()),
		zap.Int("chromosomes", len(cf.Chromosomes())))
	return cf, nil
}

// readText materializes r, decompressing it if it starts with the gzip magic number.
func readText(r io.Reader) (string, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err != nil && err != io.EOF {
		return "", err
	}

	var src io.Reader = br
	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return "", fmt.Errorf("create gzip reader: %w", err)
		}
		defer gz.Close()
		src = gz
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
