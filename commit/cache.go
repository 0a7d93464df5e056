package commit

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fxamacker/cbor/v2"

	"github.com/PolyhedraZK/PlonkishIVC/logger"
)

// keyFileHeader precedes the point stream in a cached key file. It is
// cbor-encoded and length-prefixed so the backend's decoder can start
// at a known offset.
type keyFileHeader struct {
	Curve   string `cbor:"curve"`
	LogSize int    `cbor:"logSize"`
}

// LoadOrSetupUnchecked returns the key for (curve, logSize), loading it
// from dir if a cache entry exists and generating and persisting it
// otherwise.
//
// Loading is an unchecked-trust operation: only the file header is
// validated, the point data is reflected as-is. The caller asserts that
// the cache was produced by a compatible generation process.
func LoadOrSetupUnchecked(dir, curve string, logSize int) (Key, error) {
	backend, err := GetBackend(curve)
	if err != nil {
		return nil, err
	}
	log := logger.Logger().With().Str("curve", curve).Int("logSize", logSize).Logger()

	path := filepath.Join(dir, fmt.Sprintf("%s_%d.key", curve, logSize))
	if f, err := os.Open(path); err == nil {
		defer f.Close()
		key, err := readKeyFile(f, backend, curve, logSize)
		if err == nil {
			log.Debug().Str("path", path).Msg("commitment key loaded from cache")
			return key, nil
		}
		log.Warn().Err(err).Str("path", path).Msg("cached commitment key unusable, regenerating")
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("open key cache: %w", err)
	}

	log.Info().Msg("generating commitment key")
	key, err := backend.Setup(logSize)
	if err != nil {
		return nil, fmt.Errorf("setup commitment key: %w", err)
	}
	if err := writeKeyFile(path, key); err != nil {
		return nil, fmt.Errorf("persist commitment key: %w", err)
	}
	log.Debug().Str("path", path).Msg("commitment key persisted")
	return key, nil
}

func readKeyFile(r io.Reader, backend Backend, curve string, logSize int) (Key, error) {
	var hdrLen uint32
	if err := binary.Read(r, binary.BigEndian, &hdrLen); err != nil {
		return nil, fmt.Errorf("read header length: %w", err)
	}
	hdrBytes := make([]byte, hdrLen)
	if _, err := io.ReadFull(r, hdrBytes); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	var hdr keyFileHeader
	if err := cbor.Unmarshal(hdrBytes, &hdr); err != nil {
		return nil, fmt.Errorf("decode header: %w", err)
	}
	if hdr.Curve != curve || hdr.LogSize != logSize {
		return nil, fmt.Errorf("header mismatch: file holds (%s, %d), want (%s, %d)", hdr.Curve, hdr.LogSize, curve, logSize)
	}
	return backend.ReadKey(r, logSize)
}

func writeKeyFile(path string, key Key) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	hdrBytes, err := cbor.Marshal(keyFileHeader{Curve: key.CurveName(), LogSize: key.LogSize()})
	if err == nil {
		err = binary.Write(f, binary.BigEndian, uint32(len(hdrBytes)))
	}
	if err == nil {
		_, err = f.Write(hdrBytes)
	}
	if err == nil {
		_, err = key.WriteTo(f)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}
