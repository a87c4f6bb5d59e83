package codec

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/klauspost/compress/zstd"

	"github.com/openflight/hangar/internal/slots"
)

// Export string prefixes. The trailing ";" terminates every export so a
// truncated copy is detected before decoding.
const (
	SlotPrefix     = "OFS1:"
	DatabasePrefix = "OFD1:"
	terminator     = ";"

	maxExportLength  = 1 << 20
	maxDecodedLength = 4 << 20
)

var (
	encoderOnce sync.Once
	encoder     *zstd.Encoder
	decoderOnce sync.Once
	decoder     *zstd.Decoder
)

func zstdEncoder() *zstd.Encoder {
	encoderOnce.Do(func() {
		// Only fails on invalid options.
		encoder, _ = zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedBestCompression),
			zstd.WithEncoderCRC(true),
		)
	})
	return encoder
}

func zstdDecoder() *zstd.Decoder {
	decoderOnce.Do(func() {
		decoder, _ = zstd.NewReader(nil,
			zstd.WithDecoderMaxMemory(maxDecodedLength),
			zstd.WithDecoderConcurrency(1),
		)
	})
	return decoder
}

type slotExport struct {
	Version int        `json:"version"`
	Slot    slots.Slot `json:"slot"`
}

// ExportSlot encodes one slot as a printable string.
func ExportSlot(s slots.Slot) (string, error) {
	if !slots.ValidName(s.Name) {
		return "", fmt.Errorf("export slot: invalid name %q", s.Name)
	}
	raw, err := json.Marshal(slotExport{Version: Version, Slot: s})
	if err != nil {
		return "", fmt.Errorf("export slot: %w", err)
	}
	return pack(SlotPrefix, raw), nil
}

// ImportSlot decodes a string made by ExportSlot.
func ImportSlot(s string) (slots.Slot, error) {
	raw, err := unpack(SlotPrefix, s)
	if err != nil {
		return slots.Slot{}, err
	}
	if err := validate(slotSchema, raw); err != nil {
		return slots.Slot{}, err
	}
	var exp slotExport
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&exp); err != nil {
		return slots.Slot{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if exp.Version > Version {
		return slots.Slot{}, fmt.Errorf("%w: version %d is newer than %d", ErrMalformed, exp.Version, Version)
	}
	if err := checkSlot(exp.Slot); err != nil {
		return slots.Slot{}, err
	}
	return exp.Slot, nil
}

// ExportDatabase encodes a whole database as a printable string.
func ExportDatabase(d Database) (string, error) {
	raw, err := Marshal(d)
	if err != nil {
		return "", err
	}
	return pack(DatabasePrefix, raw), nil
}

// ImportDatabase decodes a string made by ExportDatabase.
func ImportDatabase(s string) (Database, error) {
	raw, err := unpack(DatabasePrefix, s)
	if err != nil {
		return Database{}, err
	}
	return Unmarshal(raw)
}

// IsSlotExport reports whether s carries the slot export prefix, ignoring
// whitespace the same way the importers do.
func IsSlotExport(s string) bool {
	return strings.HasPrefix(stripSpace(s), SlotPrefix)
}

func pack(prefix string, raw []byte) string {
	compressed := zstdEncoder().EncodeAll(raw, nil)
	return prefix + base64.RawURLEncoding.EncodeToString(compressed) + terminator
}

func unpack(prefix, s string) ([]byte, error) {
	compact := stripSpace(s)
	if len(compact) > maxExportLength {
		return nil, fmt.Errorf("%w: export is %d bytes", ErrMalformed, len(compact))
	}
	if !strings.HasPrefix(compact, prefix) {
		return nil, fmt.Errorf("%w: missing %q prefix", ErrMalformed, prefix)
	}
	body := strings.TrimPrefix(compact, prefix)
	if !strings.HasSuffix(body, terminator) {
		return nil, fmt.Errorf("%w: export is truncated", ErrMalformed)
	}
	body = strings.TrimSuffix(body, terminator)
	compressed, err := base64.RawURLEncoding.DecodeString(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	raw, err := zstdDecoder().DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return raw, nil
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
