// Package worlddefaults loads the world's own flight settings: the payload a
// player gets when they choose "use world defaults" and the name shown for
// it in place of a personal slot.
package worlddefaults

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/openflight/hangar/internal/slots"
)

// DefaultSlotName is shown when the world defaults are in effect.
const DefaultSlotName = "World Defaults"

// Defaults is the world-provided default configuration.
type Defaults struct {
	SlotName string
	Payload  slots.Payload
}

// Builtin returns the settings used when no world file is present.
func Builtin() Defaults {
	return Defaults{
		SlotName: DefaultSlotName,
		Payload: slots.NewPayload(
			slots.Entry{Key: "flapStrengthBase", Value: slots.Number(285)},
			slots.Entry{Key: "flightGravityBase", Value: slots.Number(0.4)},
			slots.Entry{Key: "requireJump", Value: slots.Bool(true)},
			slots.Entry{Key: "allowLoco", Value: slots.Bool(false)},
			slots.Entry{Key: "useAvatarModifiers", Value: slots.Bool(true)},
			slots.Entry{Key: "canGlide", Value: slots.Bool(true)},
			slots.Entry{Key: "fallToGlide", Value: slots.Bool(true)},
			slots.Entry{Key: "horizontalStrengthMod", Value: slots.Number(1)},
			slots.Entry{Key: "glideControl", Value: slots.Number(2.3)},
			slots.Entry{Key: "airFriction", Value: slots.Number(0.036)},
			slots.Entry{Key: "useGravityCurve", Value: slots.Bool(false)},
			slots.Entry{Key: "bankingTurns", Value: slots.Bool(true)},
			slots.Entry{Key: "glideAngleOffset", Value: slots.Number(0)},
		),
	}
}

type file struct {
	DefaultSlot string    `yaml:"default_slot"`
	Settings    yaml.Node `yaml:"settings"`
}

// Load reads a world defaults YAML file. A missing file yields Builtin.
//
//	default_slot: World Defaults
//	settings:
//	  flapStrengthBase: 285
//	  requireJump: true
func Load(path string) (Defaults, error) {
	if strings.TrimSpace(path) == "" {
		return Builtin(), nil
	}
	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Builtin(), nil
		}
		return Defaults{}, fmt.Errorf("read world defaults: %w", err)
	}
	return Parse(raw)
}

// Parse decodes world defaults YAML. Settings keep their file order.
func Parse(raw []byte) (Defaults, error) {
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return Defaults{}, fmt.Errorf("parse world defaults: %w", err)
	}

	out := Defaults{SlotName: strings.TrimSpace(f.DefaultSlot)}
	if out.SlotName == "" {
		out.SlotName = DefaultSlotName
	}
	if !slots.ValidName(out.SlotName) {
		return Defaults{}, fmt.Errorf("parse world defaults: invalid default_slot %q", f.DefaultSlot)
	}

	if f.Settings.Kind == 0 {
		out.Payload = Builtin().Payload
		return out, nil
	}
	if f.Settings.Kind != yaml.MappingNode {
		return Defaults{}, fmt.Errorf("parse world defaults: settings must be a mapping (line %d)", f.Settings.Line)
	}
	for i := 0; i+1 < len(f.Settings.Content); i += 2 {
		keyNode, valueNode := f.Settings.Content[i], f.Settings.Content[i+1]
		key := strings.TrimSpace(keyNode.Value)
		if key == "" {
			return Defaults{}, fmt.Errorf("parse world defaults: empty key (line %d)", keyNode.Line)
		}
		if _, dup := out.Payload.Get(key); dup {
			return Defaults{}, fmt.Errorf("parse world defaults: duplicate key %q (line %d)", key, keyNode.Line)
		}
		v, err := scalarValue(valueNode)
		if err != nil {
			return Defaults{}, fmt.Errorf("parse world defaults: %s: %w", key, err)
		}
		out.Payload.Set(key, v)
	}
	return out, nil
}

func scalarValue(n *yaml.Node) (slots.Value, error) {
	if n.Kind != yaml.ScalarNode {
		return slots.Value{}, fmt.Errorf("line %d: value must be a scalar", n.Line)
	}
	switch n.ShortTag() {
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return slots.Value{}, err
		}
		return slots.Bool(b), nil
	case "!!int", "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return slots.Value{}, err
		}
		return slots.Number(f), nil
	case "!!str":
		return slots.Text(n.Value), nil
	default:
		return slots.Value{}, fmt.Errorf("line %d: unsupported value %s", n.Line, n.ShortTag())
	}
}
