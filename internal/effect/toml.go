package effect

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/roach88/mao/internal/turn"
)

// tomlFile is the on-disk shape of an effect table.
//
//	[options]
//	fold_case = true
//
//	[cards."7"]
//	turn_change = "up_up_2"
//	say = [["seven"], ["thank you", "merci"]]
//
//	[cards."club:13"]
//	physical = "knock"
type tomlFile struct {
	Options tomlOptions         `toml:"options"`
	Cards   map[string]tomlCard `toml:"cards"`
}

type tomlOptions struct {
	FoldCase bool `toml:"fold_case"`
}

type tomlCard struct {
	TurnChange string     `toml:"turn_change"`
	Say        [][]string `toml:"say"`
	Physical   string     `toml:"physical"`
}

// LoadFile reads a TOML effect table from disk.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read effect table: %w", err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("effect table %s: %w", path, err)
	}
	return t, nil
}

// Parse decodes a TOML effect table.
func Parse(data []byte) (*Table, error) {
	var f tomlFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	t := NewTable()
	t.FoldCase = f.Options.FoldCase
	for keyStr, c := range f.Cards {
		key, err := ParseKey(keyStr)
		if err != nil {
			return nil, err
		}
		if c.TurnChange != "" {
			change, err := turn.ParseChange(c.TurnChange)
			if err != nil {
				return nil, fmt.Errorf("card %q: %w", keyStr, err)
			}
			t.Add(key, TurnChange{Change: change})
		}
		if len(c.Say) > 0 {
			say := make(Say, 0, len(c.Say))
			for _, alts := range c.Say {
				if len(alts) == 0 {
					return nil, fmt.Errorf("card %q: empty say requirement", keyStr)
				}
				say = append(say, Phrase(alts))
			}
			t.Add(key, say)
		}
		if c.Physical != "" {
			t.Add(key, Physical(c.Physical))
		}
	}
	return t, nil
}
