// Package itembank loads, validates and persists calibrated item parameters.
package itembank

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/thetacat/internal/irt"
)

// ErrItemNotFound is returned when an item ID is not in the bank.
var ErrItemNotFound = errors.New("item not found")

var validate = validator.New()

// Item is a calibrated item with a stable identifier.
type Item struct {
	ID      string  `json:"id" yaml:"id" validate:"required"`
	A       float64 `json:"a" yaml:"a"`
	B       float64 `json:"b" yaml:"b"`
	C       float64 `json:"c" yaml:"c" validate:"gte=0,lte=1"`
	Content string  `json:"content,omitempty" yaml:"content,omitempty"`
}

// Params returns the model parameters of the item.
func (it Item) Params() irt.Item {
	return irt.Item{A: it.A, B: it.B, C: it.C}
}

type bankFile struct {
	Items []Item `json:"items" yaml:"items" validate:"dive"`
}

// LoadFile reads an item bank file. Files ending in .json are decoded as
// JSON, everything else as YAML. Every item is validated and IDs must be
// unique within the file.
func LoadFile(path string) ([]Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read item file: %w", err)
	}

	var f bankFile
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &f)
	} else {
		err = yaml.Unmarshal(data, &f)
	}
	if err != nil {
		return nil, fmt.Errorf("parse item file %s: %w", path, err)
	}

	if err := Validate(f.Items); err != nil {
		return nil, fmt.Errorf("item file %s: %w", path, err)
	}
	return f.Items, nil
}

// Validate checks field constraints and ID uniqueness.
func Validate(items []Item) error {
	seen := make(map[string]int, len(items))
	for i, it := range items {
		if err := validate.Struct(it); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) && len(verrs) > 0 {
				fe := verrs[0]
				return fmt.Errorf("item %d (%q): field %s failed %q", i, it.ID, fe.Field(), fe.Tag())
			}
			return fmt.Errorf("item %d: %w", i, err)
		}
		if j, dup := seen[it.ID]; dup {
			return fmt.Errorf("duplicate item id %q at positions %d and %d", it.ID, j, i)
		}
		seen[it.ID] = i
	}
	return nil
}
