package classifier

import (
	"encoding/json"
	"fmt"
	"os"
)

// LabelEncoder maps class indices back to attack-type strings.
type LabelEncoder struct {
	classes []string
}

// LoadLabels reads the encoder from JSON, either {"classes": [...]} or a
// bare array of strings.
func LoadLabels(path string) (*LabelEncoder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("labels: %w", err)
	}
	var obj struct {
		Classes []string `json:"classes"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		if err := json.Unmarshal(data, &obj.Classes); err != nil {
			return nil, fmt.Errorf("labels: parse %s: %w", path, err)
		}
	}
	return NewLabelEncoder(obj.Classes)
}

// NewLabelEncoder builds an encoder over classes in index order.
func NewLabelEncoder(classes []string) (*LabelEncoder, error) {
	if len(classes) == 0 {
		return nil, fmt.Errorf("labels: no classes")
	}
	return &LabelEncoder{classes: append([]string(nil), classes...)}, nil
}

// Decode returns the label for class index i.
func (e *LabelEncoder) Decode(i int) (string, error) {
	if i < 0 || i >= len(e.classes) {
		return "", fmt.Errorf("y contains previously unseen labels: [%d]", i)
	}
	return e.classes[i], nil
}

// Classes returns a copy of the known labels.
func (e *LabelEncoder) Classes() []string {
	return append([]string(nil), e.classes...)
}

// Len returns the number of classes.
func (e *LabelEncoder) Len() int { return len(e.classes) }
