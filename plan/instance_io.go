package plan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
)

// instanceFile mirrors the on-disk JSON schema.
type instanceFile struct {
	Recipes         []recipeFile `json:"recipes"`
	AvailableInputs []Item       `json:"available_inputs"`
	DesiredOutputs  []Item       `json:"desired_outputs"`
}

type recipeFile struct {
	Name    string `json:"name"`
	Inputs  []Item `json:"inputs"`
	Outputs []Item `json:"outputs"`
}

// LoadInstance reads and validates an instance file.
func LoadInstance(path string) (*Instance, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading instance: %w", err)
	}
	inst, err := ParseInstance(data)
	if err != nil {
		return nil, fmt.Errorf("parsing instance %s: %w", path, err)
	}
	return inst, nil
}

// ParseInstance validates data against the instance schema and builds an Instance.
// Every structural problem is reported as ErrMalformedInstance with the JSON path
// of the offending value.
func ParseInstance(data []byte) (*Instance, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformedInstance)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: top-level value must be an object", ErrMalformedInstance)
	}

	recipeArr, err := requireArrayAt(root, "recipes", "recipes")
	if err != nil {
		return nil, err
	}
	recipes := make([]*Recipe, 0, len(recipeArr))
	for i, rv := range recipeArr {
		r, err := parseRecipe(rv, fmt.Sprintf("recipes.%d", i))
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, r)
	}

	available, err := parseItemList(root, "available_inputs", "available_inputs")
	if err != nil {
		return nil, err
	}
	desired, err := parseItemList(root, "desired_outputs", "desired_outputs")
	if err != nil {
		return nil, err
	}
	return NewInstance(recipes, available, desired), nil
}

func parseRecipe(rv gjson.Result, path string) (*Recipe, error) {
	if !rv.IsObject() {
		return nil, fmt.Errorf("%w: %s must be an object", ErrMalformedInstance, path)
	}
	name := rv.Get("name")
	if !name.Exists() {
		return nil, fmt.Errorf("%w: %s.name is required", ErrMalformedInstance, path)
	}
	if name.Type != gjson.String {
		return nil, fmt.Errorf("%w: %s.name must be a string, got %s", ErrMalformedInstance, path, name.Type)
	}
	inputs, err := parseItemList(rv, "inputs", path+".inputs")
	if err != nil {
		return nil, err
	}
	outputs, err := parseItemList(rv, "outputs", path+".outputs")
	if err != nil {
		return nil, err
	}
	return NewRecipe(name.String(), inputs, outputs), nil
}

// parseItemList reads the item array at key under parent. path is the full JSON
// path of that array, used only for error messages.
func parseItemList(parent gjson.Result, key, path string) ([]Item, error) {
	arr, err := requireArrayAt(parent, key, path)
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(arr))
	for i, iv := range arr {
		it, err := parseItem(iv, fmt.Sprintf("%s.%d", path, i))
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, nil
}

func parseItem(iv gjson.Result, path string) (Item, error) {
	if !iv.IsObject() {
		return Item{}, fmt.Errorf("%w: %s must be an object", ErrMalformedInstance, path)
	}
	name := iv.Get("name")
	if !name.Exists() {
		return Item{}, fmt.Errorf("%w: %s.name is required", ErrMalformedInstance, path)
	}
	if name.Type != gjson.String {
		return Item{}, fmt.Errorf("%w: %s.name must be a string, got %s", ErrMalformedInstance, path, name.Type)
	}
	rate := iv.Get("quantity_per_min")
	if !rate.Exists() {
		return Item{}, fmt.Errorf("%w: %s.quantity_per_min is required", ErrMalformedInstance, path)
	}
	if rate.Type != gjson.Number {
		return Item{}, fmt.Errorf("%w: %s.quantity_per_min must be a number, got %s", ErrMalformedInstance, path, rate.Type)
	}
	if math.IsInf(rate.Float(), 0) || math.IsNaN(rate.Float()) {
		return Item{}, fmt.Errorf("%w: %s.quantity_per_min must be finite, got %s", ErrMalformedInstance, path, rate.Raw)
	}
	if rate.Float() < 0 {
		return Item{}, fmt.Errorf("%w: %s.quantity_per_min must be non-negative, got %v", ErrMalformedInstance, path, rate.Float())
	}
	return NewItem(name.String(), rate.Float()), nil
}

func requireArrayAt(parent gjson.Result, key, path string) ([]gjson.Result, error) {
	v := parent.Get(key)
	if !v.Exists() {
		return nil, fmt.Errorf("%w: %s is required", ErrMalformedInstance, path)
	}
	if !v.IsArray() {
		return nil, fmt.Errorf("%w: %s must be an array", ErrMalformedInstance, path)
	}
	return v.Array(), nil
}

// EncodeInstance renders inst in the instance schema with 4-space indentation.
// Empty lists are written as [] rather than null.
func EncodeInstance(inst *Instance) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteInstance(&buf, inst); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteInstance encodes inst to w. See EncodeInstance.
func WriteInstance(w io.Writer, inst *Instance) error {
	file := instanceFile{
		Recipes:         make([]recipeFile, 0, len(inst.Recipes)),
		AvailableInputs: nonNil(inst.AvailableInputs),
		DesiredOutputs:  nonNil(inst.DesiredOutputs),
	}
	for _, r := range inst.Recipes {
		file.Recipes = append(file.Recipes, recipeFile{
			Name:    r.Name,
			Inputs:  nonNil(r.Inputs),
			Outputs: nonNil(r.Outputs),
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(file); err != nil {
		return fmt.Errorf("encoding instance: %w", err)
	}
	return nil
}

// SaveInstance writes inst to path, creating the parent directory if needed.
func SaveInstance(path string, inst *Instance) error {
	data, err := EncodeInstance(inst)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating instance directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing instance: %w", err)
	}
	return nil
}

func nonNil(items []Item) []Item {
	if items == nil {
		return []Item{}
	}
	return items
}
