package xsstore

import (
	"fmt"
	"slices"

	"github.com/tidwall/gjson"

	"transportcore/domain/core"
)

// DecodeJSON reads a group tree from JSON. Objects are groups, numbers are
// attributes and (nested) arrays of numbers are datasets whose shape follows
// the nesting. An object holding exactly "shape" and "data" arrays is a flat
// dataset with an explicit shape:
//
//	{"294K": {"kT": 0.0253, "absorption": [0.1, 0.2],
//	          "scatter_data": {"scatter_matrix": [[[0.3], [0.1]], [[0], [0.5]]]}}}
func DecodeJSON(data []byte) (*MemoryGroup, error) {
	if !gjson.ValidBytes(data) {
		return nil, core.NewConfigurationError("invalid JSON cross-section document")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, core.NewConfigurationError("cross-section document must be an object")
	}
	grp := NewMemoryGroup("/")
	if err := decodeGroup(grp, root); err != nil {
		return nil, err
	}
	return grp, nil
}

func decodeGroup(grp *MemoryGroup, obj gjson.Result) error {
	var err error
	obj.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		switch {
		case isShaped(value):
			err = putShaped(grp, name, value)
		case value.IsObject():
			err = decodeGroup(grp.Child(name), value)
		case value.IsArray():
			var values []float64
			var shape []int
			values, shape, err = flatten(value)
			if err == nil {
				err = grp.Put(name, values, shape...)
			}
			if err != nil {
				err = fmt.Errorf("%s/%s: %w", grp.Path(), name, err)
			}
		case value.Type == gjson.Number:
			grp.SetAttr(name, value.Float())
		default:
			err = core.NewConfigurationError("%s/%s: unsupported value %s", grp.Path(), name, value.Raw)
		}
		return err == nil
	})
	return err
}

func isShaped(v gjson.Result) bool {
	if !v.IsObject() || len(v.Map()) != 2 {
		return false
	}
	return v.Get("shape").IsArray() && v.Get("data").IsArray()
}

func putShaped(grp *MemoryGroup, name string, v gjson.Result) error {
	values, _, err := flatten(v.Get("data"))
	if err != nil {
		return fmt.Errorf("%s/%s: %w", grp.Path(), name, err)
	}
	var shape []int
	for _, s := range v.Get("shape").Array() {
		shape = append(shape, int(s.Int()))
	}
	if err := grp.Put(name, values, shape...); err != nil {
		return fmt.Errorf("%s/%s: %w", grp.Path(), name, err)
	}
	return nil
}

// flatten turns a rectangular nested array into row-major values and shape
func flatten(arr gjson.Result) ([]float64, []int, error) {
	items := arr.Array()
	if len(items) == 0 {
		return []float64{}, []int{0}, nil
	}
	if !items[0].IsArray() {
		values := make([]float64, len(items))
		for i, it := range items {
			if it.Type != gjson.Number {
				return nil, nil, core.NewConfigurationError("non-numeric element %s", it.Raw)
			}
			values[i] = it.Float()
		}
		return values, []int{len(items)}, nil
	}

	var values []float64
	var inner []int
	for i, it := range items {
		if !it.IsArray() {
			return nil, nil, core.NewConfigurationError("ragged array at element %d", i)
		}
		v, s, err := flatten(it)
		if err != nil {
			return nil, nil, err
		}
		if i == 0 {
			inner = s
		} else if !slices.Equal(inner, s) {
			return nil, nil, fmt.Errorf("%w: ragged array at element %d", core.ErrDimensionMismatch, i)
		}
		values = append(values, v...)
	}
	return values, append([]int{len(items)}, inner...), nil
}
