package core

import "strconv"

// ParamType enumerates supported parameter value kinds.
type ParamType string

const (
	ParamTypeInt   ParamType = "int"
	ParamTypeFloat ParamType = "float"
	ParamTypeBool  ParamType = "bool"
)

// Parameter is one read-only line of diagnostic output.
type Parameter struct {
	Key   string
	Label string
	Type  ParamType
	Value string
}

// ParameterGroup clusters related parameters for presentation purposes.
type ParameterGroup struct {
	Name   string
	Params []Parameter
}

// ParameterSnapshot captures the values shown by the diagnostic overlay.
type ParameterSnapshot struct {
	Groups []ParameterGroup
}

// ParameterControl describes a value editable from the settings panel. Min
// and Max bound the value only when the matching Has flag is set.
type ParameterControl struct {
	Key   string
	Label string
	Type  ParamType

	Step float64

	Min    float64
	Max    float64
	HasMin bool
	HasMax bool
}

// ClampInt bounds v to the control's range.
func (c ParameterControl) ClampInt(v int) int {
	if c.HasMin && v < int(c.Min) {
		v = int(c.Min)
	}
	if c.HasMax && v > int(c.Max) {
		v = int(c.Max)
	}
	return v
}

// ClampFloat bounds v to the control's range.
func (c ParameterControl) ClampFloat(v float64) float64 {
	if c.HasMin && v < c.Min {
		v = c.Min
	}
	if c.HasMax && v > c.Max {
		v = c.Max
	}
	return v
}

// IntParam formats an integer diagnostic value.
func IntParam(key, label string, v int) Parameter {
	return Parameter{Key: key, Label: label, Type: ParamTypeInt, Value: strconv.Itoa(v)}
}

// FloatParam formats a floating point diagnostic value with two decimals.
func FloatParam(key, label string, v float64) Parameter {
	return Parameter{Key: key, Label: label, Type: ParamTypeFloat, Value: strconv.FormatFloat(v, 'f', 2, 64)}
}

// BoolParam formats a boolean diagnostic value.
func BoolParam(key, label string, v bool) Parameter {
	return Parameter{Key: key, Label: label, Type: ParamTypeBool, Value: strconv.FormatBool(v)}
}
