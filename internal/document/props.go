package document

import (
	"encoding/json"
	"fmt"
)

// Props is the variant payload of an element. Payloads carry no geometry.
type Props interface {
	Kind() ElementType
	clone() Props
}

type TextProps struct {
	Content    string  `json:"content"`
	FontSize   float64 `json:"fontSize"`
	FontWeight string  `json:"fontWeight,omitempty"`
	FontFamily string  `json:"fontFamily,omitempty"`
	Color      string  `json:"color"`
	Align      string  `json:"align,omitempty"`
}

type ImageProps struct {
	Src string `json:"src"`
	Alt string `json:"alt,omitempty"`
	Fit string `json:"fit,omitempty"`
}

type FormField struct {
	ID          string   `json:"id"`
	Type        string   `json:"type"`
	Label       string   `json:"label"`
	Placeholder string   `json:"placeholder,omitempty"`
	Required    bool     `json:"required"`
	Options     []string `json:"options,omitempty"`
}

type FormProps struct {
	Fields         []FormField `json:"fields"`
	SubmitLabel    string      `json:"submitLabel"`
	SuccessMessage string      `json:"successMessage,omitempty"`
}

type TimerProps struct {
	DurationSeconds int    `json:"durationSeconds"`
	Label           string `json:"label,omitempty"`
	ExpiredText     string `json:"expiredText,omitempty"`
}

type HTMLProps struct {
	HTML string `json:"html"`
}

type FormStep struct {
	Title  string      `json:"title"`
	Fields []FormField `json:"fields"`
}

type MultiStepFormProps struct {
	Steps       []FormStep `json:"steps"`
	SubmitLabel string     `json:"submitLabel"`
}

func (TextProps) Kind() ElementType          { return ElementText }
func (ImageProps) Kind() ElementType         { return ElementImage }
func (FormProps) Kind() ElementType          { return ElementForm }
func (TimerProps) Kind() ElementType         { return ElementTimer }
func (HTMLProps) Kind() ElementType          { return ElementHTML }
func (MultiStepFormProps) Kind() ElementType { return ElementMultiStepForm }

func (p TextProps) clone() Props  { return p }
func (p ImageProps) clone() Props { return p }
func (p TimerProps) clone() Props { return p }
func (p HTMLProps) clone() Props  { return p }

func (p FormProps) clone() Props {
	p.Fields = cloneFields(p.Fields)
	return p
}

func (p MultiStepFormProps) clone() Props {
	if p.Steps != nil {
		steps := make([]FormStep, len(p.Steps))
		for i, s := range p.Steps {
			steps[i] = FormStep{Title: s.Title, Fields: cloneFields(s.Fields)}
		}
		p.Steps = steps
	}
	return p
}

func cloneFields(fields []FormField) []FormField {
	if fields == nil {
		return nil
	}
	out := make([]FormField, len(fields))
	for i, f := range fields {
		out[i] = f
		if f.Options != nil {
			out[i].Options = append([]string(nil), f.Options...)
		}
	}
	return out
}

// rawProps holds undecoded props from the wire until the element type is known.
type rawProps json.RawMessage

func (rawProps) Kind() ElementType { return "" }

func (r rawProps) clone() Props { return append(rawProps(nil), r...) }

func (r rawProps) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}

func emptyProps(t ElementType) (Props, error) {
	switch t {
	case ElementText:
		return TextProps{}, nil
	case ElementImage:
		return ImageProps{}, nil
	case ElementForm:
		return FormProps{}, nil
	case ElementTimer:
		return TimerProps{}, nil
	case ElementHTML:
		return HTMLProps{}, nil
	case ElementMultiStepForm:
		return MultiStepFormProps{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownElementType, t)
	}
}

// DecodeProps decodes a JSON payload for the given variant.
func DecodeProps(t ElementType, data []byte) (Props, error) {
	return decodeProps(t, data)
}

func decodeProps(t ElementType, data []byte) (Props, error) {
	switch t {
	case ElementText:
		var p TextProps
		err := json.Unmarshal(data, &p)
		return p, err
	case ElementImage:
		var p ImageProps
		err := json.Unmarshal(data, &p)
		return p, err
	case ElementForm:
		var p FormProps
		err := json.Unmarshal(data, &p)
		return p, err
	case ElementTimer:
		var p TimerProps
		err := json.Unmarshal(data, &p)
		return p, err
	case ElementHTML:
		var p HTMLProps
		err := json.Unmarshal(data, &p)
		return p, err
	case ElementMultiStepForm:
		var p MultiStepFormProps
		err := json.Unmarshal(data, &p)
		return p, err
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownElementType, t)
	}
}
