// Package source models the vendor menu export and its image export.
//
// Decoding is lenient about optional data: missing or oddly typed optional
// fields decode to their zero value, and lists that are not arrays decode as
// empty. Documents that are not exactly one valid JSON value are rejected.
package source

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrInvalidJSON is returned when an export cannot be decoded.
var ErrInvalidJSON = errors.New("invalid json")

// ErrEmptyDocument is returned when an export contains no JSON value.
var ErrEmptyDocument = errors.New("empty document")

// Picture types.
const PictureMiniature = "MINIATURE"

// Suggestion types.
const SuggestionAdditional = "ADDITIONAL"

// Document is the product export.
type Document struct {
	Reference Reference `json:"reference"`
}

// Reference holds the raw entities of each kind, in export order.
type Reference struct {
	Products      []Product       `json:"product"`
	Options       []Option        `json:"product_option"`
	OptionChoices []OptionChoice  `json:"product_option_choice"`
	Choices       []ProductChoice `json:"product_choice"`
	Suggestions   []Suggestion    `json:"product_suggestion"`
	Categories    []Category      `json:"category"`
	MealSequences []MealSequence  `json:"meal_sequence"`
}

// Ref points at another entity by id.
type Ref struct {
	ReferenceID ID `json:"reference_id"`
}

// Picture references an entry of the image export.
type Picture struct {
	Type        Scalar `json:"type"`
	ReferenceID ID     `json:"reference_id"`
}

// Entity holds the fields shared by every entity kind.
type Entity struct {
	ID          ID            `json:"id"`
	Name        *Text         `json:"name"`
	Description *Text         `json:"description"`
	Pictures    List[Picture] `json:"pictures"`
	Price       Price         `json:"price"`
	Allergens   List[Scalar]  `json:"allergens"`
}

// Miniature returns the reference of the first MINIATURE picture.
func (e Entity) Miniature() ID {
	for _, pic := range e.Pictures {
		if pic.Type.String() == PictureMiniature {
			return pic.ReferenceID
		}
	}
	return ID{}
}

// AllergenList returns the allergen tags as text.
func (e Entity) AllergenList() []string {
	tags := make([]string, 0, len(e.Allergens))
	for _, a := range e.Allergens {
		tags = append(tags, a.String())
	}
	return tags
}

// Product is a sellable item.
type Product struct {
	Entity
	Options        List[Ref]      `json:"options"`
	ModifierGroups ModifierGroups `json:"modifier_groups"`
}

// ModifierGroups carries the quantity limits of a product's options.
type ModifierGroups struct {
	QuantityInfo struct {
		Quantity struct {
			MaxPermitted Scalar `json:"max_permitted"`
			MinPermitted Scalar `json:"min_permitted"`
		} `json:"quantity"`
	} `json:"quantity_info"`
}

// UnmarshalJSON ignores values that are not objects.
func (m *ModifierGroups) UnmarshalJSON(data []byte) error {
	*m = ModifierGroups{}
	if !isObject(data) {
		return nil
	}
	type plain ModifierGroups
	return json.Unmarshal(data, (*plain)(m))
}

// Option is a group of choices attached to a product.
type Option struct {
	Entity
	Choices     List[Ref] `json:"choices"`
	MaxAllowed  Scalar    `json:"max_allowed"`
	MinRequired Scalar    `json:"min_required"`
}

// OptionChoice is a single selectable choice of an option.
type OptionChoice struct {
	Entity
}

// ProductChoice carries catalogue data (allergens) for an option choice
// sharing its id.
type ProductChoice struct {
	Entity
}

// Suggestion is an upsell list.
type Suggestion struct {
	Entity
	Type     Scalar    `json:"type"`
	Products List[Ref] `json:"products"`
}

// Category groups products for display.
type Category struct {
	Entity
	Products List[Ref] `json:"products"`
}

// MealSequence is a multi-step meal deal.
type MealSequence struct {
	Entity
	Items List[MealStep] `json:"items"`
}

// MealStep is one selection step of a meal sequence.
type MealStep struct {
	Choices           List[Ref]      `json:"choices"`
	ProductSuggestion StepSuggestion `json:"product_suggestion"`
}

// StepSuggestion lists the products suggested alongside a meal step.
type StepSuggestion struct {
	Products List[Ref] `json:"products"`
}

// UnmarshalJSON ignores values that are not objects.
func (s *StepSuggestion) UnmarshalJSON(data []byte) error {
	*s = StepSuggestion{}
	if !isObject(data) {
		return nil
	}
	type plain StepSuggestion
	return json.Unmarshal(data, (*plain)(s))
}

// References returns the ids a step offers, choices first, skipping absent
// ids.
func (s MealStep) References() []ID {
	ids := RefIDs(s.Choices)
	return append(ids, RefIDs(s.ProductSuggestion.Products)...)
}

// RefIDs returns the present reference ids of refs, in order.
func RefIDs(refs []Ref) []ID {
	ids := make([]ID, 0, len(refs))
	for _, r := range refs {
		if r.ReferenceID.Present() {
			ids = append(ids, r.ReferenceID)
		}
	}
	return ids
}

// Parse decodes a product export. A leading UTF-8 BOM is skipped.
func Parse(r io.Reader) (*Document, error) {
	var doc Document
	if err := decode(r, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// decode reads exactly one JSON value from r into v. Anything but
// whitespace after that value is invalid.
func decode(r io.Reader, v any) error {
	dec := json.NewDecoder(SkipBOM(r))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyDocument
		}
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	var extra json.RawMessage
	switch err := dec.Decode(&extra); {
	case errors.Is(err, io.EOF):
		return nil
	case err != nil:
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	default:
		return fmt.Errorf("%w: extra data after the document", ErrInvalidJSON)
	}
}
