// Package schema defines the flat import template: the closed set of row
// fields and the versioned column layouts used to render them.
package schema

// Field is the internal key of a row value. Column headers map onto fields
// through a Layout.
type Field string

const (
	LocationID     Field = "LocationID"
	LocationName   Field = "LocationName"
	PLU            Field = "PLU"
	Name           Field = "Name"
	NameEN         Field = "Name_en"
	NameES         Field = "Name_es"
	NameFR         Field = "Name_fr"
	Description    Field = "Description"
	DescriptionEN  Field = "Description_en"
	DescriptionES  Field = "Description_es"
	DescriptionFR  Field = "Description_fr"
	Price          Field = "Price"
	ProductType    Field = "Producttype"
	ProductImageID Field = "ProductImageID"
	ImageURL       Field = "Imageurl"
	Category       Field = "Category"
	DeliveryTax    Field = "DeliveryTax"
	TakeawayTax    Field = "TakeawayTax"
	EatInTax       Field = "EatInTax"
	Subproducts    Field = "Subproducts"
	Min            Field = "Min"
	Max            Field = "Max"
	ProductTags    Field = "ProductTags"
	IsCombo        Field = "isCombo"
	IsUpsell       Field = "isUpsell"
	Multiple       Field = "Multiple"
	IsInternal     Field = "Isinternal"
)

// Fields lists every field a row may carry.
var Fields = []Field{
	LocationID, LocationName, PLU,
	Name, NameEN, NameES, NameFR,
	Description, DescriptionEN, DescriptionES, DescriptionFR,
	Price, ProductType, ProductImageID, ImageURL, Category,
	DeliveryTax, TakeawayTax, EatInTax,
	Subproducts, Min, Max, ProductTags,
	IsCombo, IsUpsell, Multiple, IsInternal,
}

// Type is the Producttype of a row.
type Type string

const (
	TypeBundle        Type = "BUNDLE"
	TypeProduct       Type = "PRODUCT"
	TypeModifier      Type = "MODIFIER"
	TypeModifierGroup Type = "MODIFIER_GROUP"
)

// Valid reports whether t is one of the four row types.
func (t Type) Valid() bool {
	switch t {
	case TypeBundle, TypeProduct, TypeModifier, TypeModifierGroup:
		return true
	}
	return false
}

// Flag values for isCombo, isUpsell, Multiple and Isinternal.
const (
	True  = "TRUE"
	False = "FALSE"
)

// Row is one line of the import template. Missing fields render as "".
type Row map[Field]string

// Type returns the row's Producttype.
func (r Row) Type() Type {
	return Type(r[ProductType])
}

// PLU returns the row identifier.
func (r Row) PLU() string {
	return r[PLU]
}

// IsCombo reports whether the row is a meal deal.
func (r Row) IsCombo() bool {
	return r[IsCombo] == True
}

// IsUpsell reports whether the row is an upsell group.
func (r Row) IsUpsell() bool {
	return r[IsUpsell] == True
}

// Clone returns a copy of r.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
