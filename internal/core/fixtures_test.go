package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/menuconv/internal/schema"
	"github.com/JonMunkholm/menuconv/internal/source"
)

// menuJSON exercises every entity kind. Ids deliberately collide across
// kinds: product 10 and meal sequence 10, option 3 and option choice 3.
const menuJSON = `{"reference": {
  "product": [
    {"id": 5,
     "name": {"data": [{"lang": "fr_FR", "text": "Burger"}, {"lang": "en_GB", "text": "Burger EN"}, {"lang": "es_ES", "text": "Hamburguesa"}]},
     "description": {"data": [{"lang": "fr_FR", "text": "Bon"}]},
     "price": 1250,
     "allergens": ["gluten", "milk"],
     "pictures": [{"type": "LARGE", "reference_id": 8}, {"type": "MINIATURE", "reference_id": 9}],
     "options": [{"reference_id": 3}],
     "modifier_groups": {"quantity_info": {"quantity": {"max_permitted": 2, "min_permitted": 0}}}},
    {"id": 10,
     "name": {"data": [{"lang": "fr_FR", "text": "Menu produit"}]},
     "description": {"data": [{"lang": "fr_FR", "text": "Menu complet"}, {"lang": "en_GB", "text": "Full meal"}]},
     "allergens": ["egg"],
     "price": 0},
    {"id": 6, "name": {"data": [{"lang": "fr_FR", "text": "Frites"}]}, "price": 300}
  ],
  "product_option": [
    {"id": 3, "name": {"data": [{"lang": "fr_FR", "text": "Sauces"}]},
     "choices": [{"reference_id": 3}, {"reference_id": 4}],
     "max_allowed": 2, "min_required": 1}
  ],
  "product_option_choice": [
    {"id": 3, "name": {"data": [{"lang": "fr_FR", "text": "Ketchup"}]}},
    {"id": 4, "name": {"data": [{"lang": "fr_FR", "text": "Moutarde"}]}, "price": 50}
  ],
  "product_choice": [
    {"id": 4, "allergens": ["mustard"]}
  ],
  "product_suggestion": [
    {"id": 7, "type": "ADDITIONAL", "name": {"data": [{"lang": "fr_FR", "text": "Avec ca ?"}]}, "products": [{"reference_id": 6}]},
    {"id": 8, "type": "OTHER", "products": [{"reference_id": 5}]}
  ],
  "category": [
    {"id": 1, "name": {"data": [{"lang": "fr_FR", "text": "Burgers"}]}, "products": [{"reference_id": 5}, {"reference_id": 10}]},
    {"id": 2, "name": {"data": [{"lang": "fr_FR", "text": "Autres"}]}, "products": [{"reference_id": 5}, {"reference_id": 6}]}
  ],
  "meal_sequence": [
    {"id": 10,
     "name": {"data": [{"lang": "fr_FR", "text": "Menu Burger"}]},
     "price": 1000,
     "pictures": [{"type": "MINIATURE", "reference_id": 9}],
     "items": [
       {"choices": [{"reference_id": 5}]},
       {"choices": [{"reference_id": 6}], "product_suggestion": {"products": [{"reference_id": 5}]}}
     ]}
  ]
}}`

const imagesJSON = `{"pictures": [
  {"id": 9, "url": "https://cdn/upload/a/b/tabesto/x.png"},
  {"id": 9, "url": "https://cdn/other.png"}
]}`

// fallbackJSON references ids that cannot be resolved in the legal
// namespace: option 99 does not exist and option 3 lists product 5, which
// exists only as a product.
const fallbackJSON = `{"reference": {
  "product": [
    {"id": 5, "options": [{"reference_id": 3}, {"reference_id": 99}]}
  ],
  "product_option": [
    {"id": 3, "choices": [{"reference_id": 5}]}
  ]
}}`

func parseDoc(t *testing.T, doc string) *source.Document {
	t.Helper()
	d, err := source.Parse(strings.NewReader(doc))
	require.NoError(t, err)
	return d
}

func parseImages(t *testing.T, doc string) *source.ImageCatalog {
	t.Helper()
	c, err := source.ParseImages(strings.NewReader(doc))
	require.NoError(t, err)
	return c
}

// findRow returns the first row with the given PLU.
func findRow(t *testing.T, rows []schema.Row, plu string) schema.Row {
	t.Helper()
	for _, r := range rows {
		if r.PLU() == plu {
			return r
		}
	}
	t.Fatalf("no row with PLU %q", plu)
	return nil
}
