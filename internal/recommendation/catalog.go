// Package recommendation attaches up-sell and cross-sell suggestions to
// segmented transactions.
package recommendation

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"

	"retailpulse/internal/errors"
)

var defaultUpSell = map[string]string{
	"Biography":  "Collector's Edition Biography",
	"Camera":     "Mirrorless Camera",
	"Candle":     "Scented Candle Set",
	"Cookbook":   "Premium Cookbook with Video Tutorials",
	"Curtains":   "Designer Curtains",
	"Dress":      "Evening Gown",
	"Foundation": "Long-Lasting Foundation",
	"Headphones": "Noise-Canceling Headphones",
	"Jacket":     "Leather Jacket",
	"Jeans":      "Designer Jeans",
	"Lamp":       "Smart Lamp",
	"Laptop":     "Premium Business Laptop",
	"Lipstick":   "Luxury Lipstick Set",
	"Mascara":    "Waterproof Mascara",
	"Misc":       "Personalized Miscellaneous Items",
	"Novel":      "Special Edition or Signed Copy",
	"Perfume":    "Limited Edition Perfume",
	"Smartphone": "Premium Smartphone Model",
	"T-Shirt":    "Branded T-Shirt",
	"Textbook":   "Annotated Edition",
	"Vase":       "Handcrafted Vase",
}

var defaultCrossSell = map[string]string{
	"Biography":  "Bookmark",
	"Camera":     "Camera Bag",
	"Candle":     "Candle Holder",
	"Cookbook":   "Recipe Notebook",
	"Curtains":   "Matching Cushions",
	"Dress":      "Jewelry",
	"Foundation": "Makeup Brush",
	"Headphones": "Headphone Case",
	"Jacket":     "Scarf",
	"Jeans":      "Belt",
	"Lamp":       "Light Bulb",
	"Laptop":     "Laptop Bag",
	"Lipstick":   "Lip Balm",
	"Mascara":    "Eyeliner",
	"Misc":       "Personalized Accessories",
	"Novel":      "Bookmark",
	"Perfume":    "Body Lotion",
	"Smartphone": "Screen Protector",
	"T-Shirt":    "Sneakers",
	"Textbook":   "Notebook",
	"Vase":       "Flowers",
}

// Catalog maps product names to suggestions. It is read-only once built.
type Catalog struct {
	upSell    map[string]string
	crossSell map[string]string
}

// catalogFile is the YAML layout of an override file. Entries replace or
// extend the built-in tables; an empty suggestion removes a product.
type catalogFile struct {
	UpSell    map[string]string `yaml:"up_sell"`
	CrossSell map[string]string `yaml:"cross_sell"`
}

// DefaultCatalog returns the built-in suggestion tables.
func DefaultCatalog() *Catalog {
	return NewCatalog(defaultUpSell, defaultCrossSell)
}

// NewCatalog copies the given tables into a catalog. Keys and values are
// trimmed.
func NewCatalog(upSell, crossSell map[string]string) *Catalog {
	return &Catalog{
		upSell:    cleanTable(upSell),
		crossSell: cleanTable(crossSell),
	}
}

// LoadCatalog reads an override file and merges it over the defaults. An
// empty path yields the defaults.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigError(fmt.Sprintf("failed to read recommendations file %s", path), err)
	}

	var file catalogFile
	if err := yaml.UnmarshalStrict(data, &file); err != nil {
		return nil, errors.NewConfigError(fmt.Sprintf("invalid recommendations file %s", path), err)
	}

	return NewCatalog(merge(defaultUpSell, file.UpSell), merge(defaultCrossSell, file.CrossSell)), nil
}

// UpSell returns the premium alternative for a product.
func (c *Catalog) UpSell(product string) (string, bool) {
	s, ok := c.upSell[product]
	return s, ok
}

// CrossSell returns the complementary product for a product.
func (c *Catalog) CrossSell(product string) (string, bool) {
	s, ok := c.crossSell[product]
	return s, ok
}

// Len returns the number of products with an up-sell and a cross-sell entry.
func (c *Catalog) Len() (upSell, crossSell int) {
	return len(c.upSell), len(c.crossSell)
}

func merge(base, overrides map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(overrides))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overrides {
		out[strings.TrimSpace(k)] = v
	}
	return out
}

func cleanTable(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		out[k] = v
	}
	return out
}
