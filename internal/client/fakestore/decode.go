package fakestore

import (
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/fakestore-storefront/internal/domain/catalog"
)

// skipNull consumes a JSON null and reports whether it did. Null fields are
// treated the same as absent ones.
func skipNull(d *jx.Decoder) (bool, error) {
	if d.Next() != jx.Null {
		return false, nil
	}
	return true, d.Null()
}

func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	num, err := d.Num()
	if err != nil {
		return decimal.Decimal{}, err
	}
	// The API has been seen returning prices both as numbers and as quoted
	// numeric strings.
	s := strings.Trim(string(num), `"`)
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, errors.Wrapf(err, "parse decimal %q", s)
	}
	return v, nil
}

func decodeStringArr(d *jx.Decoder) ([]string, error) {
	var out []string
	err := d.Arr(func(d *jx.Decoder) error {
		if null, err := skipNull(d); err != nil || null {
			return err
		}
		s, err := d.Str()
		if err != nil {
			return err
		}
		out = append(out, s)
		return nil
	})
	return out, err
}

func decodeProductObj(d *jx.Decoder) (catalog.Product, error) {
	var p catalog.Product
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		if null, err := skipNull(d); err != nil || null {
			return err
		}
		var err error
		switch string(key) {
		case "id":
			p.ID, err = d.Int64()
		case "title":
			p.Title, err = d.Str()
		case "price":
			p.Price, err = decodeDecimal(d)
		case "description":
			p.Description, err = d.Str()
		case "images":
			p.Images, err = decodeStringArr(d)
		case "category":
			var c catalog.Category
			c, err = decodeCategoryObj(d)
			if err == nil {
				p.Category = &c
			}
		default:
			err = d.Skip()
		}
		return err
	})
	return p, err
}

func decodeCategoryObj(d *jx.Decoder) (catalog.Category, error) {
	var c catalog.Category
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		if null, err := skipNull(d); err != nil || null {
			return err
		}
		var err error
		switch string(key) {
		case "id":
			c.ID, err = d.Int64()
		case "name":
			c.Name, err = d.Str()
		case "image":
			c.Image, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	})
	return c, err
}

func decodeProduct(data []byte) (catalog.Product, error) {
	return decodeProductObj(jx.DecodeBytes(data))
}

func decodeProducts(data []byte) ([]catalog.Product, error) {
	d := jx.DecodeBytes(data)
	var out []catalog.Product
	err := d.Arr(func(d *jx.Decoder) error {
		p, err := decodeProductObj(d)
		if err != nil {
			return err
		}
		out = append(out, p)
		return nil
	})
	return out, err
}

func decodeCategories(data []byte) ([]catalog.Category, error) {
	d := jx.DecodeBytes(data)
	var out []catalog.Category
	err := d.Arr(func(d *jx.Decoder) error {
		c, err := decodeCategoryObj(d)
		if err != nil {
			return err
		}
		out = append(out, c)
		return nil
	})
	return out, err
}
