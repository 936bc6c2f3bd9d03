package fees

import (
	"errors"
	"fmt"
	"strings"
)

// Namespace of the generic transaction fees.
const Namespace = "fees"

var (
	// Base is the flat fee charged for every extrinsic.
	Base = Category{Namespace: Namespace, Variant: "base"}
	// Bytes is the fee charged per byte of the serialized extrinsic.
	Bytes = Category{Namespace: Namespace, Variant: "bytes"}
)

/*
Category identifies a fee class. Categories are grouped into namespaces,
the "fees" namespace holds the generic fees (Base and Bytes) charged for
every extrinsic, modules define their own namespaces for call specific fees.
*/
type Category struct {
	Namespace string
	Variant   string
}

func NewCategory(namespace, variant string) Category {
	return Category{Namespace: namespace, Variant: variant}
}

/*
ParseCategory parses category from it's key form "namespace/variant".
*/
func ParseCategory(s string) (Category, error) {
	ns, variant, found := strings.Cut(s, "/")
	if !found {
		return Category{}, fmt.Errorf("invalid fee category %q: expected namespace/variant", s)
	}
	c := Category{Namespace: ns, Variant: variant}
	if err := c.IsValid(); err != nil {
		return Category{}, err
	}
	return c, nil
}

func (c Category) IsValid() error {
	var errs []error
	if c.Namespace == "" {
		errs = append(errs, errors.New("namespace is empty"))
	}
	if strings.Contains(c.Namespace, "/") {
		errs = append(errs, fmt.Errorf("namespace %q contains '/'", c.Namespace))
	}
	if c.Variant == "" {
		errs = append(errs, errors.New("variant is empty"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid fee category %q: %w", c.Key(), err)
	}
	return nil
}

// Key returns the registry key of the category.
func (c Category) Key() string {
	return c.Namespace + "/" + c.Variant
}

func (c Category) String() string {
	return c.Key()
}

func (c Category) MarshalText() ([]byte, error) {
	if err := c.IsValid(); err != nil {
		return nil, err
	}
	return []byte(c.Key()), nil
}

func (c *Category) UnmarshalText(b []byte) error {
	v, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}
