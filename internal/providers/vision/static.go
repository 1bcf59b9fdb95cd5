package vision

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const staticProviderName = "static"

// StaticDescriber writes a generic sentence around the product name.
type StaticDescriber struct{}

func NewStaticDescriber() *StaticDescriber {
	return &StaticDescriber{}
}

func (s *StaticDescriber) Name() string { return staticProviderName }

func (s *StaticDescriber) Describe(_ context.Context, req DescribeRequest) (Description, error) {
	tag := language.English
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(req.Locale)), "id") {
		tag = language.Indonesian
	}
	product := strings.TrimSpace(req.ProductName)
	var text string
	switch {
	case tag == language.Indonesian && product == "":
		text = "Produk dengan kemasan rapi dan label yang jelas"
	case tag == language.Indonesian:
		text = fmt.Sprintf("%s dengan kemasan rapi dan label yang jelas", cases.Title(tag).String(product))
	case product == "":
		text = "A neatly packaged product with a clearly visible label"
	default:
		text = fmt.Sprintf("%s in neat packaging with a clearly visible label", cases.Title(tag).String(product))
	}
	return Description{Text: text, Provider: staticProviderName}, nil
}

var _ Describer = (*StaticDescriber)(nil)
