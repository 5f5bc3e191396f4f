package render

import (
	"context"
	"fmt"
	"strings"

	"github.com/a-h/templ"
	"github.com/xy-planning-network/switchback/http/route"
)

// Templ renders views that are templ.Components.
// Inside a component, FromContext returns the Context of the request.
type Templ struct{}

// NewTempl constructs a Templ.
func NewTempl() Templ { return Templ{} }

// Render renders the component view is.
func (Templ) Render(ctx context.Context, view route.View, rc Context) (string, error) {
	c, ok := view.(templ.Component)
	if !ok {
		return "", fmt.Errorf("%w: %T is not a templ.Component", ErrUnsupportedView, view)
	}

	var sb strings.Builder
	if err := c.Render(NewContext(ctx, rc), &sb); err != nil {
		return "", err
	}

	return sb.String(), nil
}
