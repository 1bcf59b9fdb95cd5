package handlers

import (
	"net/http"

	"reelgen/internal/domain"
	"reelgen/internal/middleware"
	"reelgen/internal/providers/vision"
)

type describeRequest struct {
	Image       string `json:"image" validate:"required,startswith=data:image/"`
	ProductName string `json:"product_name" validate:"max=200"`
	Locale      string `json:"locale" validate:"omitempty,oneof=id en"`
}

// DescribeProduct turns a product photo into a prompt-ready description.
// Describer failures degrade to a static description.
func (a *App) DescribeProduct(w http.ResponseWriter, r *http.Request) {
	var req describeRequest
	if !a.decode(w, r, &req) {
		return
	}
	img, err := domain.ParseDataURL(req.Image)
	if err != nil {
		a.error(w, http.StatusBadRequest, "invalid_request", "image: "+err.Error())
		return
	}
	locale := req.Locale
	if locale == "" {
		locale = middleware.LocaleFromContext(r.Context())
	}
	creds, err := a.credentials(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var describer vision.Describer = vision.NewChain(a.Logger)
	if a.Providers != nil {
		describer = a.Providers.Describer(r.Context(), creds)
	}
	desc, err := describer.Describe(r.Context(), vision.DescribeRequest{
		Image:       img,
		ProductName: req.ProductName,
		Locale:      locale,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, desc)
}
