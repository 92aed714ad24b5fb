package view

import (
	"html/template"

	"github.com/yanizio/legacyfilm/internal/pricing"
)

// HomeData feeds home.html.
type HomeData struct {
	Packages        []pricing.Package
	PaymentsEnabled bool
}

// LeadData feeds free-questions.html.  Fields is pre-rendered by
// form.RenderFields.
type LeadData struct {
	Title       string
	Fields      template.HTML
	SubmitError string
	Success     bool
}
