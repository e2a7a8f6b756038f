package app

import (
	"fmt"
	"io"
	"strings"

	"goldpredict/apperr"
	"goldpredict/market"
)

// View is everything the page shows for one request.
type View struct {
	Title      string
	Subheading string
	Preview    market.Table
	Input      PriceInput
	Result     string
	Error      string
	ErrorKind  apperr.Kind
	Halted     bool
}

// Renderer draws a View. The http package supplies the HTML one.
type Renderer interface {
	Render(w io.Writer, v View) error
}

// Render hands v to r.
func Render(r Renderer, w io.Writer, v View) error {
	return r.Render(w, v)
}

// View builds the page for the latest action. A nil err and an empty
// prediction mean no action yet. A result or error replaces the previous one.
func (a *Application) View(input PriceInput, prediction *Prediction, err error) View {
	v := View{
		Title:      a.title,
		Subheading: subheading(a.dataset.Required(), a.previewRows),
		Preview:    a.preview,
		Input:      input,
	}
	switch {
	case err != nil:
		v.Error = apperr.Message(err)
		v.ErrorKind = apperr.KindOf(err)
	case prediction != nil:
		v.Result = prediction.Display
	}
	return v
}

// HaltedView shows only the startup error.
func HaltedView(title string, err error) View {
	if title == "" {
		title = "Gold Price Prediction"
	}
	return View{
		Title:     title,
		Error:     apperr.Message(err),
		ErrorKind: apperr.KindOf(err),
		Halted:    true,
	}
}

// The page always says "Last", although the rows are the first ones in the
// file.
func subheading(columns []string, rows int) string {
	return fmt.Sprintf("Last %d %s Prices", rows, strings.Join(columns, ", "))
}
