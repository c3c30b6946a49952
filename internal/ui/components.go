package ui

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/url"

	"github.com/a-h/templ"
)

// Item represents a single stored item within a bucket for display.
type Item struct {
	Name         string
	LastModified string
}

// Layout renders a full HTML page with a title and body component.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "<!DOCTYPE html><html lang=\"en\">")
		if err != nil {
			return err
		}

		_, err = io.WriteString(w, "<head><meta charset=\"utf-8\">")
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, "<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "<title>%s</title>", html.EscapeString(title))
		if err != nil {
			return err
		}
		// Minimal CSS framework (Pico.css) via CDN.
		_, err = io.WriteString(w, "<link rel=\"stylesheet\" href=\"https://unpkg.com/@picocss/pico@2/css/pico.min.css\">")
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, "</head><body><main class=\"container\">")
		if err != nil {
			return err
		}

		if err := body.Render(ctx, w); err != nil {
			return err
		}

		_, err = io.WriteString(w, "</main></body></html>")
		return err
	})
}

// BucketsPage renders the list of buckets.
func BucketsPage(buckets []string) templ.Component {
	return Layout("fcstore - Buckets", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "<section><header><h1>Buckets</h1></header>")
		if err != nil {
			return err
		}

		if len(buckets) == 0 {
			_, err = io.WriteString(w, "<p>No buckets found.</p></section>")
			return err
		}

		_, err = io.WriteString(w, "<table><thead><tr><th>Name</th></tr></thead><tbody>")
		if err != nil {
			return err
		}

		for _, b := range buckets {
			href := "/" + url.PathEscape(b)
			_, err = fmt.Fprintf(w, "<tr><td><a href=\"%s\">%s</a></td></tr>", html.EscapeString(href), html.EscapeString(b))
			if err != nil {
				return err
			}
		}

		_, err = io.WriteString(w, "</tbody></table></section>")
		return err
	}))
}

// BucketPage renders the items of a single bucket, newest first.
func BucketPage(bucket string, items []Item) templ.Component {
	return Layout("fcstore - "+bucket, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, "<section><header><h1>Bucket: %s</h1>", html.EscapeString(bucket))
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, "<p><a href=\"/\">&larr; Back to buckets</a></p></header>")
		if err != nil {
			return err
		}

		if len(items) == 0 {
			_, err = io.WriteString(w, "<p>No items in this bucket.</p></section>")
			return err
		}

		_, err = io.WriteString(w, "<table><thead><tr><th>Name</th><th>Last Modified</th></tr></thead><tbody>")
		if err != nil {
			return err
		}

		for _, item := range items {
			href := "/" + url.PathEscape(bucket) + "/" + url.PathEscape(item.Name) + "?raw=1"
			_, err = fmt.Fprintf(w, "<tr><td><a href=\"%s\">%s</a></td><td>%s</td></tr>",
				html.EscapeString(href), html.EscapeString(item.Name), html.EscapeString(item.LastModified))
			if err != nil {
				return err
			}
		}

		_, err = io.WriteString(w, "</tbody></table></section>")
		return err
	}))
}
