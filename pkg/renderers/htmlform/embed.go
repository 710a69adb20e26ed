package htmlform

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tpl
var embeddedTemplates embed.FS

//go:embed assets/*
var embeddedAssets embed.FS

// StylesheetName is the asset key themes resolve to serve the form styles.
const StylesheetName = "intake-form.css"

// TemplatesFS exposes the embedded template bundle for consumers that want
// the built-in step rendering out of the box.
func TemplatesFS() fs.FS {
	return embeddedTemplates
}

// AssetsFS exposes the embedded asset bundle so callers can serve it over
// HTTP or copy it into their own pipeline.
func AssetsFS() fs.FS {
	sub, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		// Should never happen, but fall back to raw FS so assets remain usable.
		return embeddedAssets
	}
	return sub
}

func defaultStylesheet() string {
	data, err := fs.ReadFile(embeddedAssets, "assets/"+StylesheetName)
	if err != nil {
		return ""
	}
	return string(data)
}
