package web

import "embed"

// TemplatesFS embeds the HTML templates for the ledger UI.
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS embeds static assets (css/js).
//go:embed static/*
var StaticFS embed.FS
