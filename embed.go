package learnedgeek

import "embed"

// EmbeddedAssets contains the default stylesheet served at /public/site.css.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
