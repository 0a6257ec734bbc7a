package filex

import "embed"

//go:embed embed/adrestreamer.toml
var embedDir embed.FS
