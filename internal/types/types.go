package types

import "time"

var (
	// AppVersion injected by -ldflags at build time.
	AppVersion = "v0.1.0"
	BuildTags  = ""
)

const (
	AppName        = "adrestreamer"
	AppDescription = "<cyan>adrestreamer - live HLS ad-replacement restreamer</>"
	AppGithubUrl   = "https://github.com/streamshift/adrestreamer"

	// AppLocalDataDir names the XDG subdirectory used for config/data/state/cache.
	AppLocalDataDir = "adrestreamer"

	AppHttpTimeout = time.Second * 10

	// OutputMimeType is the content type the server always produces for /play.
	OutputMimeType = "audio/aac"
	// HLSMimeType is the content type a compatible HLS source must advertise.
	HLSMimeType = "application/vnd.apple.mpegurl"
)

const AppHelpTemplate = `%s

{{.Description}} (Version: <info>{{.Version}}</>)

<comment>Usage:</>
  {$binName} [Global Options...] <info>{command}</> [--option ...] [argument ...]

<comment>Global Options:</>
{{.GOpts}}
<comment>Available Commands:</>{{range $module, $cs := .Cs}}{{if $module}}
<comment> {{ $module }}</>{{end}}{{ range $cs }}
  <info>{{.Name | paddingName }}</> {{.UseFor}}{{if .Aliases}} (alias: <cyan>{{ join .Aliases ","}}</>){{end}}{{end}}{{end}}

  <info>{{ paddingName "help" }}</> Display help information

Use "<cyan>{$binName} {COMMAND} -h</>" for more information about a command
`
