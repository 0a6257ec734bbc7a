package configs

// NewDefaultConfig returns a Config populated with every default value. It
// is the lowest-priority layer loaded before a user's TOML file. Model.Path
// and Library.DBPath default to bare filenames, resolved against the app
// data directory by the caller (cmd/restreamer joins relative paths with
// app.DataDir()).
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr: ":8080",
		},
		Smoother: SmootherConfig{
			BehindMS: 500,
			AheadMS:  1500,
		},
		Mixer: MixerConfig{
			DefaultStrategy: MixerReplace,
			Curve:           "parabolic",
			FadeMs:          1500,
		},
		Model: ModelConfig{
			Path: "model.onnx",
		},
		Library: LibraryConfig{
			DBPath: "ads.db",
		},
		Log: LogConfig{
			Level: "info",
			JSON:  false,
		},
		Quiet:        false,
		NoRecordings: false,
	}
}
