package config

const (
	defaultLibraryRoot    = "~/brics-studio"
	defaultLogDir         = "~/.local/share/bricsview/logs"
	defaultSocketPath     = "~/.local/share/bricsview/bricsviewd.sock"
	defaultArtifactDir    = "gsplat_2dgs"
	defaultCkptDir        = "ckpts"
	defaultCkptPrefix     = "ckpt_"
	defaultSequencePrefix = "multisequence"
	defaultCacheCapacity  = 2
	defaultRefreshSeconds = 30
	defaultTrainerCommand = "python"
	defaultTrainerScript  = "simple_trainer_2dgs.py"
	defaultTrainerStage   = "calib/stage2"
	defaultDataFactor     = 1
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LibraryRoot: defaultLibraryRoot,
			LogDir:      defaultLogDir,
			SocketPath:  defaultSocketPath,
		},
		Artifacts: Artifacts{
			Dir:        defaultArtifactDir,
			CkptDir:    defaultCkptDir,
			Prefix:     defaultCkptPrefix,
			Extensions: []string{"pt", "pth"},
		},
		Catalog: Catalog{
			SequencePrefix: defaultSequencePrefix,
		},
		Viewer: Viewer{
			CacheCapacity:  defaultCacheCapacity,
			RefreshSeconds: defaultRefreshSeconds,
			WatchLibrary:   true,
		},
		Trainer: Trainer{
			Command:    defaultTrainerCommand,
			Script:     defaultTrainerScript,
			StageDir:   defaultTrainerStage,
			DataFactor: defaultDataFactor,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
