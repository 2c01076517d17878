package config

const (
	defaultOutputDir          = "~/lessonvault/data"
	defaultStagingDir         = "~/.local/share/lessonvault/staging"
	defaultLogDir             = "~/.local/share/lessonvault/logs"
	defaultSessionFileName    = "session.txt"
	defaultHost               = "pro.yuketang.cn"
	defaultRequestTimeout     = 30
	defaultWorkers            = 4
	defaultStaleScratchHours  = 24
	defaultPDFDPI             = 100
	defaultAnswerFontSize     = 40
	defaultJPEGQuality        = 92
	defaultAria2Binary        = "aria2c"
	defaultSegmentConnections = 4
	defaultSegmentSplits      = 2
	defaultBatchConnections   = 16
	defaultBatchJobs          = 16
	defaultAria2Interrupt     = 30
	defaultFFmpegBinary       = "ffmpeg"
	defaultFFmpegSettleMillis = 500
	defaultGracePeriodMillis  = 500
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir:  defaultOutputDir,
			CacheDir:   defaultCacheDir(),
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
		},
		Session: Session{
			Host:           defaultHost,
			RequestTimeout: defaultRequestTimeout,
		},
		Download: Download{
			Workers:           defaultWorkers,
			StaleScratchHours: defaultStaleScratchHours,
		},
		Slides: Slides{
			ConvertToPDF:    true,
			AnnotateAnswers: true,
			PDFDPI:          defaultPDFDPI,
			AnswerFontSize:  defaultAnswerFontSize,
			JPEGQuality:     defaultJPEGQuality,
		},
		Aria2: Aria2{
			Binary:             defaultAria2Binary,
			SegmentConnections: defaultSegmentConnections,
			SegmentSplits:      defaultSegmentSplits,
			BatchConnections:   defaultBatchConnections,
			BatchJobs:          defaultBatchJobs,
			InterruptTimeout:   defaultAria2Interrupt,
		},
		FFmpeg: FFmpeg{
			Binary:        defaultFFmpegBinary,
			HWAccel:       "cuda",
			VideoCodec:    "hevc_nvenc",
			VideoBitrate:  "200k",
			MaxRate:       "400k",
			BufSize:       "3200k",
			FrameRate:     8,
			RCLookahead:   1024,
			AudioCodec:    "aac",
			AudioBitrate:  "64k",
			AudioChannels: 1,
			SettleMillis:  defaultFFmpegSettleMillis,
		},
		Process: Process{
			GracePeriodMillis: defaultGracePeriodMillis,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
