package config

// Config represents the complete configuration for the scaleread application.
// Values are merged from configuration files, environment variables and
// command-line flags.
type Config struct {
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	Pipeline PipelineConfig `mapstructure:"pipeline" yaml:"pipeline" json:"pipeline"`
	Output   OutputConfig   `mapstructure:"output" yaml:"output" json:"output"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server" json:"server"`
	Batch    BatchConfig    `mapstructure:"batch" yaml:"batch" json:"batch"`
}

// PipelineConfig contains inference pipeline settings.
type PipelineConfig struct {
	Detector       DetectorConfig   `mapstructure:"detector" yaml:"detector" json:"detector"`
	Recognizer     RecognizerConfig `mapstructure:"recognizer" yaml:"recognizer" json:"recognizer"`
	DictionaryPath string           `mapstructure:"dictionary_path" yaml:"dictionary_path" json:"dictionary_path"`
	NumThreads     int              `mapstructure:"num_threads" yaml:"num_threads" json:"num_threads"`
	MaxImageSize   int              `mapstructure:"max_image_size" yaml:"max_image_size" json:"max_image_size"`
}

// DetectorConfig contains display-region detection settings.
type DetectorConfig struct {
	ModelPath     string  `mapstructure:"model_path" yaml:"model_path" json:"model_path"`
	InputSize     int     `mapstructure:"input_size" yaml:"input_size" json:"input_size"`
	ConfThreshold float64 `mapstructure:"conf_threshold" yaml:"conf_threshold" json:"conf_threshold"`
	IoUThreshold  float64 `mapstructure:"iou_threshold" yaml:"iou_threshold" json:"iou_threshold"`
}

// RecognizerConfig contains text recognition settings.
type RecognizerConfig struct {
	ModelPath   string `mapstructure:"model_path" yaml:"model_path" json:"model_path"`
	ImageHeight int    `mapstructure:"image_height" yaml:"image_height" json:"image_height"`
	ImageWidth  int    `mapstructure:"image_width" yaml:"image_width" json:"image_width"`
}

// OutputConfig contains result formatting settings.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format"`
	File   string `mapstructure:"file" yaml:"file" json:"file"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string `mapstructure:"host" yaml:"host" json:"host"`
	Port            int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	MaxUploadMB     int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	TimeoutSec      int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// BatchConfig contains batch processing settings.
type BatchConfig struct {
	Workers         int  `mapstructure:"workers" yaml:"workers" json:"workers"`
	ContinueOnError bool `mapstructure:"continue_on_error" yaml:"continue_on_error" json:"continue_on_error"`
}
