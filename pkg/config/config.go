// Package config loads the application configuration from YAML and the
// environment.
package config

import "time"

// Config is the root application configuration.
type Config struct {
	Database    DatabaseConfig    `yaml:"database"`
	Log         LogConfig         `yaml:"log"`
	Recognition RecognitionConfig `yaml:"recognition"`
	Ingest      IngestConfig      `yaml:"ingest"`
	Corpus      CorpusConfig      `yaml:"corpus"`
}

// DatabaseConfig holds the SQLite settings.
type DatabaseConfig struct {
	Path string `yaml:"path" env:"PINYINFUN_DB" env-default:"pinyinfun.db"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}

// RecognitionConfig holds the image text recognition settings. An empty
// project disables recognition; image uploads then end in error.
type RecognitionConfig struct {
	Project   string   `yaml:"project"   env:"GCP_PROJECT_ID"`
	Region    string   `yaml:"region"    env:"RECOGNITION_REGION"    env-default:"europe-west1"`
	Model     string   `yaml:"model"     env:"RECOGNITION_MODEL"     env-default:"gemini-2.5-flash"`
	Languages []string `yaml:"languages" env:"RECOGNITION_LANGUAGES" env-default:"chi_tra,chi_sim"`
}

// IngestConfig holds upload processing settings.
type IngestConfig struct {
	Workers          int           `yaml:"workers"           env:"INGEST_WORKERS"           env-default:"2"`
	PlaceholderDelay time.Duration `yaml:"placeholder_delay" env:"INGEST_PLACEHOLDER_DELAY" env-default:"1500ms"`
	MaxUploadBytes   int64         `yaml:"max_upload_bytes"  env:"INGEST_MAX_UPLOAD_BYTES"  env-default:"10485760"`
}

// CorpusConfig holds vocabulary settings.
type CorpusConfig struct {
	// SystemVocabPath replaces the built-in system vocabulary when set.
	SystemVocabPath string `yaml:"system_vocab_path" env:"CORPUS_SYSTEM_VOCAB"`
}
