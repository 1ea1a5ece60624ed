package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Qdrant   QdrantConfig
	Gemini   GeminiConfig
	Storage  StorageConfig
	Worker   WorkerConfig
	Analysis AnalysisConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
}

type GeminiConfig struct {
	APIKey string
}

type StorageConfig struct {
	UploadPath  string
	MaxFileSize int64
}

type WorkerConfig struct {
	Concurrency       int
	RetryMaxAttempts  int
	RetryInitialDelay time.Duration
	StageTimeout      time.Duration
}

type AnalysisConfig struct {
	SupportedLanguages  []string
	DefaultLanguage     string
	MinTextLength       int
	SimilarityThreshold float64
	SkillsWeight        float64
	ExperienceWeight    float64
	EducationWeight     float64

	RequiredSkillFactor  float64
	PreferredSkillFactor float64
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "smartrecruit_analysis"),
		},
		Qdrant: QdrantConfig{
			URL:        getEnv("QDRANT_URL", "http://localhost:6333"),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "skills_vocabulary"),
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
		},
		Storage: StorageConfig{
			UploadPath:  getEnv("UPLOAD_PATH", "./uploads"),
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 5242880),
		},
		Worker: WorkerConfig{
			Concurrency:       getEnvAsInt("WORKER_CONCURRENCY", 3),
			RetryMaxAttempts:  getEnvAsInt("RETRY_MAX_ATTEMPTS", 3),
			RetryInitialDelay: getEnvAsDuration("RETRY_INITIAL_DELAY", "2s"),
			StageTimeout:      getEnvAsDuration("STAGE_TIMEOUT", "60s"),
		},
		Analysis: AnalysisConfig{
			SupportedLanguages:   getEnvAsSlice("SUPPORTED_LANGUAGES", "fr,en"),
			DefaultLanguage:      getEnv("DEFAULT_LANGUAGE", "fr"),
			MinTextLength:        getEnvAsInt("MIN_TEXT_LENGTH", 40),
			SimilarityThreshold:  getEnvAsFloat("SIMILARITY_THRESHOLD", 0.72),
			SkillsWeight:         getEnvAsFloat("SKILLS_WEIGHT", 0.5),
			ExperienceWeight:     getEnvAsFloat("EXPERIENCE_WEIGHT", 0.3),
			EducationWeight:      getEnvAsFloat("EDUCATION_WEIGHT", 0.2),
			RequiredSkillFactor:  getEnvAsFloat("REQUIRED_SKILL_FACTOR", 2.0),
			PreferredSkillFactor: getEnvAsFloat("PREFERRED_SKILL_FACTOR", 1.0),
		},
	}
}

// Validate rejects weight configurations the scorer cannot work with.
func (c *Config) Validate() error {
	sum := c.Analysis.SkillsWeight + c.Analysis.ExperienceWeight + c.Analysis.EducationWeight
	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("sub-score weights must sum to 1, got %.3f", sum)
	}
	if c.Analysis.RequiredSkillFactor <= c.Analysis.PreferredSkillFactor {
		return fmt.Errorf("required skill factor must exceed preferred skill factor")
	}
	if len(c.Analysis.SupportedLanguages) == 0 {
		return fmt.Errorf("at least one supported language is required")
	}
	return nil
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}

func getEnvAsSlice(key string, defaultValue string) []string {
	valueStr := getEnv(key, defaultValue)
	parts := strings.Split(valueStr, ",")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
