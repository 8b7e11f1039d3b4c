package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Minio     MinioConfig     `yaml:"minio"`
	OCR       OCRConfig       `yaml:"ocr"`
	NER       NERConfig       `yaml:"ner"`
	Generator GeneratorConfig `yaml:"generator"`
	Renderer  RendererConfig  `yaml:"renderer"`
	Template  TemplateConfig  `yaml:"template"`
	Store     StoreConfig     `yaml:"store"`
	Auth      AuthConfig      `yaml:"auth"`
	Users     []User          `yaml:"users"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

type MinioConfig struct {
	Endpoint   string `yaml:"endpoint"`
	AccessKey  string `yaml:"access_key"`
	SecretKey  string `yaml:"secret_key"`
	Bucket     string `yaml:"bucket"`
	UseSSL     bool   `yaml:"use_ssl"`
	ExpireDays int    `yaml:"expire_days"`
}

type OCRConfig struct {
	Binary         string `yaml:"binary"`
	Language       string `yaml:"language"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type NERConfig struct {
	APIURL         string `yaml:"api_url"`
	APIToken       string `yaml:"api_token"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type GeneratorConfig struct {
	APIURL         string `yaml:"api_url"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxPromptChars int    `yaml:"max_prompt_chars"`
	Enabled        bool   `yaml:"enabled"`
}

type RendererConfig struct {
	Binary         string `yaml:"binary"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type TemplateConfig struct {
	Path string `yaml:"path"`
	// PartyPolicy decides which contract party a university-like
	// organization is assigned to: "university_as_party1" or
	// "university_as_party2". The right choice depends on the template.
	PartyPolicy string `yaml:"party_policy"`
}

type StoreConfig struct {
	MaxContracts int `yaml:"max_contracts"`
}

type AuthConfig struct {
	JWTSecret        string `yaml:"jwt_secret"`
	TokenExpireHours int    `yaml:"token_expire_hours"`
}

type User struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Tenant   string `yaml:"tenant"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Minio.ExpireDays == 0 {
		cfg.Minio.ExpireDays = 7
	}
	if cfg.OCR.Binary == "" {
		cfg.OCR.Binary = "ocrmypdf"
	}
	if cfg.OCR.Language == "" {
		cfg.OCR.Language = "ind"
	}
	if cfg.OCR.TimeoutSeconds == 0 {
		cfg.OCR.TimeoutSeconds = 120
	}
	if cfg.NER.TimeoutSeconds == 0 {
		cfg.NER.TimeoutSeconds = 60
	}
	if cfg.Generator.Model == "" {
		cfg.Generator.Model = "gemma"
	}
	if cfg.Generator.TimeoutSeconds == 0 {
		cfg.Generator.TimeoutSeconds = 60
	}
	if cfg.Generator.MaxPromptChars == 0 {
		cfg.Generator.MaxPromptChars = 8000
	}
	if cfg.Renderer.Binary == "" {
		cfg.Renderer.Binary = "weasyprint"
	}
	if cfg.Renderer.TimeoutSeconds == 0 {
		cfg.Renderer.TimeoutSeconds = 60
	}
	if cfg.Template.Path == "" {
		cfg.Template.Path = "templates/kontrak.html"
	}
	if cfg.Template.PartyPolicy == "" {
		cfg.Template.PartyPolicy = "university_as_party1"
	}
	if cfg.Template.PartyPolicy != "university_as_party1" && cfg.Template.PartyPolicy != "university_as_party2" {
		return nil, fmt.Errorf("invalid template.party_policy: %q", cfg.Template.PartyPolicy)
	}
	if cfg.Store.MaxContracts == 0 {
		cfg.Store.MaxContracts = 100
	}
	if cfg.Auth.TokenExpireHours == 0 {
		cfg.Auth.TokenExpireHours = 24
	}

	return &cfg, nil
}

// FindUser finds a user by username
func (c *Config) FindUser(username string) *User {
	for i := range c.Users {
		if c.Users[i].Username == username {
			return &c.Users[i]
		}
	}
	return nil
}
