package config

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "/etc/warehouse/config"
	ConfigFileName    = "warehouse.yml"
)

// Default limits. The per-file limit matches the index's historical 100 MB
// default; projects can carry individual overrides in the database.
const (
	DefaultMaxFileSizeMB          = 100
	DefaultMaxProjectSizeGB       = 10
	DefaultQuarantineThreshold    = 2
	DefaultAdminSessionTTLSeconds = 900
	DefaultStoragePath            = "/var/lib/warehouse/packages"
	DefaultSimpleListingLimit     = 10000
)

// WarehouseConfig holds all index configuration settings.
type WarehouseConfig struct {
	// TrustedProxies is a list of CIDR ranges for trusted proxies
	TrustedProxies []string `yaml:"trusted_proxies" json:"trusted_proxies"`

	// MaxFileSizeMB is the default per-file upload limit in megabytes
	MaxFileSizeMB int `yaml:"max_file_size_mb" json:"max_file_size_mb"`

	// MaxProjectSizeGB is the default total-size quota per project in gigabytes
	MaxProjectSizeGB int `yaml:"max_project_size_gb" json:"max_project_size_gb"`

	// QuarantineReportThreshold is the number of distinct observers whose
	// malware reports trigger automatic quarantine
	QuarantineReportThreshold int `yaml:"quarantine_report_threshold" json:"quarantine_report_threshold"`

	// UploadsEnabled gates the upload endpoint (read-only mode when false)
	UploadsEnabled bool `yaml:"uploads_enabled" json:"uploads_enabled"`

	// AdminSessionTTL is the admin JWT session lifetime in seconds
	AdminSessionTTL int `yaml:"admin_session_ttl" json:"admin_session_ttl"`

	// StoragePath is the root directory of the local file storage backend
	StoragePath string `yaml:"storage_path" json:"storage_path"`

	// SimpleListingLimit caps the number of projects on the simple index page
	SimpleListingLimit int `yaml:"simple_listing_limit" json:"simple_listing_limit"`

	// sources tracks where each value came from
	sources map[string]string

	// configFilePath is the path to the config file
	configFilePath string
}

// Attribute represents a configuration attribute with its value and source.
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// Global singleton config
var (
	globalConfig *WarehouseConfig
	configMu     sync.RWMutex
)

// Get returns the global configuration, loading it if necessary.
func Get() *WarehouseConfig {
	configMu.RLock()
	if globalConfig != nil {
		configMu.RUnlock()
		return globalConfig
	}
	configMu.RUnlock()

	configMu.Lock()
	defer configMu.Unlock()

	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			// Fall back to defaults on error
			globalConfig = newDefault()
		} else {
			globalConfig = cfg
		}
	}
	return globalConfig
}

// Reload reloads the configuration from file and environment.
func Reload() error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	configMu.Lock()
	globalConfig = cfg
	configMu.Unlock()
	return nil
}

// Set replaces the global configuration. Intended for tests.
func Set(cfg *WarehouseConfig) {
	configMu.Lock()
	globalConfig = cfg
	configMu.Unlock()
}

// newDefault returns a config with default values.
func newDefault() *WarehouseConfig {
	return &WarehouseConfig{
		TrustedProxies:            []string{},
		MaxFileSizeMB:             DefaultMaxFileSizeMB,
		MaxProjectSizeGB:          DefaultMaxProjectSizeGB,
		QuarantineReportThreshold: DefaultQuarantineThreshold,
		UploadsEnabled:            true,
		AdminSessionTTL:           DefaultAdminSessionTTLSeconds,
		StoragePath:               DefaultStoragePath,
		SimpleListingLimit:        DefaultSimpleListingLimit,
		sources:                   make(map[string]string),
	}
}

// NewDefault returns a default config. Intended for tests.
func NewDefault() *WarehouseConfig {
	return newDefault()
}

// Load loads configuration from file and environment variables.
// Environment variables take precedence over file values.
func Load() (*WarehouseConfig, error) {
	config := newDefault()

	for _, name := range attributeNames() {
		config.sources[name] = "default"
	}

	configPath := os.Getenv("WAREHOUSE_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	config.configFilePath = filepath.Join(configPath, ConfigFileName)

	if data, err := os.ReadFile(config.configFilePath); err == nil {
		var fileConfig WarehouseConfig
		if err := yaml.Unmarshal(data, &fileConfig); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", config.configFilePath, err)
		}
		config.applyFileConfig(&fileConfig)
	}

	config.applyEnvConfig()

	return config, nil
}

func attributeNames() []string {
	return []string{
		"trusted_proxies", "max_file_size_mb", "max_project_size_gb",
		"quarantine_report_threshold", "uploads_enabled",
		"admin_session_ttl", "storage_path", "simple_listing_limit",
	}
}

func (c *WarehouseConfig) applyFileConfig(file *WarehouseConfig) {
	if len(file.TrustedProxies) > 0 {
		c.TrustedProxies = file.TrustedProxies
		c.sources["trusted_proxies"] = "file"
	}
	if file.MaxFileSizeMB != 0 {
		c.MaxFileSizeMB = file.MaxFileSizeMB
		c.sources["max_file_size_mb"] = "file"
	}
	if file.MaxProjectSizeGB != 0 {
		c.MaxProjectSizeGB = file.MaxProjectSizeGB
		c.sources["max_project_size_gb"] = "file"
	}
	if file.QuarantineReportThreshold != 0 {
		c.QuarantineReportThreshold = file.QuarantineReportThreshold
		c.sources["quarantine_report_threshold"] = "file"
	}
	if file.AdminSessionTTL != 0 {
		c.AdminSessionTTL = file.AdminSessionTTL
		c.sources["admin_session_ttl"] = "file"
	}
	if file.StoragePath != "" {
		c.StoragePath = file.StoragePath
		c.sources["storage_path"] = "file"
	}
	if file.SimpleListingLimit != 0 {
		c.SimpleListingLimit = file.SimpleListingLimit
		c.sources["simple_listing_limit"] = "file"
	}
}

func (c *WarehouseConfig) applyEnvConfig() {
	if val := os.Getenv("WAREHOUSE_TRUSTED_PROXIES"); val != "" {
		c.TrustedProxies = splitAndTrim(val)
		c.sources["trusted_proxies"] = "environment"
	}
	if val := os.Getenv("WAREHOUSE_MAX_FILE_SIZE_MB"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.MaxFileSizeMB = i
			c.sources["max_file_size_mb"] = "environment"
		}
	}
	if val := os.Getenv("WAREHOUSE_MAX_PROJECT_SIZE_GB"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.MaxProjectSizeGB = i
			c.sources["max_project_size_gb"] = "environment"
		}
	}
	if val := os.Getenv("WAREHOUSE_QUARANTINE_REPORT_THRESHOLD"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.QuarantineReportThreshold = i
			c.sources["quarantine_report_threshold"] = "environment"
		}
	}
	if val := os.Getenv("WAREHOUSE_UPLOADS_ENABLED"); val != "" {
		c.UploadsEnabled = val == "true" || val == "1"
		c.sources["uploads_enabled"] = "environment"
	}
	if val := os.Getenv("WAREHOUSE_ADMIN_SESSION_TTL"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.AdminSessionTTL = i
			c.sources["admin_session_ttl"] = "environment"
		}
	}
	if val := os.Getenv("WAREHOUSE_STORAGE_PATH"); val != "" {
		c.StoragePath = val
		c.sources["storage_path"] = "environment"
	}
	if val := os.Getenv("WAREHOUSE_SIMPLE_LISTING_LIMIT"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.SimpleListingLimit = i
			c.sources["simple_listing_limit"] = "environment"
		}
	}
}

// ConfigFilePath returns the path to the config file.
func (c *WarehouseConfig) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute.
func (c *WarehouseConfig) Source(name string) string {
	if c.sources == nil {
		return "default"
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return "default"
}

// MaxFileSize returns the per-file upload limit in bytes.
func (c *WarehouseConfig) MaxFileSize() int64 {
	return int64(c.MaxFileSizeMB) << 20
}

// MaxProjectSize returns the per-project total-size quota in bytes.
func (c *WarehouseConfig) MaxProjectSize() int64 {
	return int64(c.MaxProjectSizeGB) << 30
}

// SessionTTL returns the admin session lifetime as a duration.
func (c *WarehouseConfig) SessionTTL() time.Duration {
	return time.Duration(c.AdminSessionTTL) * time.Second
}

// IsTrustedProxy checks if an IP belongs to a trusted proxy.
func (c *WarehouseConfig) IsTrustedProxy(ip string) bool {
	if len(c.TrustedProxies) == 0 {
		return false
	}

	parsedIP := net.ParseIP(ip)
	if parsedIP == nil {
		return false
	}

	for _, cidr := range c.TrustedProxies {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			// Try as plain IP
			if net.ParseIP(cidr) != nil && cidr == ip {
				return true
			}
			continue
		}
		if network.Contains(parsedIP) {
			return true
		}
	}
	return false
}

// Validate validates the configuration.
func (c *WarehouseConfig) Validate() error {
	for _, cidr := range c.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			if net.ParseIP(cidr) == nil {
				return fmt.Errorf("invalid trusted_proxies value: %s", cidr)
			}
		}
	}
	if c.MaxFileSizeMB <= 0 {
		return fmt.Errorf("max_file_size_mb must be positive, got %d", c.MaxFileSizeMB)
	}
	if c.MaxProjectSizeGB <= 0 {
		return fmt.Errorf("max_project_size_gb must be positive, got %d", c.MaxProjectSizeGB)
	}
	if c.QuarantineReportThreshold < 1 {
		return fmt.Errorf("quarantine_report_threshold must be at least 1, got %d", c.QuarantineReportThreshold)
	}
	if c.StoragePath == "" {
		return fmt.Errorf("storage_path must not be empty")
	}
	return nil
}

// Attributes returns all configuration attributes with their values and sources.
func (c *WarehouseConfig) Attributes() []Attribute {
	return []Attribute{
		{Name: "trusted_proxies", Value: strings.Join(c.TrustedProxies, ","), Source: c.Source("trusted_proxies")},
		{Name: "max_file_size_mb", Value: strconv.Itoa(c.MaxFileSizeMB), Source: c.Source("max_file_size_mb")},
		{Name: "max_project_size_gb", Value: strconv.Itoa(c.MaxProjectSizeGB), Source: c.Source("max_project_size_gb")},
		{Name: "quarantine_report_threshold", Value: strconv.Itoa(c.QuarantineReportThreshold), Source: c.Source("quarantine_report_threshold")},
		{Name: "uploads_enabled", Value: strconv.FormatBool(c.UploadsEnabled), Source: c.Source("uploads_enabled")},
		{Name: "admin_session_ttl", Value: strconv.Itoa(c.AdminSessionTTL), Source: c.Source("admin_session_ttl")},
		{Name: "storage_path", Value: c.StoragePath, Source: c.Source("storage_path")},
		{Name: "simple_listing_limit", Value: strconv.Itoa(c.SimpleListingLimit), Source: c.Source("simple_listing_limit")},
	}
}

// FormatText returns a text representation of the configuration.
func (c *WarehouseConfig) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-32s %-40s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-32s %-40s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-32s %-40s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration.
func (c *WarehouseConfig) FormatJSON() (string, error) {
	result := map[string]interface{}{
		"config_file": c.configFilePath,
		"attributes":  c.Attributes(),
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
