package config

import (
	"fmt"
	"math"
)

// maxSweepTrials matches the trial limit of the sweep evaluator
const maxSweepTrials = 10_000_000

// Sort orders accepted by corpus.sort_order
const (
	SortNatural = "natural"
	SortLexical = "lexical"
)

// CorpusConfig locates the training and test corpora
type CorpusConfig struct {
	HamDir     string
	SpamDir    string
	TestDir    string
	LabelsFile string
	Encoding   string
	SortOrder  string
}

// TokenizerConfig controls document tokenization
type TokenizerConfig struct {
	HeaderLength    int
	KeepEmptyTokens bool
}

// ClassifyConfig controls plain classification
type ClassifyConfig struct {
	K      float64
	Output string
}

// SweepConfig controls the smoothing sweep
type SweepConfig struct {
	KMin    float64
	KMax    float64
	KStep   float64
	Workers int
}

// ResultsConfig controls where sweep trials are persisted
type ResultsConfig struct {
	CSVPath    string
	Store      string
	SQLitePath string
	MySQLDSN   string
}

// ServerConfig represents the configuration for the SMTP content filter
type ServerConfig struct {
	ListenAddress      string
	BlockSpam          bool
	SpamHeader         string
	ScoreHeader        string
	ReasonHeader       string
	SubjectPrefix      string
	ModifySubject      bool
	RelayEnabled       bool
	RelayAddress       string
	RelayPort          int
	WhitelistedDomains []string
}

// GetCorpus returns the corpus configuration
func (c *Config) GetCorpus() CorpusConfig {
	return CorpusConfig{
		HamDir:     c.GetString("corpus.ham_dir"),
		SpamDir:    c.GetString("corpus.spam_dir"),
		TestDir:    c.GetString("corpus.test_dir"),
		LabelsFile: c.GetString("corpus.labels_file"),
		Encoding:   c.GetString("corpus.encoding"),
		SortOrder:  c.GetString("corpus.sort_order"),
	}
}

// GetTokenizer returns the tokenizer configuration
func (c *Config) GetTokenizer() TokenizerConfig {
	return TokenizerConfig{
		HeaderLength:    c.GetInt("tokenizer.header_length"),
		KeepEmptyTokens: c.GetBool("tokenizer.keep_empty_tokens"),
	}
}

// GetClassify returns the classification configuration
func (c *Config) GetClassify() ClassifyConfig {
	return ClassifyConfig{
		K:      c.GetFloat64("classify.k"),
		Output: c.GetString("classify.output"),
	}
}

// GetSweep returns the sweep configuration
func (c *Config) GetSweep() SweepConfig {
	return SweepConfig{
		KMin:    c.GetFloat64("sweep.k_min"),
		KMax:    c.GetFloat64("sweep.k_max"),
		KStep:   c.GetFloat64("sweep.k_step"),
		Workers: c.GetInt("sweep.workers"),
	}
}

// GetResults returns the results configuration
func (c *Config) GetResults() ResultsConfig {
	return ResultsConfig{
		CSVPath:    c.GetString("results.csv_path"),
		Store:      c.GetString("results.store"),
		SQLitePath: c.GetString("results.sqlite_path"),
		MySQLDSN:   c.GetString("results.mysql_dsn"),
	}
}

// GetServer returns the server configuration
func (c *Config) GetServer() ServerConfig {
	return ServerConfig{
		ListenAddress:      c.GetString("server.listen_address"),
		BlockSpam:          c.GetBool("server.block_spam"),
		SpamHeader:         c.GetString("server.headers.spam"),
		ScoreHeader:        c.GetString("server.headers.score"),
		ReasonHeader:       c.GetString("server.headers.reason"),
		SubjectPrefix:      c.GetString("server.subject_prefix"),
		ModifySubject:      c.GetBool("server.modify_subject"),
		RelayEnabled:       c.GetBool("server.relay.enabled"),
		RelayAddress:       c.GetString("server.relay.address"),
		RelayPort:          c.GetInt("server.relay.port"),
		WhitelistedDomains: c.GetStringSlice("server.whitelisted_domains"),
	}
}

// Validate checks the corpus settings
func (cc CorpusConfig) Validate() error {
	switch cc.SortOrder {
	case SortNatural, SortLexical:
	default:
		return fmt.Errorf("unsupported sort order: %s", cc.SortOrder)
	}
	if cc.HamDir == "" || cc.SpamDir == "" {
		return fmt.Errorf("training directories are required")
	}
	return nil
}

// Validate checks the classification settings
func (cc ClassifyConfig) Validate() error {
	if !(cc.K > 0) {
		return fmt.Errorf("classify.k must be positive, got %g", cc.K)
	}
	return nil
}

// Validate checks the sweep settings
func (sc SweepConfig) Validate() error {
	if !(sc.KMin > 0) || !(sc.KStep > 0) {
		return fmt.Errorf("sweep k_min and k_step must be positive, got %g and %g", sc.KMin, sc.KStep)
	}
	if sc.KMax < sc.KMin {
		return fmt.Errorf("sweep k_max %g is below k_min %g", sc.KMax, sc.KMin)
	}
	if n := math.Floor((sc.KMax-sc.KMin)/sc.KStep+1e-9) + 1; math.IsInf(n, 0) || math.IsNaN(n) || n > maxSweepTrials {
		return fmt.Errorf("sweep range yields %g trials, more than %d", n, maxSweepTrials)
	}
	if sc.Workers < 1 {
		return fmt.Errorf("sweep workers must be at least 1, got %d", sc.Workers)
	}
	return nil
}
