package config

import (
	"os"
	"strings"
	"time"

	"github.com/koding/multiconfig"
)

// Config defines grader configuration
type Config struct {
	// submission
	Archive      string `flagUsage:"specifies the submission archive (.zip / .tar / .tar.gz / .tar.zst), could be given as the first argument"`
	Language     string `flagUsage:"specifies the language of the submission" default:"java"`
	LanguageConf string `flagUsage:"specifies language profile configuration file" default:"languages.yaml"`
	TempDir      string `flagUsage:"specifies the root of submission work directories (system temp dir by default)"`
	KeepWorkDir  bool   `flagUsage:"keep the submission work directory after grading"`

	// test cases
	TestDir    string  `flagUsage:"specifies directory holding test<i>.in / test<i>.out" default:"testcases"`
	TestCount  int     `flagUsage:"specifies the # of test cases (0 discovers until the first missing input)"`
	Manifest   string  `flagUsage:"specifies test case manifest file, overrides testDir"`
	Comparator string  `flagUsage:"specifies output comparator (alpha / lines / exact / tokens)" default:"alpha"`
	Tolerance  float64 `flagUsage:"specifies numeric tolerance of tokens comparator" default:"1e-6"`

	// runner limit
	TimeLimit        time.Duration `flagUsage:"specifies clock time limit for each evaluation (0 for unlimited)"`
	CompileTimeLimit time.Duration `flagUsage:"specifies clock time limit for compile (0 for unlimited)"`

	// server config
	Serve         bool   `flagUsage:"start http grading server instead of grading a single archive"`
	HTTPAddr      string `flagUsage:"specifies the http binding address" default:":5060"`
	MonitorAddr   string `flagUsage:"specifies the metrics binding address" default:":5062"`
	Dir           string `flagUsage:"specifies directory to store uploaded archives"`
	AuthToken     string `flagUsage:"bearer token auth for REST"`
	EnableMetrics bool   `flagUsage:"enable promethus metrics endpoint"`
	MetricsFile   string `flagUsage:"write metrics in text format to the file after grading"`

	// logger config
	SessionLog  string `flagUsage:"write JSON session log to the file"`
	Release     bool   `flagUsage:"release level of logs"`
	Silent      bool   `flagUsage:"do not print logs"`
	EnableDebug bool   `flagUsage:"enable debug logs"`

	// show version and exit
	Version bool `flagUsage:"show version and exit"`
}

// Load loads config from flag & environment variables. A leading argument
// that is not a flag is taken as the archive.
func (c *Config) Load(args []string) error {
	if args == nil {
		args = []string{}
	}
	var archive string
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		archive, args = args[0], args[1:]
	}
	cl := multiconfig.MultiLoader(
		&multiconfig.TagLoader{},
		&multiconfig.EnvironmentLoader{
			Prefix:    "GRADER",
			CamelCase: true,
		},
		&multiconfig.FlagLoader{
			CamelCase: true,
			EnvPrefix: "GRADER",
			Args:      args,
		},
	)
	if os.Getpid() == 1 {
		c.Release = true
	}
	if err := cl.Load(c); err != nil {
		return err
	}
	if archive != "" {
		c.Archive = archive
	}
	return nil
}
