package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/logrusorgru/aurora"

	"github.com/xiaobogaga/jackc/compiler/internal"
)

var (
	path       = flag.String("path", ".", "the jack file or the directory of jack files to compile")
	configPath = flag.String("config", "", "an optional yaml config file")
	verify     = flag.Bool("verify", false, "check the produced vm files are well formed")
	keepGoing  = flag.Bool("keep_going", false, "compile every file and report all failures")
	logLevel   = flag.String("log_level", "info", "logrus level: trace, debug, info, warn, error")
	color      = flag.Bool("color", true, "highlight errors")
	strict     = flag.Bool("strict", false, "only allow calls qualified by a variable, the class itself or an external class")
)

func main() {
	flag.Parse()
	au := aurora.NewAurora(*color)
	cfg, err := loadConfig()
	if err != nil {
		fmt.Println(au.Red(fmt.Sprintf("Error: %+v", err)))
		os.Exit(2)
	}
	outputs, err := internal.CompilePath(*path, cfg)
	for _, output := range outputs {
		fmt.Println(au.Green(output))
	}
	if err != nil {
		fmt.Println(au.Red(fmt.Sprintf("Error: %+v", err)))
		os.Exit(1)
	}
}

// loadConfig starts from the config file, if any, then applies the flags given on the
// command line.
func loadConfig() (internal.Config, error) {
	cfg := internal.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = internal.LoadConfig(*configPath)
		if err != nil {
			return cfg, err
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "verify":
			cfg.Verify = *verify
		case "keep_going":
			cfg.KeepGoing = *keepGoing
		case "log_level":
			cfg.LogLevel = *logLevel
		case "strict":
			cfg.Strict = *strict
		}
	})
	_, err := cfg.Level()
	return cfg, err
}
