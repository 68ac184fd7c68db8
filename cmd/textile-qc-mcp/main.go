package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/pflag"

	"github.com/ironsheep/textile-qc-mcp/internal/config"
	"github.com/ironsheep/textile-qc-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func usage() {
	fmt.Println("textile-qc-mcp - MCP server for textile color and pattern quality control")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  textile-qc-mcp [--config FILE]          Serve MCP over stdin/stdout")
	fmt.Println("  textile-qc-mcp analyze [options]        Run one QC comparison and exit")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --config, -c     YAML settings file")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Run 'textile-qc-mcp analyze --help' for analysis options.")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  TEXTILE_QC_LOG_LEVEL=debug    Enable debug logging")
	fmt.Println("  TEXTILE_QC_CONFIG=FILE        Settings file when --config is not given")
	fmt.Println("  TEXTILE_QC_<SETTING>          Override one setting (see config package)")
	fmt.Println()
	fmt.Println("A .env file in the working directory is loaded first when present.")
}

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("textile-qc-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			usage()
			return
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if err := config.LoadEnv(); err != nil {
		log.Fatalf("Environment error: %v", err)
	}

	if len(os.Args) > 1 && os.Args[1] == "analyze" {
		if err := runAnalyze(os.Args[2:], os.Stdout); err != nil {
			log.Fatalf("Analysis error: %v", err)
		}
		return
	}

	flags := pflag.NewFlagSet("textile-qc-mcp", pflag.ContinueOnError)
	configPath := flags.StringP("config", "c", os.Getenv("TEXTILE_QC_CONFIG"), "YAML settings file")
	if err := flags.Parse(os.Args[1:]); err != nil {
		log.Fatalf("Argument error: %v", err)
	}

	debug := os.Getenv("TEXTILE_QC_LOG_LEVEL") == "debug"
	if debug {
		log.Printf("Textile QC MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	settings, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	if debug && *configPath != "" {
		log.Printf("Settings loaded from %s", *configPath)
	}

	srv := server.NewWithSettings(settings)
	srv.SetDebug(debug)
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
