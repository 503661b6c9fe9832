// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pmc-pages CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pmc-pages/internal/config"
	"github.com/pdiddy/pmc-pages/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds values loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// v holds the merged configuration: defaults, config file, PMC_PAGES_*
// environment variables, and bound flags.
var v = config.New()

// rootCmd is the base command for the pmc-pages CLI. Without a subcommand
// it runs the whole pipeline.
var rootCmd = &cobra.Command{
	Use:   "pmc-pages",
	Short: "Download PubMed Central articles and render their pages as images",
	Long: `pmc-pages reads PubMed Central identifiers from pmc_ids.txt, downloads
each article's PDF into pdfs/, renders every page to a JPEG in imgs/, and
renames the images to <id>-<pages>-<page>.jpg.

Running pmc-pages with no subcommand is the same as "pmc-pages run". The
stages can also be run one at a time: check, fetch, render, normalize.
Work already on disk is skipped, so an interrupted run can be repeated.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/", os.Stderr)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
	RunE: runPipeline,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./pmc-pages.yaml or ~/.config/pmc-pages/pmc-pages.yaml)")
	pf.String("ids-file", "", "newline-delimited list of PMC identifiers (default pmc_ids.txt)")
	pf.String("pdf-dir", "", "directory for downloaded PDFs (default pdfs)")
	pf.String("image-dir", "", "directory for page images (default imgs)")
	pf.Duration("delay", 0, "minimum interval between downloads (default 3s)")
	pf.String("policy", "", "ImageMagick policy file (default /etc/ImageMagick-6/policy.xml)")
	pf.BoolP("verbose", "v", false, "log subprocess and ledger details to stderr")

	bindFlag("ids-file", config.KeyIDsFile)
	bindFlag("pdf-dir", config.KeyPDFDir)
	bindFlag("image-dir", config.KeyImageDir)
	bindFlag("delay", config.KeyDownloadDelay)
	bindFlag("policy", config.KeyPolicyPath)
	bindFlag("verbose", "verbose")
}

// bindFlag binds a persistent flag to a config key. Unset flags leave the
// default or config file value in place.
func bindFlag(flag, key string) {
	if err := v.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(fmt.Sprintf("binding flag %s: %v", flag, err))
	}
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("pmc-pages")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "pmc-pages"))
		}
	}

	if err := v.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", v.ConfigFileUsed())
	}
}

func main() {
	// An interrupt kills the running tool mid-file. A partial download is
	// removed; pages already written by convert stay on disk, and the next
	// render reports them as incomplete.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
