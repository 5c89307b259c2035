/*
Copyright © 2024 blacktop

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"os"
	"time"

	"github.com/apex/log"
	clihandler "github.com/apex/log/handlers/cli"
	"github.com/briandowns/spinner"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/blacktop/webarchive/internal/config"
	"github.com/blacktop/webarchive/pkg/webarchive"
)

var ignoreJavaScript bool
var logPath string

func init() {
	extractCmd.Flags().BoolVar(&ignoreJavaScript, "ignore-javascript", false, "drop JavaScript sub-resources and blank their references")
	extractCmd.Flags().StringVar(&logPath, "log", "", "write log output to this file instead of stderr ('-' for stdout)")

	extractCmd.MarkZshCompPositionalArgumentFile(1, "*.webarchive")
}

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <input.webarchive> [output-directory]",
	Short: "Extract a .webarchive file into a directory of files",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := configureLogSink(logPath); err != nil {
			return errors.Wrap(err, "failed to open log file")
		}
		if Verbose {
			log.SetLevel(log.DebugLevel)
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return errors.Wrap(err, "failed to load config")
		}

		if !cmd.Flags().Changed("ignore-javascript") {
			ignoreJavaScript = cfg.Extract.IgnoreJavaScript
		}

		inputFile := args[0]
		outputDir := cfg.Extract.OutputDir
		if len(args) == 2 {
			outputDir = args[1]
		}
		if outputDir == "" {
			return errors.New("output directory required (as an argument, or extract.output_dir in config)")
		}

		if fi, err := os.Stat(outputDir); err != nil || !fi.IsDir() {
			return errors.Errorf("output directory %q does not exist", outputDir)
		}

		info, err := os.Stat(inputFile)
		if err != nil {
			return errors.Wrapf(err, "failed to open %q", inputFile)
		}

		log.WithFields(log.Fields{
			"input":  inputFile,
			"output": outputDir,
			"size":   humanize.Bytes(uint64(info.Size())),
		}).Info("extracting webarchive")

		extractor := webarchive.NewExtractor(webarchive.Options{
			IgnoreJavaScriptFiles: ignoreJavaScript,
		}, log.Log)

		s := spinner.New(spinner.CharSets[38], 100*time.Millisecond)
		s.Prefix = color.BlueString("   • Extracting... ")
		s.Start()
		err = extractor.Extract(inputFile, outputDir)
		s.Stop()
		if err != nil {
			return err
		}

		color.New(color.Bold, color.FgGreen).Printf("✓ extracted %s to %s\n", inputFile, outputDir)
		return nil
	},
}

// configureLogSink redirects apex/log output to path if given ("-" means
// stdout), otherwise leaves the default stderr CLI handler installed by
// root.go's init().
func configureLogSink(path string) error {
	if path == "" {
		return nil
	}
	if path == "-" {
		log.SetHandler(clihandler.New(os.Stdout))
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	log.SetHandler(clihandler.New(f))
	return nil
}
