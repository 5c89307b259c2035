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

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/blacktop/webarchive/internal/utils"
	"github.com/blacktop/webarchive/pkg/bplist"
	"github.com/blacktop/webarchive/pkg/webarchive"
)

var dumpTree bool
var dumpHex bool

func init() {
	infoCmd.Flags().BoolVar(&dumpTree, "tree", false, "dump the full decoded value tree")
	infoCmd.Flags().BoolVar(&dumpHex, "hex", false, "hex dump the main resource and each sub-resource's payload")
}

// infoCmd is a read-only decode + summary path: it never requires an
// output directory, unlike extractCmd.
var infoCmd = &cobra.Command{
	Use:   "info <input.webarchive>",
	Short: "Decode a .webarchive and print a summary without extracting it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Verbose {
			log.SetLevel(log.DebugLevel)
		}

		f, err := os.Open(args[0])
		if err != nil {
			return errors.Wrapf(err, "failed to open %q", args[0])
		}
		defer f.Close()

		root, err := bplist.Decode(f)
		if err != nil {
			return errors.Wrap(err, "failed to decode bplist")
		}

		if dumpTree {
			root.Dump(os.Stdout)
			if !dumpHex {
				return nil
			}
		}

		archive, err := webarchive.FromValue(root)
		if err != nil {
			return err
		}

		if dumpHex {
			bold := color.New(color.Bold)
			bold.Printf("Main Resource  %s\n", archive.Main.URL)
			os.Stdout.WriteString(utils.HexDump(archive.Main.Data, 0))
			for _, sub := range archive.SubResources {
				bold.Printf("Sub-resource  %s\n", sub.URL)
				os.Stdout.WriteString(utils.HexDump(sub.Data, 0))
			}
			return nil
		}

		bold := color.New(color.Bold)
		bold.Println("Main Resource")
		color.New(color.Faint).Printf("  url:      %s\n", archive.Main.URL)
		color.New(color.Faint).Printf("  encoding: %s\n", archive.Main.TextEncoding)
		color.New(color.Faint).Printf("  size:     %s\n", humanize.Bytes(uint64(len(archive.Main.Data))))

		bold.Printf("Sub-resources (%d)\n", len(archive.SubResources))
		for _, sub := range archive.SubResources {
			color.New(color.Faint).Printf("  %s  %s  %s\n", sub.URL, sub.MIMEType, humanize.Bytes(uint64(len(sub.Data))))
		}

		bold.Printf("Sub-frames (%d)\n", len(archive.Subframes))
		for i, sf := range archive.Subframes {
			color.New(color.Faint).Printf("  [%d] %s\n", i+1, sf.Main.URL)
		}

		return nil
	},
}
