package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/papersync/pkg/address"
	"github.com/matzehuels/papersync/pkg/document"
)

// checkCommand creates the check command.
func (c *CLI) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check [document]",
		Short: "Validate a layout document",
		Long: `Validate a layout document without loading its pages. Blocks with
malformed addresses are reported; the engine skips them at run time.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeDocument,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := document.Load(args[0])
			if err != nil {
				return err
			}
			refs, err := doc.PageRefs()
			if err != nil {
				return err
			}

			printSuccess("%s", args[0])
			if doc.Title != "" {
				printKeyValue("Title", doc.Title)
			}
			printKeyValue("Pages", fmt.Sprint(len(refs)))
			printKeyValue("Blocks", fmt.Sprint(len(doc.Blocks)))

			pageUse := make(map[int]int)
			for _, b := range doc.Blocks {
				if a, err := address.First(b.Address); err == nil {
					pageUse[a.Page]++
				}
			}
			for p := range pageUse {
				if p >= len(refs) {
					printWarning("blocks reference page %d, document has %d pages", p, len(refs))
				}
			}

			problems := doc.Check()
			for _, p := range problems {
				printWarning("block %d: %v", p.Block, p.Err)
			}
			if len(problems) == 0 {
				printDetail("all block addresses parse")
			}
			printNextStep("Render a frame", fmt.Sprintf("%s frame %s --block 0", appName, args[0]))
			return nil
		},
	}
}
