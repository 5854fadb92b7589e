package main

import (
	"fmt"
	"math/bits"

	"github.com/spf13/cobra"
)

var flagBlock int

var blockInfoCmd = &cobra.Command{
	Use:   "block-info",
	Short: "Print one block's FTL-side state",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := buildStack()
		if err != nil {
			return err
		}
		info := s.ftl.GetBlockInfo(flagBlock)
		fmt.Printf("block=%d state=%s erase_count=%d valid_pages=%d bad=%v\n",
			flagBlock, info.State, info.EraseCount, bits.OnesCount64(info.ValidPageBitmap), s.chip.IsBad(flagBlock))
		return nil
	},
}

func init() {
	blockInfoCmd.Flags().IntVar(&flagBlock, "block", 0, "block index to inspect")
}
