package main

import (
	"fmt"
	"math/bits"

	"github.com/spf13/cobra"
)

var formatCmd = &cobra.Command{
	Use:   "format",
	Short: "Build a fresh chip/FTL stack and print the initial block table",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := buildStack()
		if err != nil {
			return err
		}
		fmt.Printf("%-8s %-8s %-6s %-12s\n", "block", "state", "erase", "valid-pages")
		for b := 0; b < flagBlocks; b++ {
			info := s.ftl.GetBlockInfo(b)
			fmt.Printf("%-8d %-8s %-6d %-12d\n", b, info.State, info.EraseCount, bits.OnesCount64(info.ValidPageBitmap))
		}
		return nil
	},
}
