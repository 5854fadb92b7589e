package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var gcStatsCmd = &cobra.Command{
	Use:   "gc-stats",
	Short: "Print free-list depth and the active write frontier",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := buildStack()
		if err != nil {
			return err
		}
		block, page, ok := s.ftl.ActiveFrontier()
		fmt.Printf("free_list_depth=%d\n", s.ftl.FreeListDepth())
		if ok {
			fmt.Printf("active_frontier=block %d, page %d\n", block, page)
		} else {
			fmt.Println("active_frontier=none")
		}
		return nil
	},
}
