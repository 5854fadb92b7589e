package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KleaSCM/Aurelia/internal/nand"
)

var (
	flagLba     uint32
	flagPattern uint8
)

var writeCmd = &cobra.Command{
	Use:   "write",
	Short: "Write a page of a repeated byte pattern to an LBA",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := buildStack()
		if err != nil {
			return err
		}
		buf := make([]byte, nand.PageDataSize)
		for i := range buf {
			buf[i] = flagPattern
		}
		status := s.ftl.Write(flagLba, buf)
		fmt.Printf("write lba=%d pattern=0x%02X -> %s\n", flagLba, flagPattern, status)
		return nil
	},
}

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Read one LBA from a freshly built stack",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := buildStack()
		if err != nil {
			return err
		}
		buf := make([]byte, nand.PageDataSize)
		status := s.ftl.Read(flagLba, buf)
		fmt.Printf("read lba=%d -> %s, first byte 0x%02X\n", flagLba, status, buf[0])
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{writeCmd, readCmd, demoCmd} {
		c.Flags().Uint32Var(&flagLba, "lba", 0, "logical page address")
	}
	writeCmd.Flags().Uint8Var(&flagPattern, "pattern", 0x00, "repeated byte value to write")
}
